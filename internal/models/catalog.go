package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// CatalogRecord is a cached remote entity: the opaque payload returned by the
// catalog service plus the remote identifier it is keyed on. One record exists
// per (kind, remote id) pair.
type CatalogRecord struct {
	id          string
	sequence    int
	kind        Kind
	remoteID    string
	payload     json.RawMessage
	retrievedAt time.Time
}

// NewCatalogRecord creates a CatalogRecord for a freshly fetched remote entity.
func NewCatalogRecord(sequence int, kind Kind, remoteID string, payload json.RawMessage) *CatalogRecord {
	return &CatalogRecord{
		sequence:    sequence,
		kind:        kind,
		remoteID:    remoteID,
		payload:     payload,
		retrievedAt: time.Now().UTC(),
	}
}

func (c *CatalogRecord) ID() string               { return c.id }
func (c *CatalogRecord) Sequence() int            { return c.sequence }
func (c *CatalogRecord) Kind() Kind               { return c.kind }
func (c *CatalogRecord) RemoteID() string         { return c.remoteID }
func (c *CatalogRecord) Payload() json.RawMessage { return c.payload }
func (c *CatalogRecord) RetrievedAt() time.Time   { return c.retrievedAt }

func (c *CatalogRecord) SetID(id string)             { c.id = id }
func (c *CatalogRecord) SetSequence(seq int)         { c.sequence = seq }
func (c *CatalogRecord) SetRetrievedAt(ts time.Time) { c.retrievedAt = ts }

func (c *CatalogRecord) Validate() error {
	if !c.kind.Valid() {
		return fmt.Errorf("invalid catalog kind: %q", c.kind)
	}
	if c.remoteID == "" {
		return fmt.Errorf("catalog record remote id is required")
	}
	if len(c.payload) == 0 {
		return fmt.Errorf("catalog record payload is required")
	}
	return nil
}

// AudioAspect distinguishes the two track side records.
type AudioAspect string

const (
	AspectFeatures AudioAspect = "features"
	AspectAnalysis AudioAspect = "analysis"
)

// AudioRecord is an audio features or audio analysis payload owned by exactly
// one track record. It exists only for tracks this engine created itself.
type AudioRecord struct {
	id            string
	aspect        AudioAspect
	trackRecordID string
	payload       json.RawMessage
	retrievedAt   time.Time
}

// NewAudioRecord creates an AudioRecord bound to the owning track record.
func NewAudioRecord(aspect AudioAspect, trackRecordID string, payload json.RawMessage) *AudioRecord {
	return &AudioRecord{
		aspect:        aspect,
		trackRecordID: trackRecordID,
		payload:       payload,
		retrievedAt:   time.Now().UTC(),
	}
}

func (a *AudioRecord) ID() string               { return a.id }
func (a *AudioRecord) Aspect() AudioAspect      { return a.aspect }
func (a *AudioRecord) TrackRecordID() string    { return a.trackRecordID }
func (a *AudioRecord) Payload() json.RawMessage { return a.payload }
func (a *AudioRecord) RetrievedAt() time.Time   { return a.retrievedAt }

func (a *AudioRecord) SetID(id string)             { a.id = id }
func (a *AudioRecord) SetRetrievedAt(ts time.Time) { a.retrievedAt = ts }

func (a *AudioRecord) Validate() error {
	if a.aspect != AspectFeatures && a.aspect != AspectAnalysis {
		return fmt.Errorf("invalid audio aspect: %q", a.aspect)
	}
	if a.trackRecordID == "" {
		return fmt.Errorf("audio record track id is required")
	}
	if len(a.payload) == 0 {
		return fmt.Errorf("audio record payload is required")
	}
	return nil
}
