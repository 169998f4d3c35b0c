package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PlayEvent is one playback occurrence returned by the recently-played query.
// Events are append-only; links to the resolved track and context origin are
// optional and set once, at creation.
type PlayEvent struct {
	id             string
	sequence       int
	userID         string
	trackSnapshot  json.RawMessage
	context        json.RawMessage
	playedAt       time.Time
	trackRecordID  string
	originKind     Kind
	originRecordID string
	retrievedAt    time.Time
}

// NewPlayEvent creates a PlayEvent owned by the given user.
func NewPlayEvent(sequence int, userID string, trackSnapshot, context json.RawMessage, playedAt time.Time) *PlayEvent {
	return &PlayEvent{
		sequence:      sequence,
		userID:        userID,
		trackSnapshot: trackSnapshot,
		context:       context,
		playedAt:      playedAt,
		retrievedAt:   time.Now().UTC(),
	}
}

func (p *PlayEvent) ID() string                     { return p.id }
func (p *PlayEvent) Sequence() int                  { return p.sequence }
func (p *PlayEvent) UserID() string                 { return p.userID }
func (p *PlayEvent) TrackSnapshot() json.RawMessage { return p.trackSnapshot }
func (p *PlayEvent) Context() json.RawMessage       { return p.context }
func (p *PlayEvent) PlayedAt() time.Time            { return p.playedAt }
func (p *PlayEvent) TrackRecordID() string          { return p.trackRecordID }
func (p *PlayEvent) OriginKind() Kind               { return p.originKind }
func (p *PlayEvent) OriginRecordID() string         { return p.originRecordID }
func (p *PlayEvent) RetrievedAt() time.Time         { return p.retrievedAt }

func (p *PlayEvent) SetID(id string)             { p.id = id }
func (p *PlayEvent) SetSequence(seq int)         { p.sequence = seq }
func (p *PlayEvent) SetRetrievedAt(ts time.Time) { p.retrievedAt = ts }

// LinkTrack points the event at its resolved track record.
func (p *PlayEvent) LinkTrack(recordID string) { p.trackRecordID = recordID }

// LinkOrigin points the event at its context origin entity. The kind must match
// the context's declared type; an event links to at most one origin.
func (p *PlayEvent) LinkOrigin(kind Kind, recordID string) {
	p.originKind = kind
	p.originRecordID = recordID
}

func (p *PlayEvent) Validate() error {
	if p.userID == "" {
		return fmt.Errorf("play event user id is required")
	}
	if len(p.trackSnapshot) == 0 {
		return fmt.Errorf("play event track snapshot is required")
	}
	if p.playedAt.IsZero() {
		return fmt.Errorf("play event playback timestamp is required")
	}
	if (p.originKind == "") != (p.originRecordID == "") {
		return fmt.Errorf("play event origin kind and record must be set together")
	}
	switch p.originKind {
	case "", KindArtist, KindPlaylist, KindAlbum:
	default:
		return fmt.Errorf("invalid play event origin kind: %q", p.originKind)
	}
	return nil
}
