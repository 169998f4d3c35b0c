package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/srmq/playvault/internal/models"
	"github.com/srmq/playvault/internal/shared"
)

// AudioRepository persists audio feature and analysis side records.
//
// These rows exist only for tracks the engine created itself; UNIQUE
// track_record_id enforces the 1:1 ownership.
type AudioRepository struct {
	q Querier
}

// NewAudioRepository creates a new AudioRepository over the given Querier
func NewAudioRepository(q Querier) *AudioRepository {
	return &AudioRepository{q: q}
}

func tableFor(aspect models.AudioAspect) (string, error) {
	switch aspect {
	case models.AspectFeatures:
		return "audio_features", nil
	case models.AspectAnalysis:
		return "audio_analysis", nil
	}
	return "", fmt.Errorf("unknown audio aspect: %q", aspect)
}

// Create inserts an audio record with a generated ID.
func (r *AudioRepository) Create(rec *models.AudioRecord) error {
	table, err := tableFor(rec.Aspect())
	if err != nil {
		return err
	}

	id := shared.GenerateID()
	rec.SetID(id)

	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, track_record_id, payload, retrieved_at) VALUES (?, ?, ?, ?)
	`, table)

	if _, err := r.q.Exec(query, id, rec.TrackRecordID(), string(rec.Payload()), rec.RetrievedAt().UTC()); err != nil {
		return fmt.Errorf("failed to insert audio %s: %w", rec.Aspect(), err)
	}

	return nil
}

// GetByTrack retrieves the side record of the given aspect for a track record.
// Returns (nil, nil) when the track has none.
func (r *AudioRepository) GetByTrack(aspect models.AudioAspect, trackRecordID string) (*models.AudioRecord, error) {
	table, err := tableFor(aspect)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, track_record_id, payload, retrieved_at FROM %s WHERE track_record_id = ?
	`, table)

	var (
		id          string
		trackID     string
		payload     string
		retrievedAt time.Time
	)

	err = r.q.QueryRow(query, trackRecordID).Scan(&id, &trackID, &payload, &retrievedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan audio %s: %w", aspect, err)
	}

	rec := models.NewAudioRecord(aspect, trackID, json.RawMessage(payload))
	rec.SetID(id)
	rec.SetRetrievedAt(retrievedAt)

	return rec, nil
}
