package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/srmq/playvault/internal/models"
	"github.com/srmq/playvault/internal/shared"
)

// PlayEventRepository persists append-only playback history.
type PlayEventRepository struct {
	q Querier
}

// NewPlayEventRepository creates a new PlayEventRepository over the given Querier
func NewPlayEventRepository(q Querier) *PlayEventRepository {
	return &PlayEventRepository{q: q}
}

// Create inserts a new play event with generated ID and sequence.
func (r *PlayEventRepository) Create(ev *models.PlayEvent) error {
	sequence, err := NextSequence(r.q, "play_events")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	ev.SetSequence(sequence)

	id := shared.GenerateID()
	ev.SetID(id)

	if err := ev.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO play_events (id, sequence, user_id, track_snapshot, context, played_at, track_record_id, origin_kind, origin_record_id, retrieved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	// TIMESTAMP columns compare as text, so every bound time must be UTC.
	_, err = r.q.Exec(query,
		id,
		sequence,
		ev.UserID(),
		string(ev.TrackSnapshot()),
		nullable(string(ev.Context())),
		ev.PlayedAt().UTC(),
		nullable(ev.TrackRecordID()),
		nullable(ev.OriginKind().String()),
		nullable(ev.OriginRecordID()),
		ev.RetrievedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert play event: %w", err)
	}

	return nil
}

// LatestRetrievedInWindow returns the most recently retrieved play event for a
// user whose playback timestamp falls in [start, end). This is the watermark
// query: a prior run's last write marks where the next run resumes.
// Returns (nil, nil) when the window holds no events.
func (r *PlayEventRepository) LatestRetrievedInWindow(userID string, start, end time.Time) (*models.PlayEvent, error) {
	query := `
		SELECT id, sequence, user_id, track_snapshot, context, played_at, track_record_id, origin_kind, origin_record_id, retrieved_at
		FROM play_events
		WHERE user_id = ? AND played_at >= ? AND played_at < ?
		ORDER BY retrieved_at DESC, sequence DESC
		LIMIT 1
	`
	return r.scanOne(r.q.QueryRow(query, userID, start.UTC(), end.UTC()))
}

// ListForUser returns all play events for a user in playback order.
func (r *PlayEventRepository) ListForUser(userID string) ([]*models.PlayEvent, error) {
	query := `
		SELECT id, sequence, user_id, track_snapshot, context, played_at, track_record_id, origin_kind, origin_record_id, retrieved_at
		FROM play_events
		WHERE user_id = ?
		ORDER BY played_at ASC, sequence ASC
	`

	rows, err := r.q.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query play events: %w", err)
	}
	defer rows.Close()

	var events []*models.PlayEvent
	for rows.Next() {
		ev, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

// CountForUser returns the number of stored play events for a user.
func (r *PlayEventRepository) CountForUser(userID string) (int, error) {
	var n int
	err := r.q.QueryRow("SELECT COUNT(*) FROM play_events WHERE user_id = ?", userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count play events: %w", err)
	}
	return n, nil
}

func (r *PlayEventRepository) scanOne(row *sql.Row) (*models.PlayEvent, error) {
	ev, err := scanEvent(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ev, err
}

func scanEvent(scan func(dest ...any) error) (*models.PlayEvent, error) {
	var (
		id             string
		sequence       int
		userID         string
		trackSnapshot  string
		contextPayload sql.NullString
		playedAt       time.Time
		trackRecordID  sql.NullString
		originKind     sql.NullString
		originRecordID sql.NullString
		retrievedAt    time.Time
	)

	err := scan(&id, &sequence, &userID, &trackSnapshot, &contextPayload, &playedAt, &trackRecordID, &originKind, &originRecordID, &retrievedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan play event: %w", err)
	}

	var ctx json.RawMessage
	if contextPayload.Valid {
		ctx = json.RawMessage(contextPayload.String)
	}

	ev := models.NewPlayEvent(sequence, userID, json.RawMessage(trackSnapshot), ctx, playedAt)
	ev.SetID(id)
	ev.SetRetrievedAt(retrievedAt)
	if trackRecordID.Valid {
		ev.LinkTrack(trackRecordID.String)
	}
	if originKind.Valid && originRecordID.Valid {
		ev.LinkOrigin(models.Kind(originKind.String), originRecordID.String)
	}

	return ev, nil
}
