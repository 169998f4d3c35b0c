package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/srmq/playvault/internal/models"
	"github.com/srmq/playvault/internal/shared"
)

// CatalogRepository persists cached catalog entities keyed by (kind, remote id).
//
// The UNIQUE(kind, remote_id) constraint is the deduplication guarantee: at most
// one local record exists per remote identifier per entity kind.
type CatalogRepository struct {
	q Querier
}

// NewCatalogRepository creates a new CatalogRepository over the given Querier
func NewCatalogRepository(q Querier) *CatalogRepository {
	return &CatalogRepository{q: q}
}

// Create inserts a new catalog record with generated ID and sequence.
//
// A concurrent insert of the same (kind, remote id) surfaces as a UNIQUE
// constraint error; callers that tolerate races should use CreateOrGet.
func (r *CatalogRepository) Create(rec *models.CatalogRecord) error {
	sequence, err := NextSequence(r.q, "catalog_records")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	rec.SetSequence(sequence)

	id := shared.GenerateID()
	rec.SetID(id)

	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO catalog_records (id, sequence, kind, remote_id, payload, retrieved_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.q.Exec(query, id, sequence, rec.Kind().String(), rec.RemoteID(), string(rec.Payload()), rec.RetrievedAt().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert catalog record: %w", err)
	}

	return nil
}

// CreateOrGet inserts rec, or returns the already-stored record when another
// writer won the (kind, remote id) race. The boolean reports whether a new
// row was inserted.
func (r *CatalogRepository) CreateOrGet(rec *models.CatalogRecord) (*models.CatalogRecord, bool, error) {
	err := r.Create(rec)
	if err == nil {
		return rec, true, nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint") {
		existing, getErr := r.GetByRemoteID(rec.Kind(), rec.RemoteID())
		if getErr != nil {
			return nil, false, getErr
		}
		if existing != nil {
			return existing, false, nil
		}
	}
	return nil, false, err
}

// GetByRemoteID retrieves a record by kind and remote identifier.
// Returns (nil, nil) when the entity has never been cached.
func (r *CatalogRepository) GetByRemoteID(kind models.Kind, remoteID string) (*models.CatalogRecord, error) {
	query := `
		SELECT id, sequence, kind, remote_id, payload, retrieved_at
		FROM catalog_records
		WHERE kind = ? AND remote_id = ?
	`
	return r.scanOne(r.q.QueryRow(query, kind.String(), remoteID))
}

// Get retrieves a record by local ID. Returns (nil, nil) when absent.
func (r *CatalogRepository) Get(id string) (*models.CatalogRecord, error) {
	query := `
		SELECT id, sequence, kind, remote_id, payload, retrieved_at
		FROM catalog_records
		WHERE id = ?
	`
	return r.scanOne(r.q.QueryRow(query, id))
}

func (r *CatalogRepository) scanOne(row *sql.Row) (*models.CatalogRecord, error) {
	var (
		id          string
		sequence    int
		kind        string
		remoteID    string
		payload     string
		retrievedAt time.Time
	)

	err := row.Scan(&id, &sequence, &kind, &remoteID, &payload, &retrievedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan catalog record: %w", err)
	}

	rec := models.NewCatalogRecord(sequence, models.Kind(kind), remoteID, json.RawMessage(payload))
	rec.SetID(id)
	rec.SetRetrievedAt(retrievedAt)

	return rec, nil
}
