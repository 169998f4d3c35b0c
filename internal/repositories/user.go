package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/srmq/playvault/internal/models"
	"github.com/srmq/playvault/internal/shared"
)

// UserRepository persists [models.User] rows keyed by contact email.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new UserRepository over the given Querier
func NewUserRepository(q Querier) *UserRepository {
	return &UserRepository{q: q}
}

// Create inserts a new user into the database with generated ID and sequence
func (r *UserRepository) Create(user *models.User) error {
	sequence, err := NextSequence(r.q, "users")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	user.SetSequence(sequence)

	id := shared.GenerateID()
	user.SetID(id)

	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO users (id, sequence, email, spotify_id, profile, retrieved_at) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.q.Exec(query, id, sequence, user.Email(), nullable(user.SpotifyID()), nullable(string(user.Profile())), user.RetrievedAt().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// Get retrieves a user by ID. Returns (nil, nil) when no such user exists.
func (r *UserRepository) Get(id string) (*models.User, error) {
	query := `
		SELECT id, sequence, email, spotify_id, profile, retrieved_at
		FROM users
		WHERE id = ?
	`
	return r.scanOne(r.q.QueryRow(query, id))
}

// GetByEmail retrieves a user by contact email. Returns (nil, nil) when absent.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, sequence, email, spotify_id, profile, retrieved_at
		FROM users
		WHERE email = ?
	`
	return r.scanOne(r.q.QueryRow(query, email))
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	var (
		id          string
		sequence    int
		email       string
		spotifyID   sql.NullString
		profile     sql.NullString
		retrievedAt time.Time
	)

	err := row.Scan(&id, &sequence, &email, &spotifyID, &profile, &retrievedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user := models.NewUser(sequence, email)
	user.SetID(id)
	user.SetRetrievedAt(retrievedAt)
	if profile.Valid {
		user.SetProfile(json.RawMessage(profile.String), spotifyID.String)
	}

	return user, nil
}
