package repositories

import (
	"database/sql"
	"fmt"
)

// Querier is the subset of database operations repositories need. Both *sql.DB
// and *sql.Tx satisfy it, so repositories work unchanged inside a transaction.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Repos bundles one repository per entity type, all bound to the same Querier.
type Repos struct {
	Users   *UserRepository
	Catalog *CatalogRepository
	Audio   *AudioRepository
	Events  *PlayEventRepository
}

// NewRepos creates the full repository set over the given Querier.
func NewRepos(q Querier) *Repos {
	return &Repos{
		Users:   NewUserRepository(q),
		Catalog: NewCatalogRepository(q),
		Audio:   NewAudioRepository(q),
		Events:  NewPlayEventRepository(q),
	}
}

// Store provides transaction-scoped access to the repositories.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store over an open database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection for non-transactional access.
func (s *Store) DB() *sql.DB { return s.db }

// Repos returns a repository set bound directly to the connection.
func (s *Store) Repos() *Repos { return NewRepos(s.db) }

// WithTx runs fn inside a single transaction: commit when fn returns nil,
// rollback otherwise. Nothing written by a rolled-back fn is ever visible to a
// later caller.
func (s *Store) WithTx(fn func(*Repos) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// NextSequence increments and returns the next sequence number for the given table.
//
// Sequence numbers provide human-readable ordering for entities (e.g., user #42,
// event #1351). The two statements are atomic when q is a transaction; the engine
// itself never writes concurrently, so plain-connection callers are safe too.
func NextSequence(q Querier, table string) (int, error) {
	sequenceTable := table + "_sequence"

	if _, err := q.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable)); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	if err := q.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	return sequence, nil
}

// nullable converts an empty string to a SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
