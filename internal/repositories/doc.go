// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles lookups and inserts with atomic sequence generation for
// human-readable ordering. Entities are create-once: there are no update or delete
// operations, matching the append-only nature of the synchronizer.
//
// Key Implementations:
//   - [UserRepository] : User persistence with email-based lookups
//   - [CatalogRepository] : Cached catalog entities keyed by (kind, remote id)
//   - [AudioRepository] : Audio feature/analysis side records owned by tracks
//   - [PlayEventRepository] : Append-only playback history with watermark queries
//
// Every repository runs against a [Querier], satisfied by both *sql.DB and *sql.Tx,
// so the same code serves direct access and the per-user transaction scope provided
// by [Store.WithTx].
//
// Lookups that can legitimately miss return (nil, nil) rather than an error: the
// caller decides whether absence matters.
package repositories
