// Package models defines domain entities and persistence interfaces for the playvault history synchronizer.
//
// The package contains the entities the engine persists:
//   - [User] : Local account snapshot keyed by contact email
//   - [CatalogRecord] : Cached remote entity (track, artist, playlist or album payload)
//   - [AudioRecord] : Audio feature/analysis side record owned by a track
//   - [PlayEvent] : One playback occurrence, append-only
//
// Entities are create-once: after insertion the engine never mutates them. Each remote
// entity is identified by the stable identifier assigned by the streaming service
// (remote id), unique per [Kind].
//
// All persistent entities implement the [Model] interface providing ID, retrieval
// timestamp and validation.
package models
