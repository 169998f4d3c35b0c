// Package tasks implements the incremental history synchronization engine.
//
// The engine is layered leaf-first:
//   - [Resolver] : cache-or-fetch per (kind, remote id); guarantees at most one
//     local record per remote identifier and creates track side records.
//   - [ContextDispatcher] : maps a play event's context to the matching resolver.
//   - [HistoryController] : watermark computation and cursor-driven pagination
//     for one user and one target date.
//   - [SyncEngine] : iterates the registered user set, one transaction per user,
//     isolating failures so one broken user never aborts the batch.
//
// Operations emit progress updates via channels for non-blocking status
// reporting to the CLI layer.
package tasks
