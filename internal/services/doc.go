// Package services contains HTTP clients for the synchronizer's remote collaborators.
//
// Two interfaces define the consumed surfaces:
//   - [CatalogClient] : the streaming service's catalog API (recently-played pages,
//     entity payloads, audio features/analysis, user profile). Implemented by
//     [SpotifyService].
//   - [TokenProvider] : the external token-vending service that maps a root
//     credential to registered users and access tokens. Implemented by [TokenService].
//
// Both clients are stateless with respect to credentials: tokens and the root
// credential travel as call arguments, threaded down from the orchestrator.
package services
