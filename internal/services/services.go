// package services defines interfaces for the remote collaborators of the
// synchronizer: the streaming-service catalog API and the token-vending service.
package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/srmq/playvault/internal/models"
)

// CatalogClient is the consumed surface of the streaming service's catalog API.
//
// Fetch-by-id methods return (nil, nil) when the entity no longer exists
// upstream: absence is an outcome, not an error. Transport and auth failures
// are returned as errors.
type CatalogClient interface {
	// RecentlyPlayed fetches one page of the user's playback history strictly
	// after the given cursor. The initial cursor is an epoch-milliseconds
	// watermark; continuation cursors come opaque from the previous page.
	RecentlyPlayed(ctx context.Context, token, after string, limit int) (*RecentlyPlayedPage, error)

	// Resource fetches a catalog entity payload by kind and remote identifier.
	Resource(ctx context.Context, token string, kind models.Kind, remoteID string) (json.RawMessage, error)

	// AudioFeatures fetches the audio feature payload for a track.
	AudioFeatures(ctx context.Context, token, trackID string) (json.RawMessage, error)

	// AudioAnalysis fetches the audio analysis payload for a track.
	AudioAnalysis(ctx context.Context, token, trackID string) (json.RawMessage, error)

	// UserProfile fetches the authenticated user's profile snapshot and remote id.
	UserProfile(ctx context.Context, token string) (json.RawMessage, string, error)
}

// TokenProvider is the consumed surface of the token-vending service.
type TokenProvider interface {
	// ListUsersWithToken returns every registered user holding token info.
	ListUsersWithToken(ctx context.Context, rootPass string) ([]RegisteredUser, error)

	// UserToken retrieves an access token for one user's catalog access.
	UserToken(ctx context.Context, rootPass, email string) (string, error)

	// AppToken retrieves an app-level access token.
	AppToken(ctx context.Context, rootPass string) (string, error)
}

// RegisteredUser identifies a user known to the token-vending service.
type RegisteredUser struct {
	Email    string `json:"email"`
	FullName string `json:"fullname"`
}

// PlayContext is the parsed playback context attached to a history item.
type PlayContext struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

// PlayedItem is one item of the recently-played query.
type PlayedItem struct {
	TrackSnapshot json.RawMessage // opaque track payload as returned by the API
	TrackID       string          // remote track id extracted from the snapshot
	PlayedAt      time.Time
	Context       *PlayContext    // nil when the item carries no context
	RawContext    json.RawMessage // opaque context payload, nil when absent
}

// RecentlyPlayedPage is one page of playback history.
type RecentlyPlayedPage struct {
	Items      []PlayedItem
	NextCursor string // server continuation cursor, "" on the last page
}
