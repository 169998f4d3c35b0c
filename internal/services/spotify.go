// Spotify API implementation of [CatalogClient]
//
// Response shapes based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/srmq/playvault/internal/models"
	"github.com/srmq/playvault/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

// SpotifyService implements [CatalogClient] against the Spotify Web API.
//
// Tokens are supplied per call (they are vended per user by the token service),
// wrapped in [oauth2] static sources. All requests pass through a shared rate
// limiter so page fetches and entity resolution share one budget.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSpotifyService creates a Spotify catalog client.
// requestsPerSec bounds the outbound call rate; zero or negative disables limiting.
func NewSpotifyService(client *http.Client, requestsPerSec float64) *SpotifyService {
	if client == nil {
		client = http.DefaultClient
	}

	var limiter *rate.Limiter
	if requestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSec), 1)
	}

	return &SpotifyService{
		baseURL:    spotifyBaseURL,
		httpClient: client,
		limiter:    limiter,
	}
}

func (s *SpotifyService) Name() string { return "Spotify" }

// clientFor returns an HTTP client that injects the bearer token, layered over
// the service's base client.
func (s *SpotifyService) clientFor(ctx context.Context, token string) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, s.httpClient), src)
}

// doRequest performs an authenticated GET against the Spotify API and decodes
// the JSON response into result. A 404 yields errNotFound so callers can map
// absence to a non-error outcome.
func (s *SpotifyService) doRequest(ctx context.Context, token, endpoint string, result any) error {
	if token == "" {
		return fmt.Errorf("%w: empty access token", shared.ErrNotAuthenticated)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.clientFor(ctx, token).Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", shared.ErrNotAuthenticated, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

var errNotFound = fmt.Errorf("resource not found")

type recentlyPlayedResponse struct {
	Items []struct {
		Track    json.RawMessage `json:"track"`
		PlayedAt string          `json:"played_at"`
		Context  json.RawMessage `json:"context"`
	} `json:"items"`
	Cursors *struct {
		After string `json:"after"`
	} `json:"cursors"`
}

// RecentlyPlayed fetches one page of playback history after the given cursor.
func (s *SpotifyService) RecentlyPlayed(ctx context.Context, token, after string, limit int) (*RecentlyPlayedPage, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/me/player/recently-played?limit=%d", limit)
	if after != "" {
		endpoint += "&after=" + url.QueryEscape(after)
	}

	var response recentlyPlayedResponse
	if err := s.doRequest(ctx, token, endpoint, &response); err != nil {
		if err == errNotFound {
			return &RecentlyPlayedPage{}, nil
		}
		return nil, err
	}

	page := &RecentlyPlayedPage{Items: make([]PlayedItem, 0, len(response.Items))}
	if response.Cursors != nil {
		page.NextCursor = response.Cursors.After
	}

	for _, item := range response.Items {
		playedAt, err := time.Parse(time.RFC3339, item.PlayedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse played_at %q: %w", item.PlayedAt, err)
		}

		parsed := PlayedItem{
			TrackSnapshot: item.Track,
			PlayedAt:      playedAt,
		}

		var trackRef struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(item.Track, &trackRef); err == nil {
			parsed.TrackID = trackRef.ID
		}

		if len(item.Context) > 0 && string(item.Context) != "null" {
			parsed.RawContext = item.Context
			var pc PlayContext
			if err := json.Unmarshal(item.Context, &pc); err != nil {
				return nil, fmt.Errorf("failed to parse context payload: %w", err)
			}
			parsed.Context = &pc
		}

		page.Items = append(page.Items, parsed)
	}

	return page, nil
}

var kindEndpoints = map[models.Kind]string{
	models.KindTrack:    "/tracks/%s",
	models.KindArtist:   "/artists/%s",
	models.KindPlaylist: "/playlists/%s",
	models.KindAlbum:    "/albums/%s",
}

// Resource fetches a catalog entity payload by kind and remote identifier.
// Returns (nil, nil) when the entity is absent upstream.
func (s *SpotifyService) Resource(ctx context.Context, token string, kind models.Kind, remoteID string) (json.RawMessage, error) {
	pattern, ok := kindEndpoints[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no endpoint for kind %q", shared.ErrInvalidArgument, kind)
	}

	return s.fetchRaw(ctx, token, fmt.Sprintf(pattern, url.PathEscape(remoteID)))
}

// AudioFeatures fetches audio features for a track. Absent upstream → (nil, nil).
func (s *SpotifyService) AudioFeatures(ctx context.Context, token, trackID string) (json.RawMessage, error) {
	return s.fetchRaw(ctx, token, "/audio-features/"+url.PathEscape(trackID))
}

// AudioAnalysis fetches audio analysis for a track. Absent upstream → (nil, nil).
func (s *SpotifyService) AudioAnalysis(ctx context.Context, token, trackID string) (json.RawMessage, error) {
	return s.fetchRaw(ctx, token, "/audio-analysis/"+url.PathEscape(trackID))
}

// UserProfile fetches the authenticated user's profile and remote identifier.
func (s *SpotifyService) UserProfile(ctx context.Context, token string) (json.RawMessage, string, error) {
	payload, err := s.fetchRaw(ctx, token, "/me")
	if err != nil {
		return nil, "", err
	}
	if payload == nil {
		return nil, "", fmt.Errorf("%w: empty profile response", shared.ErrAPIRequest)
	}

	var profile struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &profile); err != nil {
		return nil, "", fmt.Errorf("failed to parse profile: %w", err)
	}

	return payload, profile.ID, nil
}

func (s *SpotifyService) fetchRaw(ctx context.Context, token, endpoint string) (json.RawMessage, error) {
	var payload json.RawMessage
	if err := s.doRequest(ctx, token, endpoint, &payload); err != nil {
		if err == errNotFound {
			return nil, nil
		}
		return nil, err
	}
	if string(payload) == "null" {
		return nil, nil
	}
	return payload, nil
}
