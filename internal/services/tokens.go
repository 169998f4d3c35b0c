// HTTP client for the token-vending service that holds per-user Spotify credentials.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/srmq/playvault/internal/shared"
)

// TokenService implements [TokenProvider] against the token-vending HTTP service.
//
// The root credential is supplied per call by the orchestrator; it is never
// stored on the client.
type TokenService struct {
	baseURL    string
	httpClient *http.Client
}

// NewTokenService creates a token service client for the given base URL.
func NewTokenService(baseURL string, client *http.Client) *TokenService {
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &TokenService{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// post sends a JSON body to the given path and decodes the JSON response.
func (t *TokenService) post(ctx context.Context, path string, body, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: token service rejected root credential (status %d)", shared.ErrInvalidCredentials, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: token service status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// ListUsersWithToken returns every registered user holding token info.
// An empty user list is an error: a sync run without users is a setup problem.
func (t *TokenService) ListUsersWithToken(ctx context.Context, rootPass string) ([]RegisteredUser, error) {
	if rootPass == "" {
		return nil, fmt.Errorf("%w: root credential is mandatory", shared.ErrMissingCredentials)
	}

	var response struct {
		Users []RegisteredUser `json:"users"`
	}

	if err := t.post(ctx, "/getuserswithtoken", map[string]string{"rootpass": rootPass}, &response); err != nil {
		return nil, err
	}

	if len(response.Users) == 0 {
		return nil, shared.ErrNoUsers
	}

	return response.Users, nil
}

// UserToken retrieves an access token for one user's catalog access.
func (t *TokenService) UserToken(ctx context.Context, rootPass, email string) (string, error) {
	var response struct {
		AccessToken string `json:"access_token"`
	}

	body := map[string]string{"rootpass": rootPass, "email": email}
	if err := t.post(ctx, "/getspotifyauth", body, &response); err != nil {
		return "", err
	}

	if response.AccessToken == "" {
		return "", fmt.Errorf("%w: did not receive access token for %s", shared.ErrAuthFailed, email)
	}

	return response.AccessToken, nil
}

// AppToken retrieves an app-level access token.
func (t *TokenService) AppToken(ctx context.Context, rootPass string) (string, error) {
	var response struct {
		AccessToken string `json:"access_token"`
	}

	if err := t.post(ctx, "/getapptoken", map[string]string{"rootpass": rootPass}, &response); err != nil {
		return "", err
	}

	if response.AccessToken == "" {
		return "", fmt.Errorf("%w: did not receive app token", shared.ErrAuthFailed)
	}

	return response.AccessToken, nil
}
