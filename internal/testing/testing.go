// package testing contains shared testing utilities
package testing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/srmq/playvault/internal/models"
	"github.com/srmq/playvault/internal/services"
)

// MockCatalog is a test double for [services.CatalogClient].
//
// Pages are served in order, one per RecentlyPlayed call; Resources is keyed
// by "kind:remoteID". Nil map entries behave as upstream absence.
type MockCatalog struct {
	Pages    []services.RecentlyPlayedPage
	PageErr  error
	pageIdx  int
	Cursors  []string // records the after cursor of every page fetch
	PageSize []int    // records the limit of every page fetch

	Resources    map[string]json.RawMessage
	ResourceErrs map[string]error
	Features     map[string]json.RawMessage
	FeatureErr   error
	Analyses     map[string]json.RawMessage
	AnalysisErr  error

	Profile    json.RawMessage
	ProfileID  string
	ProfileErr error

	ResourceCalls map[string]int
}

func ResourceKey(kind models.Kind, remoteID string) string {
	return fmt.Sprintf("%s:%s", kind, remoteID)
}

func (m *MockCatalog) RecentlyPlayed(ctx context.Context, token, after string, limit int) (*services.RecentlyPlayedPage, error) {
	m.Cursors = append(m.Cursors, after)
	m.PageSize = append(m.PageSize, limit)
	if m.PageErr != nil {
		return nil, m.PageErr
	}
	if m.pageIdx >= len(m.Pages) {
		return &services.RecentlyPlayedPage{}, nil
	}
	page := m.Pages[m.pageIdx]
	m.pageIdx++
	return &page, nil
}

func (m *MockCatalog) Resource(ctx context.Context, token string, kind models.Kind, remoteID string) (json.RawMessage, error) {
	key := ResourceKey(kind, remoteID)
	if m.ResourceCalls == nil {
		m.ResourceCalls = make(map[string]int)
	}
	m.ResourceCalls[key]++
	if err, ok := m.ResourceErrs[key]; ok {
		return nil, err
	}
	return m.Resources[key], nil
}

func (m *MockCatalog) AudioFeatures(ctx context.Context, token, trackID string) (json.RawMessage, error) {
	if m.FeatureErr != nil {
		return nil, m.FeatureErr
	}
	return m.Features[trackID], nil
}

func (m *MockCatalog) AudioAnalysis(ctx context.Context, token, trackID string) (json.RawMessage, error) {
	if m.AnalysisErr != nil {
		return nil, m.AnalysisErr
	}
	return m.Analyses[trackID], nil
}

func (m *MockCatalog) UserProfile(ctx context.Context, token string) (json.RawMessage, string, error) {
	if m.ProfileErr != nil {
		return nil, "", m.ProfileErr
	}
	if m.Profile == nil {
		return json.RawMessage(`{"id":"mock-user"}`), "mock-user", nil
	}
	return m.Profile, m.ProfileID, nil
}

// MockTokens is a test double for [services.TokenProvider].
type MockTokens struct {
	Users     []services.RegisteredUser
	ListErr   error
	Tokens    map[string]string
	TokenErrs map[string]error
	App       string
	AppErr    error
}

func (m *MockTokens) ListUsersWithToken(ctx context.Context, rootPass string) ([]services.RegisteredUser, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Users, nil
}

func (m *MockTokens) UserToken(ctx context.Context, rootPass, email string) (string, error) {
	if err, ok := m.TokenErrs[email]; ok {
		return "", err
	}
	if tok, ok := m.Tokens[email]; ok {
		return tok, nil
	}
	return "token-" + email, nil
}

func (m *MockTokens) AppToken(ctx context.Context, rootPass string) (string, error) {
	if m.AppErr != nil {
		return "", m.AppErr
	}
	if m.App == "" {
		return "app-token", nil
	}
	return m.App, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
