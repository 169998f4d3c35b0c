package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/srmq/playvault/internal/models"
	"github.com/srmq/playvault/internal/repositories"
	"github.com/srmq/playvault/internal/services"
	"github.com/srmq/playvault/internal/shared"
)

// Origin is the context-origin entity a play event is attributed to.
type Origin struct {
	Kind     models.Kind
	RecordID string
}

// ContextDispatcher decides, from a play event's context, which resolver to
// invoke. Recognized context types are artist, playlist and album; anything
// else (including an absent context) produces no origin link.
type ContextDispatcher struct {
	resolver *Resolver
	logger   *log.Logger
}

// NewContextDispatcher creates a dispatcher backed by the given resolver.
func NewContextDispatcher(resolver *Resolver, logger *log.Logger) *ContextDispatcher {
	return &ContextDispatcher{resolver: resolver, logger: logger}
}

// Dispatch resolves the context origin for one play event.
// Returns (nil, nil) for absent or unrecognized context types and for origins
// that could not be linked; a malformed context URI is an error.
func (d *ContextDispatcher) Dispatch(ctx context.Context, repos *repositories.Repos, token string, pc *services.PlayContext) (*Origin, error) {
	if pc == nil {
		return nil, nil
	}

	// Tracks are what events record, never where they came from.
	kind, err := models.ParseKind(pc.Type)
	if err != nil || kind == models.KindTrack {
		d.logger.Debug("unrecognized context type, skipping origin link", "type", pc.Type)
		return nil, nil
	}

	remoteID, err := remoteIDFromURI(pc.URI)
	if err != nil {
		return nil, err
	}

	res, err := d.resolver.Resolve(ctx, repos, token, kind, remoteID)
	if err != nil {
		return nil, err
	}
	if !res.Linked() {
		return nil, nil
	}

	return &Origin{Kind: kind, RecordID: res.RecordID}, nil
}

// remoteIDFromURI extracts the remote identifier from a context URI such as
// "spotify:artist:XYZ": the substring after the last ':' separator.
func remoteIDFromURI(uri string) (string, error) {
	idx := strings.LastIndex(uri, ":")
	if idx < 0 || idx == len(uri)-1 {
		return "", fmt.Errorf("%w: %q", shared.ErrMalformedContext, uri)
	}
	return uri[idx+1:], nil
}
