package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/srmq/playvault/internal/models"
	"github.com/srmq/playvault/internal/repositories"
	"github.com/srmq/playvault/internal/services"
)

// Resolution is the typed outcome of resolving a remote identifier.
// RecordID is empty when the entity is absent upstream (or resolution was
// degraded by policy); an event slot referencing it stays unlinked.
type Resolution struct {
	RecordID string
	Created  bool
}

// Linked reports whether the resolution produced a usable record reference.
func (r Resolution) Linked() bool { return r.RecordID != "" }

// Resolver implements cache-or-fetch entity resolution.
//
// Repository first: a cache hit never touches the remote service. On a miss the
// catalog client is consulted; upstream absence yields an unlinked resolution,
// not an error. Remote failures propagate, except for kinds listed in the
// degrade policy, which fall back to "absent" with a logged warning.
type Resolver struct {
	catalog services.CatalogClient
	logger  *log.Logger

	// degradeOnError lists the kinds whose remote failures downgrade to an
	// unlinked resolution instead of failing the user's run. Historically only
	// playlists behave this way: one missing playlist must never abort a page.
	degradeOnError map[models.Kind]bool
}

// NewResolver creates a Resolver with the default degrade policy (playlist only).
func NewResolver(catalog services.CatalogClient, logger *log.Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		logger:  logger,
		degradeOnError: map[models.Kind]bool{
			models.KindPlaylist: true,
		},
	}
}

// Resolve returns a reference to the local record for (kind, remoteID),
// creating and persisting it on first sighting. Track creation also fetches
// and persists the audio feature/analysis side records, inside the same
// repository scope as the track row.
func (r *Resolver) Resolve(ctx context.Context, repos *repositories.Repos, token string, kind models.Kind, remoteID string) (Resolution, error) {
	existing, err := repos.Catalog.GetByRemoteID(kind, remoteID)
	if err != nil {
		return Resolution{}, err
	}
	if existing != nil {
		return Resolution{RecordID: existing.ID()}, nil
	}

	payload, err := r.catalog.Resource(ctx, token, kind, remoteID)
	if err != nil {
		if r.degradeOnError[kind] {
			r.logger.Warn("entity resolution degraded to absent", "kind", kind, "remote_id", remoteID, "error", err)
			return Resolution{}, nil
		}
		return Resolution{}, err
	}
	if payload == nil {
		// Deleted or unavailable upstream; the event slot stays unlinked.
		return Resolution{}, nil
	}

	rec, created, err := repos.Catalog.CreateOrGet(models.NewCatalogRecord(0, kind, remoteID, payload))
	if err != nil {
		return Resolution{}, err
	}

	if created && kind == models.KindTrack {
		if err := r.createTrackSideRecords(ctx, repos, token, rec.ID(), remoteID); err != nil {
			return Resolution{}, err
		}
	}

	return Resolution{RecordID: rec.ID(), Created: created}, nil
}

// createTrackSideRecords fetches audio features and analysis for a newly
// created track. Side records are fetched only at track-creation time, never
// backfilled for pre-existing tracks.
func (r *Resolver) createTrackSideRecords(ctx context.Context, repos *repositories.Repos, token, trackRecordID, remoteID string) error {
	features, err := r.catalog.AudioFeatures(ctx, token, remoteID)
	if err != nil {
		return err
	}
	if features != nil {
		if err := repos.Audio.Create(models.NewAudioRecord(models.AspectFeatures, trackRecordID, features)); err != nil {
			return err
		}
	}

	analysis, err := r.catalog.AudioAnalysis(ctx, token, remoteID)
	if err != nil {
		return err
	}
	if analysis != nil {
		if err := repos.Audio.Create(models.NewAudioRecord(models.AspectAnalysis, trackRecordID, analysis)); err != nil {
			return err
		}
	}

	return nil
}
