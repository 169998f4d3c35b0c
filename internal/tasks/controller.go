package tasks

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/srmq/playvault/internal/models"
	"github.com/srmq/playvault/internal/repositories"
	"github.com/srmq/playvault/internal/services"
)

// HistoryController drives watermark-based pagination of one user's playback
// history for one target calendar date.
type HistoryController struct {
	catalog    services.CatalogClient
	resolver   *Resolver
	dispatcher *ContextDispatcher
	pageSize   int
	logger     *log.Logger
}

// NewHistoryController creates a controller with the given page size (the
// Spotify recently-played cap is 50, which is also the default).
func NewHistoryController(catalog services.CatalogClient, resolver *Resolver, dispatcher *ContextDispatcher, pageSize int, logger *log.Logger) *HistoryController {
	if pageSize <= 0 || pageSize > 50 {
		pageSize = 50
	}
	return &HistoryController{
		catalog:    catalog,
		resolver:   resolver,
		dispatcher: dispatcher,
		pageSize:   pageSize,
		logger:     logger,
	}
}

// SyncDate ingests the user's play events for the calendar date starting at
// dayStart (already localized to the configured zone), resuming past any
// events persisted by a prior run. Returns the number of events ingested.
//
// The watermark is the date's start instant, advanced past the most recently
// retrieved stored event by exactly one second. Two genuine plays on the same
// second would make the resume skip one of them; this mirrors long-standing
// behavior and is accepted over the risk of re-ingesting duplicates.
func (c *HistoryController) SyncDate(ctx context.Context, repos *repositories.Repos, token string, user *models.User, dayStart time.Time) (int, error) {
	dayEnd := dayStart.Add(24 * time.Hour)

	watermark := dayStart
	latest, err := repos.Events.LatestRetrievedInWindow(user.ID(), dayStart, dayEnd)
	if err != nil {
		return 0, err
	}
	if latest != nil {
		watermark = latest.PlayedAt().Add(time.Second)
		c.logger.Debug("resuming from stored watermark", "user", user.Email(), "watermark", watermark)
	}

	cursor := strconv.FormatInt(watermark.UnixMilli(), 10)
	count := 0

	for {
		page, err := c.catalog.RecentlyPlayed(ctx, token, cursor, c.pageSize)
		if err != nil {
			return count, err
		}

		var lastPlayed time.Time
		for _, item := range page.Items {
			if err := c.ingest(ctx, repos, token, user, item); err != nil {
				return count, err
			}
			if item.PlayedAt.After(lastPlayed) {
				lastPlayed = item.PlayedAt
			}
			count++
		}

		// Keep paging only on a full page whose latest play still falls on the
		// target date; continuation trusts the server cursor, not local math.
		if len(page.Items) < c.pageSize || page.NextCursor == "" {
			break
		}
		if !onSameDate(lastPlayed, dayStart) {
			break
		}
		cursor = page.NextCursor
	}

	return count, nil
}

// ingest persists one play event, resolving its track and context origin.
func (c *HistoryController) ingest(ctx context.Context, repos *repositories.Repos, token string, user *models.User, item services.PlayedItem) error {
	ev := models.NewPlayEvent(0, user.ID(), item.TrackSnapshot, item.RawContext, item.PlayedAt)

	if item.TrackID != "" {
		res, err := c.resolver.Resolve(ctx, repos, token, models.KindTrack, item.TrackID)
		if err != nil {
			return err
		}
		if res.Linked() {
			ev.LinkTrack(res.RecordID)
		}
	}

	origin, err := c.dispatcher.Dispatch(ctx, repos, token, item.Context)
	if err != nil {
		return err
	}
	if origin != nil {
		ev.LinkOrigin(origin.Kind, origin.RecordID)
	}

	return repos.Events.Create(ev)
}

// onSameDate reports whether ts falls on the calendar date beginning at
// dayStart, compared in dayStart's zone.
func onSameDate(ts, dayStart time.Time) bool {
	y1, m1, d1 := ts.In(dayStart.Location()).Date()
	y2, m2, d2 := dayStart.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
