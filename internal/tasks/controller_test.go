package tasks

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/srmq/playvault/internal/models"
	"github.com/srmq/playvault/internal/repositories"
	"github.com/srmq/playvault/internal/services"
	ptesting "github.com/srmq/playvault/internal/testing"
)

func newTestController(mock *ptesting.MockCatalog, pageSize int) *HistoryController {
	logger := testLogger()
	resolver := NewResolver(mock, logger)
	dispatcher := NewContextDispatcher(resolver, logger)
	return NewHistoryController(mock, resolver, dispatcher, pageSize, logger)
}

func createControllerUser(t *testing.T, repos *repositories.Repos) *models.User {
	t.Helper()

	user := models.NewUser(0, "listener@example.com")
	if err := repos.Users.Create(user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func playedItem(trackID string, playedAt time.Time) services.PlayedItem {
	return services.PlayedItem{
		TrackSnapshot: json.RawMessage(`{"id":"` + trackID + `","name":"Song"}`),
		TrackID:       trackID,
		PlayedAt:      playedAt,
	}
}

func TestHistoryController(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	t.Run("FreshDayStartsAtMidnight", func(t *testing.T) {
		_, repos := setupTestRepos(t)
		user := createControllerUser(t, repos)

		mock := &ptesting.MockCatalog{}
		c := newTestController(mock, 50)

		count, err := c.SyncDate(ctx, repos, "tok", user, day)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 0 {
			t.Errorf("expected 0 events, got %d", count)
		}

		want := strconv.FormatInt(day.UnixMilli(), 10)
		if len(mock.Cursors) != 1 || mock.Cursors[0] != want {
			t.Errorf("expected single fetch with cursor %s, got %v", want, mock.Cursors)
		}
	})

	t.Run("ResumesOneSecondPastWatermark", func(t *testing.T) {
		_, repos := setupTestRepos(t)
		user := createControllerUser(t, repos)

		stored := models.NewPlayEvent(0, user.ID(), json.RawMessage(`{"name":"Earlier"}`), nil, day.Add(10*time.Hour))
		if err := repos.Events.Create(stored); err != nil {
			t.Fatalf("failed to seed event: %v", err)
		}

		mock := &ptesting.MockCatalog{}
		c := newTestController(mock, 50)

		if _, err := c.SyncDate(ctx, repos, "tok", user, day); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := strconv.FormatInt(day.Add(10*time.Hour+time.Second).UnixMilli(), 10)
		if mock.Cursors[0] != want {
			t.Errorf("expected resume cursor %s, got %s", want, mock.Cursors[0])
		}
	})

	t.Run("IngestsAndLinks", func(t *testing.T) {
		_, repos := setupTestRepos(t)
		user := createControllerUser(t, repos)

		item := playedItem("track1", day.Add(12*time.Hour))
		item.RawContext = json.RawMessage(`{"type":"playlist","uri":"spotify:playlist:pl1"}`)
		item.Context = &services.PlayContext{Type: "playlist", URI: "spotify:playlist:pl1"}

		mock := &ptesting.MockCatalog{
			Pages: []services.RecentlyPlayedPage{{Items: []services.PlayedItem{item}}},
			Resources: map[string]json.RawMessage{
				ptesting.ResourceKey(models.KindTrack, "track1"): json.RawMessage(`{"id":"track1"}`),
				ptesting.ResourceKey(models.KindPlaylist, "pl1"): json.RawMessage(`{"id":"pl1"}`),
			},
		}
		c := newTestController(mock, 50)

		count, err := c.SyncDate(ctx, repos, "tok", user, day)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 1 {
			t.Fatalf("expected 1 event, got %d", count)
		}

		events, err := repos.Events.ListForUser(user.ID())
		if err != nil {
			t.Fatalf("failed to list events: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 stored event, got %d", len(events))
		}

		ev := events[0]
		if ev.TrackRecordID() == "" {
			t.Error("event should link its track record")
		}
		if ev.OriginKind() != models.KindPlaylist || ev.OriginRecordID() == "" {
			t.Errorf("event should link its playlist origin, got %s %s", ev.OriginKind(), ev.OriginRecordID())
		}
	})

	t.Run("RepeatedTrackResolvedOnce", func(t *testing.T) {
		_, repos := setupTestRepos(t)
		user := createControllerUser(t, repos)

		key := ptesting.ResourceKey(models.KindTrack, "track1")
		mock := &ptesting.MockCatalog{
			Pages: []services.RecentlyPlayedPage{{Items: []services.PlayedItem{
				playedItem("track1", day.Add(8*time.Hour)),
				playedItem("track1", day.Add(9*time.Hour)),
			}}},
			Resources: map[string]json.RawMessage{key: json.RawMessage(`{"id":"track1"}`)},
		}
		c := newTestController(mock, 50)

		count, err := c.SyncDate(ctx, repos, "tok", user, day)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 events, got %d", count)
		}
		if mock.ResourceCalls[key] != 1 {
			t.Errorf("expected one track fetch, got %d", mock.ResourceCalls[key])
		}

		rec, err := repos.Catalog.GetByRemoteID(models.KindTrack, "track1")
		if err != nil || rec == nil {
			t.Fatalf("expected the track record to exist, got %v %v", rec, err)
		}
	})

	t.Run("PaginationContinuesOnFullPage", func(t *testing.T) {
		_, repos := setupTestRepos(t)
		user := createControllerUser(t, repos)

		mock := &ptesting.MockCatalog{
			Pages: []services.RecentlyPlayedPage{
				{
					Items: []services.PlayedItem{
						playedItem("t1", day.Add(1*time.Hour)),
						playedItem("t2", day.Add(2*time.Hour)),
					},
					NextCursor: "cursor-2",
				},
				{
					Items: []services.PlayedItem{playedItem("t3", day.Add(3*time.Hour))},
				},
			},
			Resources: map[string]json.RawMessage{
				ptesting.ResourceKey(models.KindTrack, "t1"): json.RawMessage(`{"id":"t1"}`),
				ptesting.ResourceKey(models.KindTrack, "t2"): json.RawMessage(`{"id":"t2"}`),
				ptesting.ResourceKey(models.KindTrack, "t3"): json.RawMessage(`{"id":"t3"}`),
			},
		}
		c := newTestController(mock, 2)

		count, err := c.SyncDate(ctx, repos, "tok", user, day)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 3 {
			t.Errorf("expected 3 events, got %d", count)
		}
		if len(mock.Cursors) != 2 {
			t.Fatalf("expected 2 page fetches, got %d", len(mock.Cursors))
		}
		if mock.Cursors[1] != "cursor-2" {
			t.Errorf("continuation should use the server cursor, got %s", mock.Cursors[1])
		}
	})

	t.Run("PaginationStopsOnShortPage", func(t *testing.T) {
		_, repos := setupTestRepos(t)
		user := createControllerUser(t, repos)

		mock := &ptesting.MockCatalog{
			Pages: []services.RecentlyPlayedPage{
				{
					Items:      []services.PlayedItem{playedItem("t1", day.Add(1*time.Hour))},
					NextCursor: "cursor-2",
				},
			},
			Resources: map[string]json.RawMessage{
				ptesting.ResourceKey(models.KindTrack, "t1"): json.RawMessage(`{"id":"t1"}`),
			},
		}
		c := newTestController(mock, 2)

		if _, err := c.SyncDate(ctx, repos, "tok", user, day); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(mock.Cursors) != 1 {
			t.Errorf("short page should stop pagination, got %d fetches", len(mock.Cursors))
		}
	})

	t.Run("PaginationStopsWithoutServerCursor", func(t *testing.T) {
		_, repos := setupTestRepos(t)
		user := createControllerUser(t, repos)

		mock := &ptesting.MockCatalog{
			Pages: []services.RecentlyPlayedPage{
				{
					Items: []services.PlayedItem{
						playedItem("t1", day.Add(1*time.Hour)),
						playedItem("t2", day.Add(2*time.Hour)),
					},
				},
			},
			Resources: map[string]json.RawMessage{
				ptesting.ResourceKey(models.KindTrack, "t1"): json.RawMessage(`{"id":"t1"}`),
				ptesting.ResourceKey(models.KindTrack, "t2"): json.RawMessage(`{"id":"t2"}`),
			},
		}
		c := newTestController(mock, 2)

		if _, err := c.SyncDate(ctx, repos, "tok", user, day); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(mock.Cursors) != 1 {
			t.Errorf("full page without a server cursor should stop, got %d fetches", len(mock.Cursors))
		}
	})

	t.Run("PaginationStopsWhenDateRollsOver", func(t *testing.T) {
		_, repos := setupTestRepos(t)
		user := createControllerUser(t, repos)

		mock := &ptesting.MockCatalog{
			Pages: []services.RecentlyPlayedPage{
				{
					Items: []services.PlayedItem{
						playedItem("t1", day.Add(23*time.Hour)),
						playedItem("t2", day.Add(25*time.Hour)),
					},
					NextCursor: "cursor-2",
				},
			},
			Resources: map[string]json.RawMessage{
				ptesting.ResourceKey(models.KindTrack, "t1"): json.RawMessage(`{"id":"t1"}`),
				ptesting.ResourceKey(models.KindTrack, "t2"): json.RawMessage(`{"id":"t2"}`),
			},
		}
		c := newTestController(mock, 2)

		count, err := c.SyncDate(ctx, repos, "tok", user, day)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 2 {
			t.Errorf("returned items should all persist, got %d", count)
		}
		if len(mock.Cursors) != 1 {
			t.Errorf("rolled-over date should stop pagination, got %d fetches", len(mock.Cursors))
		}
	})

	t.Run("UnlinkedTrackStillPersists", func(t *testing.T) {
		_, repos := setupTestRepos(t)
		user := createControllerUser(t, repos)

		mock := &ptesting.MockCatalog{
			Pages: []services.RecentlyPlayedPage{{Items: []services.PlayedItem{
				playedItem("deleted-track", day.Add(6*time.Hour)),
			}}},
		}
		c := newTestController(mock, 50)

		count, err := c.SyncDate(ctx, repos, "tok", user, day)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 1 {
			t.Fatalf("expected 1 event, got %d", count)
		}

		events, err := repos.Events.ListForUser(user.ID())
		if err != nil {
			t.Fatalf("failed to list events: %v", err)
		}
		if events[0].TrackRecordID() != "" {
			t.Error("event for an absent track should stay unlinked")
		}
	})
}
