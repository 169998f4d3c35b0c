package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/srmq/playvault/internal/models"
	"github.com/srmq/playvault/internal/repositories"
	"github.com/srmq/playvault/internal/services"
	"github.com/srmq/playvault/internal/shared"
)

// UserOutcome records the result of synchronizing one user.
type UserOutcome struct {
	Email    string `json:"email"`
	FullName string `json:"fullname"`
	Events   int    `json:"events"`
	Total    int    `json:"total_events"`
	NewUser  bool   `json:"new_user"`
	Err      error  `json:"-"`
	ErrText  string `json:"error,omitempty"`
}

// RunResult summarizes a full sync run across the registered user set.
type RunResult struct {
	Date     string        `json:"date"`
	Zone     string        `json:"zone"`
	Outcomes []UserOutcome `json:"users"`
	Synced   int           `json:"synced"`
	Failed   int           `json:"failed"`
	Events   int           `json:"events"`
}

// SyncEngine orchestrates a sync run: one transaction per user, failures
// isolated at the user boundary.
//
// The root credential is passed into Run and threaded through every call that
// needs it; the engine holds no ambient credential state.
type SyncEngine struct {
	tokens     services.TokenProvider
	catalog    services.CatalogClient
	store      *repositories.Store
	controller *HistoryController
	loc        *time.Location
	logger     *log.Logger
}

// EngineOpts contains configuration for creating a SyncEngine.
type EngineOpts struct {
	Tokens   services.TokenProvider
	Catalog  services.CatalogClient
	Store    *repositories.Store
	PageSize int            // recently-played page size, default 50
	Location *time.Location // zone bounding the target date, default time.Local
	Logger   *log.Logger
}

// NewSyncEngine creates a SyncEngine with the provided collaborators.
func NewSyncEngine(opts EngineOpts) *SyncEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	resolver := NewResolver(opts.Catalog, opts.Logger)
	dispatcher := NewContextDispatcher(resolver, opts.Logger)
	controller := NewHistoryController(opts.Catalog, resolver, dispatcher, opts.PageSize, opts.Logger)

	return &SyncEngine{
		tokens:     opts.Tokens,
		catalog:    opts.Catalog,
		store:      opts.Store,
		controller: controller,
		loc:        opts.Location,
		logger:     opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *SyncEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run synchronizes every registered user's listening history for the target
// date. Per-user failures are logged and recorded in the result; only setup
// failures (rejected root credential, empty user list) abort the run.
func (e *SyncEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, rootPass string, date time.Time) (*RunResult, error) {
	if rootPass == "" {
		return nil, fmt.Errorf("%w: root credential is mandatory", shared.ErrMissingCredentials)
	}
	if e.store == nil {
		return nil, fmt.Errorf("%w: store not initialized", shared.ErrServiceUnavailable)
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, e.loc)

	users, err := e.tokens.ListUsersWithToken(ctx, rootPass)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, listUsersUpdate(len(users)))

	result := &RunResult{
		Date: dayStart.Format("2006-01-02"),
		Zone: e.loc.String(),
	}

	for i, user := range users {
		e.sendProgress(progress, syncUserUpdate(i+1, len(users), user.Email, user.FullName))

		userLog := shared.WithLogger(e.logger, "email", user.Email)
		userLog.Info("processing user", "name", user.FullName)

		outcome := UserOutcome{Email: user.Email, FullName: user.FullName}
		outcome.Events, outcome.Total, outcome.NewUser, outcome.Err = e.syncUser(ctx, rootPass, user, dayStart)

		if outcome.Err != nil {
			outcome.ErrText = outcome.Err.Error()
			result.Failed++
			userLog.Error("user sync failed", "error", outcome.Err)
			e.sendProgress(progress, userFailedUpdate(i+1, len(users), user.Email, outcome.Err))
		} else {
			result.Synced++
			result.Events += outcome.Events
			userLog.Info("user sync complete", "events", outcome.Events, "total", outcome.Total)
			e.sendProgress(progress, userCompleteUpdate(i+1, len(users), user.Email, outcome.Events))
		}

		result.Outcomes = append(result.Outcomes, outcome)
	}

	return result, nil
}

// syncUser runs one user's date sync inside a single transaction. Every error
// path rolls the transaction back, so a failed user contributes zero rows.
func (e *SyncEngine) syncUser(ctx context.Context, rootPass string, user services.RegisteredUser, dayStart time.Time) (events, total int, created bool, err error) {
	token, err := e.tokens.UserToken(ctx, rootPass, user.Email)
	if err != nil {
		return 0, 0, false, err
	}

	err = e.store.WithTx(func(repos *repositories.Repos) error {
		dbUser, isNew, err := e.ensureUser(ctx, repos, token, user.Email)
		if err != nil {
			return err
		}
		created = isNew

		events, err = e.controller.SyncDate(ctx, repos, token, dbUser, dayStart)
		if err != nil {
			return err
		}

		total, err = repos.Events.CountForUser(dbUser.ID())
		return err
	})
	if err != nil {
		return 0, 0, created, err
	}

	return events, total, created, nil
}

// ensureUser looks up the local user by contact email, creating it on first
// sighting with the remote profile snapshot attached before any play event is
// processed.
func (e *SyncEngine) ensureUser(ctx context.Context, repos *repositories.Repos, token, email string) (*models.User, bool, error) {
	existing, err := repos.Users.GetByEmail(email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	e.logger.Info("user not found locally, creating", "email", email)

	profile, spotifyID, err := e.catalog.UserProfile(ctx, token)
	if err != nil {
		return nil, false, err
	}

	user := models.NewUser(0, email)
	user.SetProfile(profile, spotifyID)
	if err := repos.Users.Create(user); err != nil {
		return nil, false, err
	}

	return user, true, nil
}
