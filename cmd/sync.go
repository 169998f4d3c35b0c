package main

import (
	"context"
	"fmt"
	"time"

	"github.com/srmq/playvault/internal/formatter"
	"github.com/srmq/playvault/internal/repositories"
	"github.com/srmq/playvault/internal/shared"
	"github.com/srmq/playvault/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SyncRun crawls the recently played history of every registered user for the
// target date and persists it, one transaction per user.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	rootPass := cmd.String("root-pass")

	date := time.Now()
	if raw := cmd.String("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return fmt.Errorf("%w: date must be YYYY-MM-DD: %v", shared.ErrInvalidArgument, err)
		}
		date = parsed
	}

	zone := config.Sync.Timezone
	if tz := cmd.String("tz"); tz != "" {
		zone = tz
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return fmt.Errorf("%w: unknown timezone %q: %v", shared.ErrInvalidArgument, zone, err)
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	version, err := shared.SchemaVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version == 0 {
		return fmt.Errorf("%w: run 'playvault setup database' first", shared.ErrStorageNotReady)
	}

	engine := tasks.NewSyncEngine(tasks.EngineOpts{
		Tokens:   r.tokens,
		Catalog:  r.catalog,
		Store:    repositories.NewStore(db),
		PageSize: config.Sync.PageSize,
		Location: loc,
		Logger:   r.logger,
	})

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			switch update.Phase {
			case tasks.SyncUser:
				r.logger.Info(update.Message, "step", update.Step, "total", update.Total)
			case tasks.UserFailed:
				r.logger.Warn(update.Message, "step", update.Step, "total", update.Total)
			default:
				r.logger.Debug(update.Message)
			}
		}
	}()

	result, err := engine.Run(ctx, progress, rootPass, date)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("sync run failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", formatter.RenderRunReport(result))
}

// SyncCheck verifies that the token service accepts the root credential and
// that the catalog answers an app-token probe.
func (r *Runner) SyncCheck(ctx context.Context, cmd *cli.Command) error {
	rootPass := cmd.String("root-pass")

	users, err := r.tokens.ListUsersWithToken(ctx, rootPass)
	if err != nil {
		return fmt.Errorf("token service check failed: %w", err)
	}
	r.writePlain("✓ Token service reachable, %d registered user(s)\n", len(users))

	token, err := r.tokens.AppToken(ctx, rootPass)
	if err != nil {
		return fmt.Errorf("app token check failed: %w", err)
	}
	if token == "" {
		return fmt.Errorf("%w: token service returned an empty app token", shared.ErrAuthFailed)
	}
	r.writePlain("✓ App token issued\n")

	return nil
}

// UsersList prints the users registered with the token service.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	rootPass := cmd.String("root-pass")

	users, err := r.tokens.ListUsersWithToken(ctx, rootPass)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(users, true)
	}

	emails := make([]string, len(users))
	names := make([]string, len(users))
	for i, u := range users {
		emails[i] = u.Email
		names[i] = u.FullName
	}
	return r.writePlain("%s", formatter.RenderUserList(emails, names))
}
