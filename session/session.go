// ABOUTME: Session lifecycle wiring for the notification engine
// ABOUTME: Assembles store, poller, and dispatcher; owns init and teardown
package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/bellhop/db"
	"github.com/harperreed/bellhop/dispatch"
	"github.com/harperreed/bellhop/models"
	"github.com/harperreed/bellhop/poll"
	"github.com/harperreed/bellhop/remote"
	"github.com/harperreed/bellhop/routes"
	"github.com/harperreed/bellhop/store"
)

// Logger is the logging surface shared with the poller and dispatcher.
type Logger interface {
	Printf(format string, args ...any)
}

// Session owns the one store per login and everything that feeds it.
// Exactly one session exists per authenticated run; a second instance
// would double-poll and desynchronize counters, so constructors take the
// session rather than building their own.
type Session struct {
	Config     *remote.Config
	Store      *store.Store
	Dispatcher *dispatch.Dispatcher

	api      remote.API
	database *sql.DB
	poller   *poll.Poller
	cancel   context.CancelFunc
	logger   Logger
}

// New wires a session from its collaborators. The database stays owned by
// the caller; the session only reads preferences and writes them back on
// teardown.
func New(cfg *remote.Config, database *sql.DB, api remote.API, logger Logger) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	soundEnabled, err := db.GetSoundEnabled(database)
	if err != nil {
		return nil, fmt.Errorf("failed to read sound preference: %w", err)
	}

	s := store.NewStore(soundEnabled)

	// Warm start from the cached window; the first poll overwrites it.
	if snapshot, err := db.LoadSnapshot(database); err == nil && len(snapshot) > 0 {
		s.Seed(snapshot)
	}

	return &Session{
		Config:     cfg,
		Store:      s,
		Dispatcher: dispatch.New(api, s, logger),
		api:        api,
		database:   database,
		poller:     poll.New(api, s, cfg.PollInterval, cfg.WindowSize, logger),
		logger:     logger,
	}, nil
}

// Start launches the poll loop, beginning with an immediate fetch.
func (s *Session) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.poller.Start(ctx)
}

// Close stops the poll loop and persists session state for the next run.
func (s *Session) Close() error {
	if s.cancel != nil {
		s.cancel()
		s.poller.Wait()
	}

	if err := db.SaveSnapshot(s.database, s.Store.Window(s.Config.WindowSize)); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	if err := db.SetSoundEnabled(s.database, s.Store.SoundEnabled()); err != nil {
		return fmt.Errorf("failed to save sound preference: %w", err)
	}
	return nil
}

// Refresh performs one synchronous fetch-and-merge of the live window,
// for one-shot commands that run without the poll loop.
func (s *Session) Refresh(ctx context.Context) error {
	result, err := s.api.List(ctx, remote.ListOptions{
		Page:  1,
		Limit: s.Config.WindowSize,
	})
	if err != nil {
		return fmt.Errorf("failed to refresh notifications: %w", err)
	}
	s.Store.ReplaceWindow(result.Data)
	return nil
}

// ToggleSound flips the sound preference and persists it immediately.
func (s *Session) ToggleSound() (bool, error) {
	enabled := !s.Store.SoundEnabled()
	s.Store.SetSoundEnabled(enabled)
	return enabled, db.SetSoundEnabled(s.database, enabled)
}

// Resolve maps a held notification to its navigation target for this
// session's viewer class.
func (s *Session) Resolve(id string) (string, error) {
	item, ok := s.Store.Get(id)
	if !ok {
		return "", store.ErrNotFound
	}
	return routes.Resolve(item, s.Config.Privileged), nil
}

// ResolveNotification maps any record to its target, for rows the history
// view already holds.
func (s *Session) ResolveNotification(n models.Notification) string {
	return routes.Resolve(n, s.Config.Privileged)
}

// LoadMore fetches one more history page and appends it, deduplicated by
// id. Returns how many records were new and the server's total.
func (s *Session) LoadMore(ctx context.Context, page int) (added, total int, err error) {
	result, err := s.api.List(ctx, remote.ListOptions{
		Page:  page,
		Limit: s.Config.PageSize,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load page %d: %w", page, err)
	}
	return s.Store.AppendPage(result.Data), result.Pagination.Total, nil
}
