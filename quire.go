package quire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/quire/internal/platform"
	"github.com/aretw0/quire/pkg/adapters/fs"
	"github.com/aretw0/quire/pkg/adapters/memory"
	"github.com/aretw0/quire/pkg/calendar"
	"github.com/aretw0/quire/pkg/categories"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/notes"
	"github.com/aretw0/quire/pkg/settings"
	"github.com/aretw0/quire/pkg/share"
	"github.com/aretw0/quire/pkg/tasks"
	"github.com/aretw0/quire/pkg/typed"
	"github.com/aretw0/quire/pkg/view"
)

// --- Configuration ---

// Option configures Open.
type Option = platform.Option

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option { return platform.WithLogger(logger) }

// WithStore injects a Durable Store instead of the filesystem adapter.
func WithStore(store core.Store) Option { return platform.WithStore(store) }

// WithFormat selects "json" (default) or "yaml" for stored collections.
func WithFormat(format string) Option { return platform.WithFormat(format) }

// WithReadOnly opens the data directory without ever writing to it.
func WithReadOnly(enabled bool) Option { return platform.WithReadOnly(enabled) }

// WithMustExist fails Open when the data directory is missing.
func WithMustExist(must bool) Option { return platform.WithMustExist(must) }

// WithForceTemp redirects the data directory into the temp sandbox.
func WithForceTemp(force bool) Option { return platform.WithForceTemp(force) }

// WithDevSafety controls the `go run`/`go test` sandbox (default on).
func WithDevSafety(enabled bool) Option { return platform.WithDevSafety(enabled) }

// WithRetryAttempts sets how many times a failed save is attempted.
func WithRetryAttempts(n uint) Option { return platform.WithRetryAttempts(n) }

// WithWatcherErrorHandler receives runtime errors of store watchers.
func WithWatcherErrorHandler(fn func(error)) Option { return platform.WithWatcherErrorHandler(fn) }

// WithCalendar injects the calendar provider.
func WithCalendar(p calendar.Provider) Option { return platform.WithCalendar(p) }

// WithCalendarAccess sets the answer of the file-backed calendar to permission requests.
func WithCalendarAccess(enabled bool) Option { return platform.WithCalendarAccess(enabled) }

// WithCalendars sets the calendars of the file-backed calendar.
func WithCalendars(cals ...calendar.Calendar) Option { return platform.WithCalendars(cals...) }

// WithCalendarDir sets where the file-backed calendar stores events.
func WithCalendarDir(dir string) Option { return platform.WithCalendarDir(dir) }

// WithShare injects the share collaborators.
func WithShare(files share.Files, sharer share.Sharer) Option {
	return platform.WithShare(files, sharer)
}

// WithOutbox enables the default sharer, which copies shared files into dir.
func WithOutbox(dir string) Option { return platform.WithOutbox(dir) }

// WithShareDirs sets the export and transient share directories.
func WithShareDirs(documents, cache string) Option { return platform.WithShareDirs(documents, cache) }

// WithView sets the collation language and the default sort mode.
func WithView(language string, sort view.SortMode) Option { return platform.WithView(language, sort) }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return platform.WithClock(now) }

// WithIDs overrides note and task ID generation.
func WithIDs(newID func() string) Option { return platform.WithIDs(newID) }

// --- Application ---

// App owns one session: the repositories, the derived view settings and the
// external workflows. Build it with Open.
type App struct {
	Store      core.Store
	Notes      *notes.Repository
	Tasks      *tasks.Repository
	Categories *categories.Registry
	Theme      *settings.Theme
	View       view.Engine
	Sort       view.SortMode
	Calendar   *calendar.Workflow
	Provider   calendar.Provider
	Share      *share.Service
	Logger     *slog.Logger

	path    string
	fsStore *fs.Store
}

// Open builds an App over the data directory at path and loads the stored
// collections. Calendar permission is requested once here; a denial only
// disables the calendar workflow.
func Open(ctx context.Context, path string, opts ...Option) (*App, error) {
	backend, err := platform.Open(ctx, path, opts...)
	if err != nil {
		return nil, err
	}
	cfg := backend.Settings
	logger := backend.Logger

	a := &App{
		Store:   backend.Store,
		Logger:  logger,
		View:    view.NewEngine(cfg.Language),
		Sort:    cfg.Sort,
		Theme:   settings.NewTheme(backend.Store, backend.Codec),
		path:    backend.Path,
		fsStore: backend.FS,
	}

	a.Notes = notes.New(
		typed.NewCollection[core.Note](backend.Store, core.KeyNotes, backend.Codec),
		notes.WithLogger(logger.With("component", "notes")),
		notes.WithClock(cfg.Clock),
		notes.WithIDs(cfg.IDs),
	)
	a.Tasks = tasks.New(
		typed.NewCollection[core.Task](backend.Store, core.KeyTasks, backend.Codec),
		tasks.WithLogger(logger.With("component", "tasks")),
		tasks.WithIDs(cfg.IDs),
	)
	a.Categories = categories.New(
		typed.NewCollection[string](backend.Store, core.KeyCategories, backend.Codec),
		logger.With("component", "categories"),
	)

	// The three keys are independent.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Notes.Load(gctx) })
	g.Go(func() error { return a.Tasks.Load(gctx) })
	g.Go(func() error { return a.Categories.Load(gctx) })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load collections: %w", err)
	}

	a.Provider = a.calendarProvider(cfg)
	a.Calendar = calendar.NewWorkflow(a.Provider, a.Tasks,
		calendar.WithLogger(logger.With("component", "calendar")))
	if _, err := a.Calendar.Authorize(ctx); err != nil {
		logger.Warn("calendar disabled", "error", err)
	}

	files, sharer := a.shareCollaborators(cfg)
	documents, cache := cfg.DocumentsDir, cfg.CacheDir
	if documents == "" {
		documents = a.dataPath("")
	}
	if cache == "" {
		cache = filepath.Join(os.TempDir(), "quire-cache")
	}
	a.Share = share.New(files, sharer, documents, cache,
		share.WithLogger(logger.With("component", "share")))

	logger.Debug("quire opened",
		"path", a.path,
		"notes", len(a.Notes.List()),
		"tasks", a.Tasks.Len(),
	)
	return a, nil
}

// Path returns the resolved data directory, empty for injected stores.
func (a *App) Path() string {
	return a.path
}

// DerivedNotes returns the notes matching query in the given order. An
// empty mode uses the configured default.
func (a *App) DerivedNotes(query string, mode view.SortMode) []core.Note {
	if mode == "" {
		mode = a.Sort
	}
	return a.View.Derive(a.Notes.List(), query, mode)
}

// ValidateNote checks fields against the registered categories.
func (a *App) ValidateNote(fields core.NoteFields) error {
	return fields.Validate(a.Categories.Contains)
}

// Flush retries every save that failed earlier in the session.
func (a *App) Flush(ctx context.Context) error {
	return errors.Join(
		a.Notes.Flush(ctx),
		a.Tasks.Flush(ctx),
		a.Categories.Flush(ctx),
	)
}

// Watch reports external changes to the stored keys matching pattern.
func (a *App) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	w, ok := a.Store.(core.Watchable)
	if !ok {
		return nil, fmt.Errorf("store %T does not support watching", a.Store)
	}
	return w.Watch(ctx, pattern)
}

// Reload re-reads the collection behind key after an external change.
func (a *App) Reload(ctx context.Context, key string) error {
	switch key {
	case core.KeyNotes:
		return a.Notes.Load(ctx)
	case core.KeyTasks:
		return a.Tasks.Load(ctx)
	case core.KeyCategories:
		return a.Categories.Load(ctx)
	}
	return nil
}

func (a *App) dataPath(rel string) string {
	if filepath.IsAbs(rel) || a.path == "" {
		return rel
	}
	return filepath.Join(a.path, rel)
}

func (a *App) calendarProvider(cfg platform.AppSettings) calendar.Provider {
	if cfg.Calendar != nil {
		return cfg.Calendar
	}
	if a.path == "" {
		return memory.NewCalendar(cfg.CalendarEnabled, cfg.Calendars...)
	}
	return fs.NewCalendar(fs.CalendarConfig{
		Dir:       a.dataPath(cfg.CalendarDir),
		Enabled:   cfg.CalendarEnabled,
		Calendars: cfg.Calendars,
		Logger:    a.Logger.With("component", "calendar-store"),
	})
}

func (a *App) shareCollaborators(cfg platform.AppSettings) (share.Files, share.Sharer) {
	if cfg.Files != nil && cfg.Sharer != nil {
		return cfg.Files, cfg.Sharer
	}
	if a.path == "" {
		files := memory.NewFiles()
		return files, memory.NewSharer(files, false)
	}
	return fs.Files{Logger: a.Logger}, fs.Outbox{Dir: cfg.Outbox, Logger: a.Logger}
}
