package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/quire/pkg/calendar"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/share"
	"github.com/aretw0/quire/pkg/view"
)

// options holds the internal configuration for opening a store.
type options struct {
	store         core.Store
	logger        *slog.Logger
	format        string
	readOnly      bool
	mustExist     bool
	forceTemp     bool
	devSafety     bool
	retryAttempts uint
	errorHandler  func(error)
	app           AppSettings
}

// AppSettings are the collaborators and preferences of an App.
// Zero values are filled in by the composition root.
type AppSettings struct {
	Calendar        calendar.Provider // nil: file-backed calendar
	CalendarEnabled bool
	Calendars       []calendar.Calendar
	CalendarDir     string // relative to the data directory when not absolute
	Files           share.Files
	Sharer          share.Sharer
	Outbox          string
	DocumentsDir    string
	CacheDir        string
	Language        string
	Sort            view.SortMode
	Clock           func() time.Time
	IDs             func() string
}

// Option configures Open.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		format:        "json",
		devSafety:     true,
		retryAttempts: 3,
		app: AppSettings{
			CalendarEnabled: true,
			Calendars:       []calendar.Calendar{{ID: "local", Name: "Local"}},
			CalendarDir:     "calendar",
			Sort:            view.DateDesc,
		},
	}
}

// WithStore injects a store (e.g. memory.Store). The filesystem adapter and
// path resolution are skipped.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithLogger sets the logger for the store and everything built on it.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFormat selects the text format of stored collections ("json" or "yaml").
func WithFormat(format string) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithReadOnly opens the store in read-only mode.
// Saves return core.ErrReadOnly, the directory is never created and the dev
// sandbox is bypassed.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithMustExist fails Open when the data directory is missing.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithForceTemp forces the data directory into the temp sandbox.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithDevSafety controls the sandbox used under `go run` and `go test`.
// By default (true) such runs are redirected to a temp directory so they
// cannot touch real data.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

// WithRetryAttempts sets how many times a failed save is attempted.
func WithRetryAttempts(n uint) Option {
	return func(o *options) {
		o.retryAttempts = n
	}
}

// WithWatcherErrorHandler receives runtime errors of store watchers.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithCalendar injects the calendar provider.
func WithCalendar(p calendar.Provider) Option {
	return func(o *options) {
		o.app.Calendar = p
	}
}

// WithCalendarAccess sets whether the file-backed calendar grants permission.
func WithCalendarAccess(enabled bool) Option {
	return func(o *options) {
		o.app.CalendarEnabled = enabled
	}
}

// WithCalendars sets the calendars offered by the file-backed calendar.
func WithCalendars(cals ...calendar.Calendar) Option {
	return func(o *options) {
		o.app.Calendars = cals
	}
}

// WithCalendarDir sets where the file-backed calendar keeps events.
func WithCalendarDir(dir string) Option {
	return func(o *options) {
		o.app.CalendarDir = dir
	}
}

// WithShare injects the share collaborators.
func WithShare(files share.Files, sharer share.Sharer) Option {
	return func(o *options) {
		o.app.Files = files
		o.app.Sharer = sharer
	}
}

// WithOutbox sets the directory the default sharer copies files into.
func WithOutbox(dir string) Option {
	return func(o *options) {
		o.app.Outbox = dir
	}
}

// WithShareDirs sets where exports and transient share files are written.
func WithShareDirs(documents, cache string) Option {
	return func(o *options) {
		o.app.DocumentsDir = documents
		o.app.CacheDir = cache
	}
}

// WithView sets the collation language and default sort mode.
func WithView(language string, sort view.SortMode) Option {
	return func(o *options) {
		o.app.Language = language
		if sort != "" {
			o.app.Sort = sort
		}
	}
}

// WithClock overrides the time source of the repositories.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.app.Clock = now
	}
}

// WithIDs overrides ID generation for notes and tasks.
func WithIDs(newID func() string) Option {
	return func(o *options) {
		o.app.IDs = newID
	}
}
