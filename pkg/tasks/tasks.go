// Package tasks owns the in-memory task checklist and persists every mutation
// as a full snapshot under core.KeyTasks. Outcomes follow the notes package:
// nil, core.ErrNotFound or *core.PersistError.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/aretw0/quire/pkg/calendar"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/typed"
)

var _ calendar.Linker = (*Repository)(nil)

// Repository is the Task Repository.
type Repository struct {
	coll   *typed.Collection[core.Task]
	newID  func() string
	logger *slog.Logger

	mu       sync.Mutex
	tasks    []core.Task
	dirty    bool
	persists int
	failures int
}

// Option configures a Repository.
type Option func(*Repository)

// WithIDs overrides ID generation.
func WithIDs(newID func() string) Option {
	return func(r *Repository) {
		if newID != nil {
			r.newID = newID
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates an empty repository bound to coll.
func New(coll *typed.Collection[core.Task], opts ...Option) *Repository {
	r := &Repository{
		coll:   coll,
		newID:  uuid.NewString,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load replaces the in-memory checklist with the stored snapshot.
func (r *Repository) Load(ctx context.Context) error {
	loaded, err := r.coll.Load(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = loaded
	r.dirty = false
	r.logger.Debug("tasks loaded", "count", len(loaded))
	return nil
}

// Create adds an open, medium priority task at the front of the checklist.
func (r *Repository) Create(ctx context.Context, title string) (core.Task, error) {
	if strings.TrimSpace(title) == "" {
		return core.Task{}, core.ErrEmptyTitle
	}
	if !utf8.ValidString(title) {
		return core.Task{}, core.ErrInvalidText
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	task := core.Task{
		ID:       r.newID(),
		Title:    title,
		Priority: core.PriorityMedium,
	}
	r.tasks = append([]core.Task{task}, r.tasks...)
	return task.Clone(), r.persist(ctx, "create")
}

// ToggleCompleted flips Completed.
func (r *Repository) ToggleCompleted(ctx context.Context, id string) (core.Task, error) {
	return r.modify(ctx, "toggle completed", id, func(t *core.Task) {
		t.Completed = !t.Completed
	})
}

// SetCalendarEventID records the external event of a task. Only that field
// changes; a previous ID is overwritten and its event is left as it is.
func (r *Repository) SetCalendarEventID(ctx context.Context, id, eventID string) (core.Task, error) {
	return r.modify(ctx, "link calendar", id, func(t *core.Task) {
		t.CalendarEventID = core.StringPtr(eventID)
	})
}

// SetPriority changes the stored priority.
func (r *Repository) SetPriority(ctx context.Context, id string, p core.Priority) (core.Task, error) {
	if !p.IsValid() {
		return core.Task{}, fmt.Errorf("%w: %q", core.ErrInvalidPriority, p)
	}
	return r.modify(ctx, "set priority", id, func(t *core.Task) {
		t.Priority = p
	})
}

// SetDueDate sets or, with nil, clears the due date.
func (r *Repository) SetDueDate(ctx context.Context, id string, due *time.Time) (core.Task, error) {
	return r.modify(ctx, "set due date", id, func(t *core.Task) {
		if due == nil {
			t.DueDate = nil
			return
		}
		d := *due
		t.DueDate = &d
	})
}

// Delete removes the task with id. A linked calendar event is not touched.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete task %s: %w", id, core.ErrNotFound)
	}
	r.tasks = append(r.tasks[:i:i], r.tasks[i+1:]...)
	return r.persist(ctx, "delete")
}

// Get returns a copy of the task with id.
func (r *Repository) Get(id string) (core.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return core.Task{}, false
	}
	return r.tasks[i].Clone(), true
}

// List returns a copy of the checklist in storage order.
func (r *Repository) List() []core.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]core.Task, len(r.tasks))
	for i, t := range r.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Len returns the number of tasks.
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// Flush saves the checklist again if the last save failed.
func (r *Repository) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.dirty {
		return nil
	}
	return r.persist(ctx, "flush")
}

// Dirty reports whether in-memory state is ahead of the store.
func (r *Repository) Dirty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dirty
}

func (r *Repository) modify(ctx context.Context, op, id string, fn func(*core.Task)) (core.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return core.Task{}, fmt.Errorf("%s %s: %w", op, id, core.ErrNotFound)
	}
	fn(&r.tasks[i])
	return r.tasks[i].Clone(), r.persist(ctx, op)
}

func (r *Repository) indexOf(id string) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// persist must be called with mu held.
func (r *Repository) persist(ctx context.Context, op string) error {
	if err := r.coll.Save(ctx, r.tasks); err != nil {
		r.dirty = true
		r.failures++
		r.logger.Warn("tasks not saved", "op", op, "error", err)
		return &core.PersistError{Op: op, Key: r.coll.Key(), Err: err}
	}
	r.dirty = false
	r.persists++
	r.logger.Debug("tasks saved", "op", op, "count", len(r.tasks))
	return nil
}
