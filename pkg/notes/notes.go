// Package notes owns the in-memory note collection and persists every
// mutation as a full snapshot under core.KeyNotes.
//
// Each mutating method reports one of three outcomes:
//   - nil: the collection changed and the snapshot was saved.
//   - core.ErrNotFound: the ID is unknown; nothing changed and nothing was saved.
//   - *core.PersistError: the collection changed but the save failed. The
//     in-memory state stays authoritative and Flush retries the save.
package notes

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/typed"
)

// Repository is the Note Repository.
type Repository struct {
	coll   *typed.Collection[core.Note]
	now    func() time.Time
	newID  func() string
	logger *slog.Logger

	mu       sync.Mutex
	notes    []core.Note
	dirty    bool
	persists int
	failures int
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

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

// New creates an empty repository bound to coll. Call Load to read the
// stored snapshot.
func New(coll *typed.Collection[core.Note], opts ...Option) *Repository {
	r := &Repository{
		coll:   coll,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load replaces the in-memory collection with the stored snapshot.
// On error the current collection is kept.
func (r *Repository) Load(ctx context.Context) error {
	loaded, err := r.coll.Load(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = loaded
	r.dirty = false
	r.logger.Debug("notes loaded", "count", len(loaded))
	return nil
}

// Create adds a note at the front of the collection.
// Callers validate categories first; a blank title is refused with
// core.ErrEmptyTitle and non-UTF-8 text with core.ErrInvalidText.
func (r *Repository) Create(ctx context.Context, fields core.NoteFields) (core.Note, error) {
	if err := fields.Validate(nil); err != nil {
		return core.Note{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	note := core.Note{
		ID:        r.newID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	fields.Apply(&note)

	r.notes = append([]core.Note{note}, r.notes...)
	return note.Clone(), r.persist(ctx, "create")
}

// Update replaces the editable fields of the note with id.
// ID, CreatedAt and IsFavorite are kept.
func (r *Repository) Update(ctx context.Context, id string, fields core.NoteFields) (core.Note, error) {
	if err := fields.CheckText(); err != nil {
		return core.Note{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return core.Note{}, fmt.Errorf("update note %s: %w", id, core.ErrNotFound)
	}

	note := &r.notes[i]
	fields.Apply(note)
	note.UpdatedAt = r.now()
	if note.UpdatedAt.Before(note.CreatedAt) {
		note.UpdatedAt = note.CreatedAt
	}
	return note.Clone(), r.persist(ctx, "update")
}

// Delete removes the note with id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete note %s: %w", id, core.ErrNotFound)
	}
	r.notes = append(r.notes[:i:i], r.notes[i+1:]...)
	return r.persist(ctx, "delete")
}

// ToggleFavorite flips IsFavorite. UpdatedAt is left alone: favoriting is not
// a content edit.
func (r *Repository) ToggleFavorite(ctx context.Context, id string) (core.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return core.Note{}, fmt.Errorf("toggle favorite %s: %w", id, core.ErrNotFound)
	}
	r.notes[i].IsFavorite = !r.notes[i].IsFavorite
	return r.notes[i].Clone(), r.persist(ctx, "toggle favorite")
}

// Get returns a copy of the note with id.
func (r *Repository) Get(id string) (core.Note, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return core.Note{}, false
	}
	return r.notes[i].Clone(), true
}

// List returns a copy of the collection in storage order.
// Display order belongs to the view package.
func (r *Repository) List() []core.Note {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]core.Note, len(r.notes))
	for i, n := range r.notes {
		out[i] = n.Clone()
	}
	return out
}

// Flush saves the collection again if the last save failed.
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

func (r *Repository) indexOf(id string) int {
	for i := range r.notes {
		if r.notes[i].ID == id {
			return i
		}
	}
	return -1
}

// persist must be called with mu held.
func (r *Repository) persist(ctx context.Context, op string) error {
	if err := r.coll.Save(ctx, r.notes); err != nil {
		r.dirty = true
		r.failures++
		r.logger.Warn("notes not saved", "op", op, "error", err)
		return &core.PersistError{Op: op, Key: r.coll.Key(), Err: err}
	}
	r.dirty = false
	r.persists++
	r.logger.Debug("notes saved", "op", op, "count", len(r.notes))
	return nil
}
