// Package categories persists the user's category set under
// core.KeyCategories. The set starts with core.DefaultCategories and only grows.
package categories

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/typed"
)

// Registry is the owned category set.
type Registry struct {
	coll   *typed.Collection[string]
	logger *slog.Logger

	mu    sync.RWMutex
	set   *core.CategorySet
	dirty bool
}

// New creates a registry seeded with the default categories.
func New(coll *typed.Collection[string], logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		coll:   coll,
		logger: logger,
		set:    core.NewCategorySet(),
	}
}

// Load merges the stored names into the set. Stored names never remove
// defaults, and a missing key leaves the defaults alone.
func (r *Registry) Load(ctx context.Context) error {
	names, err := r.coll.Load(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		r.set.Add(name)
	}
	return nil
}

// Add registers name. added is false for blank names and exact duplicates,
// in which case nothing is saved.
func (r *Registry) Add(ctx context.Context, name string) (added bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.set.Add(name) {
		return false, nil
	}
	if err := r.coll.Save(ctx, r.set.Names()); err != nil {
		r.dirty = true
		r.logger.Warn("categories not saved", "error", err)
		return true, &core.PersistError{Op: "add category", Key: r.coll.Key(), Err: err}
	}
	r.dirty = false
	r.logger.Debug("category added", "name", name)
	return true, nil
}

// Flush saves the set again if the last save failed.
func (r *Registry) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.dirty {
		return nil
	}
	if err := r.coll.Save(ctx, r.set.Names()); err != nil {
		return &core.PersistError{Op: "flush", Key: r.coll.Key(), Err: err}
	}
	r.dirty = false
	return nil
}

// List returns the names in insertion order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set.Names()
}

// Contains reports whether name is registered. It matches the signature
// expected by core.NoteFields.Validate.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set.Contains(name)
}
