// Package typed binds a Durable Store key to a typed slice.
// The store only ever sees text; this package owns the encoding.
package typed

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/quire/pkg/core"
)

// Collection reads and writes a whole []T snapshot under a single key.
type Collection[T any] struct {
	store core.Store
	key   string
	codec Codec
}

// NewCollection creates a collection for key. A nil codec means JSON.
func NewCollection[T any](store core.Store, key string, codec Codec) *Collection[T] {
	if codec == nil {
		codec = JSON
	}
	return &Collection[T]{store: store, key: key, codec: codec}
}

// Key returns the store key of the collection.
func (c *Collection[T]) Key() string {
	return c.key
}

// Load decodes the stored snapshot. An absent or blank key yields a nil slice.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	text, ok, err := c.store.Load(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.key, err)
	}
	if !ok || strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var items []T
	if err := c.codec.Decode(text, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.key, err)
	}
	return items, nil
}

// Save encodes items and writes the full snapshot.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	text, err := c.codec.Encode(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	return c.store.Save(ctx, c.key, text)
}
