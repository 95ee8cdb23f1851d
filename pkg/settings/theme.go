// Package settings holds user preferences that live next to the collections.
package settings

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/typed"
)

// DefaultTheme is used when nothing valid is stored.
const DefaultTheme = "default"

// Themes lists the selectable themes in cycle order.
var Themes = []string{"default", "rose", "emerald", "amber", "sky", "violet", "fuchsia", "lime"}

// ErrUnknownTheme is returned by Set for names outside Themes.
var ErrUnknownTheme = errors.New("unknown theme")

// Theme reads and writes the selected theme under core.KeyTheme.
type Theme struct {
	store core.Store
	codec typed.Codec
}

// NewTheme creates a theme setting. A nil codec means JSON.
func NewTheme(store core.Store, codec typed.Codec) *Theme {
	if codec == nil {
		codec = typed.JSON
	}
	return &Theme{store: store, codec: codec}
}

// Get returns the stored theme, or DefaultTheme when it is absent or unknown.
func (t *Theme) Get(ctx context.Context) (string, error) {
	text, ok, err := t.store.Load(ctx, core.KeyTheme)
	if err != nil {
		return "", fmt.Errorf("load theme: %w", err)
	}
	if !ok || strings.TrimSpace(text) == "" {
		return DefaultTheme, nil
	}
	var name string
	if err := t.codec.Decode(text, &name); err != nil {
		return DefaultTheme, nil
	}
	if !slices.Contains(Themes, name) {
		return DefaultTheme, nil
	}
	return name, nil
}

// Set stores name.
func (t *Theme) Set(ctx context.Context, name string) error {
	if !slices.Contains(Themes, name) {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	text, err := t.codec.Encode(name)
	if err != nil {
		return err
	}
	if err := t.store.Save(ctx, core.KeyTheme, text); err != nil {
		return &core.PersistError{Op: "set theme", Key: core.KeyTheme, Err: err}
	}
	return nil
}

// Next advances to the following theme, wrapping around, and returns it.
func (t *Theme) Next(ctx context.Context) (string, error) {
	current, err := t.Get(ctx)
	if err != nil {
		return "", err
	}
	next := Themes[(slices.Index(Themes, current)+1)%len(Themes)]
	return next, t.Set(ctx, next)
}
