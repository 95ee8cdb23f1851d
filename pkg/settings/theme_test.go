package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/adapters/memory"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/typed"
)

func TestThemeDefault(t *testing.T) {
	theme := NewTheme(memory.NewStore(), nil)
	name, err := theme.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultTheme, name)
}

func TestThemeSetAndGet(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	theme := NewTheme(store, nil)

	require.NoError(t, theme.Set(ctx, "violet"))
	name, err := theme.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "violet", name)

	text, _, _ := store.Load(ctx, core.KeyTheme)
	assert.Equal(t, `"violet"`, text)

	assert.ErrorIs(t, theme.Set(ctx, "neon"), ErrUnknownTheme)
}

func TestThemeYAML(t *testing.T) {
	ctx := context.Background()
	theme := NewTheme(memory.NewStore(), typed.YAML)
	require.NoError(t, theme.Set(ctx, "sky"))
	name, err := theme.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sky", name)
}

func TestThemeNextCycles(t *testing.T) {
	ctx := context.Background()
	theme := NewTheme(memory.NewStore(), nil)

	var seen []string
	for range Themes {
		name, err := theme.Next(ctx)
		require.NoError(t, err)
		seen = append(seen, name)
	}
	want := append([]string{}, Themes[1:]...)
	want = append(want, Themes[0])
	assert.Equal(t, want, seen)
}

func TestThemeUnknownStoredValue(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Save(ctx, core.KeyTheme, `"plaid"`))

	name, err := NewTheme(store, nil).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultTheme, name)
}

func TestThemePersistError(t *testing.T) {
	store := memory.NewStore()
	store.FailSave = errors.New("nope")
	err := NewTheme(store, nil).Set(context.Background(), "lime")
	assert.True(t, core.IsPersistError(err))
}
