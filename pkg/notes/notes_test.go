package notes_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/adapters/memory"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/notes"
	"github.com/aretw0/quire/pkg/typed"
)

// clock advances one minute per call.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func setup(t *testing.T) (*notes.Repository, *memory.Store, *clock) {
	t.Helper()
	store := memory.NewStore()
	clk := &clock{t: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}
	n := 0
	repo := notes.New(
		typed.NewCollection[core.Note](store, core.KeyNotes, nil),
		notes.WithClock(clk.Now),
		notes.WithIDs(func() string { n++; return fmt.Sprintf("n%d", n) }),
	)
	require.NoError(t, repo.Load(context.Background()))
	return repo, store, clk
}

func TestCreatePrependsAndPersists(t *testing.T) {
	ctx := context.Background()
	repo, store, _ := setup(t)

	first, err := repo.Create(ctx, core.NoteFields{Title: "First", Category: "Work"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, core.NoteFields{Title: "Second"})
	require.NoError(t, err)

	assert.Equal(t, first.CreatedAt, first.UpdatedAt)
	assert.False(t, first.IsFavorite)
	assert.NotEqual(t, first.ID, second.ID)

	list := repo.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Second", list[0].Title)
	assert.Equal(t, "First", list[1].Title)
	assert.Equal(t, 2, store.Saves(core.KeyNotes))

	// A fresh repository over the same store sees the same collection.
	reloaded := notes.New(typed.NewCollection[core.Note](store, core.KeyNotes, nil))
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, list, reloaded.List())
}

func TestCreateRejectsBlankTitle(t *testing.T) {
	repo, store, _ := setup(t)

	_, err := repo.Create(context.Background(), core.NoteFields{Title: "   "})
	assert.ErrorIs(t, err, core.ErrEmptyTitle)
	assert.Empty(t, repo.List())
	assert.Zero(t, store.Saves(core.KeyNotes))
}

func TestUpdateKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := setup(t)

	created, err := repo.Create(ctx, core.NoteFields{Title: "Draft", Image: core.StringPtr("file:///a.png")})
	require.NoError(t, err)
	_, err = repo.ToggleFavorite(ctx, created.ID)
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, core.NoteFields{Title: "Final", Content: "body", IsBold: true})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, updated.IsFavorite, "favorite flag is not an editable field")
	assert.Nil(t, updated.Image, "all editable fields are replaced")
	assert.True(t, updated.IsBold)
}

func TestUpdateNeverGoesBeforeCreation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	times := []time.Time{
		time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), // clock stepped back
	}
	i := 0
	repo := notes.New(typed.NewCollection[core.Note](store, core.KeyNotes, nil),
		notes.WithClock(func() time.Time { t := times[i]; i++; return t }))

	n, err := repo.Create(ctx, core.NoteFields{Title: "x"})
	require.NoError(t, err)
	u, err := repo.Update(ctx, n.ID, core.NoteFields{Title: "y"})
	require.NoError(t, err)
	assert.False(t, u.UpdatedAt.Before(u.CreatedAt))
}

func TestNotFoundIsNoOp(t *testing.T) {
	ctx := context.Background()
	repo, store, _ := setup(t)
	_, err := repo.Create(ctx, core.NoteFields{Title: "Keep"})
	require.NoError(t, err)
	saves := store.Saves(core.KeyNotes)

	_, err = repo.Update(ctx, "missing", core.NoteFields{Title: "x"})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), core.ErrNotFound)
	_, err = repo.ToggleFavorite(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.Len(t, repo.List(), 1)
	assert.Equal(t, saves, store.Saves(core.KeyNotes))
}

func TestToggleFavoriteTwiceRestores(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := setup(t)
	created, err := repo.Create(ctx, core.NoteFields{Title: "Fav"})
	require.NoError(t, err)

	once, err := repo.ToggleFavorite(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, once.IsFavorite)
	assert.Equal(t, created.UpdatedAt, once.UpdatedAt)

	twice, err := repo.ToggleFavorite(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, twice.IsFavorite)
	assert.Equal(t, created.UpdatedAt, twice.UpdatedAt)
}

func TestSurvivorsAfterMixedSequence(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := setup(t)

	var ids []string
	for i := 0; i < 5; i++ {
		n, err := repo.Create(ctx, core.NoteFields{Title: fmt.Sprintf("note %d", i)})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	require.NoError(t, repo.Delete(ctx, ids[1]))
	require.NoError(t, repo.Delete(ctx, ids[3]))
	last, err := repo.Update(ctx, ids[0], core.NoteFields{Title: "edited"})
	require.NoError(t, err)

	list := repo.List()
	require.Len(t, list, 3)
	seen := map[string]bool{}
	for _, n := range list {
		assert.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
	assert.True(t, seen[ids[0]] && seen[ids[2]] && seen[ids[4]])

	got, ok := repo.Get(ids[0])
	require.True(t, ok)
	assert.Equal(t, last.UpdatedAt, got.UpdatedAt)
}

func TestPersistFailureKeepsMemoryAndFlushes(t *testing.T) {
	ctx := context.Background()
	repo, store, _ := setup(t)

	boom := errors.New("disk full")
	store.FailSave = boom

	created, err := repo.Create(ctx, core.NoteFields{Title: "Unsaved"})
	var pe *core.PersistError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, core.KeyNotes, pe.Key)

	// In-memory state is authoritative.
	assert.Equal(t, []core.Note{created}, repo.List())
	assert.True(t, repo.Dirty())
	assert.True(t, repo.State().(notes.State).Dirty)

	store.FailSave = nil
	require.NoError(t, repo.Flush(ctx))
	assert.False(t, repo.Dirty())

	text, ok, err := store.Load(ctx, core.KeyNotes)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, text, "Unsaved")

	// Nothing to flush now.
	saves := store.Saves(core.KeyNotes)
	require.NoError(t, repo.Flush(ctx))
	assert.Equal(t, saves, store.Saves(core.KeyNotes))
}

func TestLoadFailureKeepsCollection(t *testing.T) {
	ctx := context.Background()
	repo, store, _ := setup(t)
	_, err := repo.Create(ctx, core.NoteFields{Title: "Here"})
	require.NoError(t, err)

	store.FailLoad = errors.New("unreadable")
	assert.Error(t, repo.Load(ctx))
	assert.Len(t, repo.List(), 1)
}

func TestListIsACopy(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := setup(t)
	created, err := repo.Create(ctx, core.NoteFields{Title: "Original", Color: core.StringPtr("rose")})
	require.NoError(t, err)

	list := repo.List()
	list[0].Title = "Mutated"
	*list[0].Color = "sky"

	got, _ := repo.Get(created.ID)
	assert.Equal(t, "Original", got.Title)
	assert.Equal(t, "rose", *got.Color)
}

func TestInvalidUTF8IsRefused(t *testing.T) {
	ctx := context.Background()
	repo, store, _ := setup(t)

	_, err := repo.Create(ctx, core.NoteFields{Title: "caf\xe9"})
	assert.ErrorIs(t, err, core.ErrInvalidText)
	assert.Empty(t, repo.List())

	note, err := repo.Create(ctx, core.NoteFields{Title: "café"})
	require.NoError(t, err)
	saves := store.Saves(core.KeyNotes)

	_, err = repo.Update(ctx, note.ID, core.NoteFields{Title: "café", Content: "\xff"})
	assert.ErrorIs(t, err, core.ErrInvalidText)
	got, _ := repo.Get(note.ID)
	assert.Empty(t, got.Content)
	assert.Equal(t, saves, store.Saves(core.KeyNotes))
}
