package core_test

import (
	"errors"
	"testing"

	"github.com/aretw0/quire/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestNoteFields_Validate(t *testing.T) {
	known := func(name string) bool { return name == "Work" }

	assert.ErrorIs(t, core.NoteFields{Title: "   "}.Validate(known), core.ErrEmptyTitle)
	assert.NoError(t, core.NoteFields{Title: "ok"}.Validate(known))
	assert.NoError(t, core.NoteFields{Title: "ok", Category: "Work"}.Validate(known))

	err := core.NoteFields{Title: "ok", Category: "work"}.Validate(known)
	assert.True(t, errors.Is(err, core.ErrUnknownCategory))

	var ce *core.CategoryError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, "work", ce.Name)

	assert.NoError(t, core.NoteFields{Title: "ok", Category: "anything"}.Validate(nil))
}

func TestNote_CloneIsDeep(t *testing.T) {
	n := core.Note{ID: "1", Image: core.StringPtr("a.png")}
	c := n.Clone()
	*c.Image = "b.png"
	assert.Equal(t, "a.png", *n.Image)
}

func TestFieldsRoundTrip(t *testing.T) {
	n := core.Note{ID: "1", Title: "t", Content: "c", Category: "Work", IsBold: true, Color: core.StringPtr("#FF6B6B")}
	var m core.Note
	core.FieldsOf(n).Apply(&m)
	assert.Equal(t, n.Title, m.Title)
	assert.Equal(t, n.Category, m.Category)
	assert.Equal(t, *n.Color, *m.Color)
	assert.True(t, m.IsBold)
	assert.Empty(t, m.ID)
}

func TestPriority_IsValid(t *testing.T) {
	assert.True(t, core.PriorityHigh.IsValid())
	assert.False(t, core.Priority("urgent").IsValid())
}

func TestPersistError_Unwrap(t *testing.T) {
	base := errors.New("disk full")
	err := error(&core.PersistError{Op: "create", Key: core.KeyNotes, Err: base})
	assert.ErrorIs(t, err, base)
	assert.True(t, core.IsPersistError(err))
	assert.False(t, core.IsPersistError(base))
}

func TestNoteFields_RejectsInvalidUTF8(t *testing.T) {
	assert.ErrorIs(t, core.NoteFields{Title: "caf\xe9"}.Validate(nil), core.ErrInvalidText)
	assert.ErrorIs(t, core.NoteFields{Title: "ok", Content: "\xff"}.Validate(nil), core.ErrInvalidText)
	assert.ErrorIs(t, core.NoteFields{Title: "ok", Color: core.StringPtr("\xc3")}.CheckText(), core.ErrInvalidText)
	assert.NoError(t, core.NoteFields{Title: "café", Content: "naïve ✓"}.Validate(nil))
}
