package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/calendar"
	"github.com/aretw0/quire/pkg/core"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, ok, err := s.Load(ctx, core.KeyNotes)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, core.KeyNotes, "[]"))
	text, ok, err := s.Load(ctx, core.KeyNotes)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", text)
	assert.Equal(t, 1, s.Saves(core.KeyNotes))
	assert.Equal(t, []string{core.KeyNotes}, s.Keys())
}

func TestStoreFailures(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Save(ctx, core.KeyTasks, "old"))

	boom := errors.New("disk full")
	s.FailSave = boom
	assert.ErrorIs(t, s.Save(ctx, core.KeyTasks, "new"), boom)

	s.FailSave = nil
	text, _, _ := s.Load(ctx, core.KeyTasks)
	assert.Equal(t, "old", text)

	s.FailLoad = boom
	_, _, err := s.Load(ctx, core.KeyTasks)
	assert.ErrorIs(t, err, boom)

	assert.ErrorIs(t, s.Save(ctx, "a/b", "x"), core.ErrInvalidKey)
}

func TestCalendarRecordsEvents(t *testing.T) {
	ctx := context.Background()
	cal := NewCalendar(true, calendar.Calendar{ID: "c1", Name: "Home"})

	id, err := cal.CreateEvent(ctx, calendar.EventRequest{CalendarID: "c1", Title: "Pay rent"})
	require.NoError(t, err)

	req, ok := cal.Event(id)
	require.True(t, ok)
	assert.Equal(t, "Pay rent", req.Title)
	assert.Len(t, cal.Events(), 1)

	_, err = cal.CreateEvent(ctx, calendar.EventRequest{CalendarID: "c2"})
	assert.ErrorIs(t, err, calendar.ErrUnknownCalendar)

	denied := NewCalendar(false)
	granted, err := denied.RequestPermission(ctx)
	require.NoError(t, err)
	assert.False(t, granted)
	_, err = denied.Calendars(ctx)
	assert.ErrorIs(t, err, calendar.ErrPermissionDenied)
}
