package calendar_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/adapters/memory"
	"github.com/aretw0/quire/pkg/calendar"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/tasks"
	"github.com/aretw0/quire/pkg/typed"
)

// countingLinker wraps the task repository and counts link calls.
type countingLinker struct {
	repo  *tasks.Repository
	calls int
}

func (l *countingLinker) SetCalendarEventID(ctx context.Context, taskID, eventID string) (core.Task, error) {
	l.calls++
	return l.repo.SetCalendarEventID(ctx, taskID, eventID)
}

type fixture struct {
	provider *memory.Calendar
	linker   *countingLinker
	repo     *tasks.Repository
	task     core.Task
	wf       *calendar.Workflow
}

func setup(t *testing.T, granted bool) *fixture {
	t.Helper()
	ctx := context.Background()

	repo := tasks.New(typed.NewCollection[core.Task](memory.NewStore(), core.KeyTasks, nil))
	task, err := repo.Create(ctx, "Dentist appointment")
	require.NoError(t, err)

	provider := memory.NewCalendar(granted,
		calendar.Calendar{ID: "C1", Name: "Personal"},
		calendar.Calendar{ID: "C2", Name: "Work"},
	)
	linker := &countingLinker{repo: repo}
	wf := calendar.NewWorkflow(provider, linker)

	ok, err := wf.Authorize(ctx)
	require.NoError(t, err)
	require.Equal(t, granted, ok)

	return &fixture{provider: provider, linker: linker, repo: repo, task: task, wf: wf}
}

var (
	day   = time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)
	clock = time.Date(1, 1, 1, 14, 45, 30, 0, time.UTC)
)

func TestNextTransitions(t *testing.T) {
	path := []calendar.Step{calendar.StepSelectCalendar, calendar.StepPickDate, calendar.StepPickTime, calendar.StepCommit}
	want := []calendar.State{calendar.CalendarSelected, calendar.DatePicked, calendar.TimePicked, calendar.Committed}

	s := calendar.Idle
	for i, step := range path {
		next, err := calendar.Next(s, step)
		require.NoError(t, err)
		assert.Equal(t, want[i], next)
		s = next
	}

	for _, s := range []calendar.State{calendar.Idle, calendar.CalendarSelected, calendar.DatePicked, calendar.TimePicked} {
		next, err := calendar.Next(s, calendar.StepCancel)
		require.NoError(t, err)
		assert.Equal(t, calendar.Idle, next)
	}

	_, err := calendar.Next(calendar.Idle, calendar.StepCommit)
	assert.ErrorIs(t, err, calendar.ErrInvalidTransition)
	_, err = calendar.Next(calendar.Committed, calendar.StepCancel)
	assert.ErrorIs(t, err, calendar.ErrInvalidTransition)
	_, err = calendar.Next(calendar.CalendarSelected, calendar.StepPickTime)
	assert.ErrorIs(t, err, calendar.ErrInvalidTransition)
}

func TestCommitLinksTaskOnce(t *testing.T) {
	ctx := context.Background()
	f := setup(t, true)

	cals, err := f.wf.Begin(ctx, f.task)
	require.NoError(t, err)
	assert.Len(t, cals, 2)

	require.NoError(t, f.wf.SelectCalendar("C1"))
	require.NoError(t, f.wf.PickDate(day))
	require.NoError(t, f.wf.PickTime(clock))
	assert.Equal(t, calendar.TimePicked, f.wf.State())

	linked, err := f.wf.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, calendar.Committed, f.wf.State())
	assert.False(t, f.wf.Busy())
	assert.Equal(t, 1, f.linker.calls)

	require.NotNil(t, linked.CalendarEventID)
	assert.NotEmpty(t, *linked.CalendarEventID)

	// Other fields untouched.
	linked.CalendarEventID = nil
	assert.Equal(t, f.task, linked)

	events := f.provider.Events()
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, "C1", ev.CalendarID)
	assert.Equal(t, "Dentist appointment", ev.Title)
	assert.Equal(t, time.Date(2026, 7, 4, 14, 45, 0, 0, time.UTC), ev.Start)
	assert.Equal(t, ev.Start.Add(time.Hour), ev.End)
	assert.Equal(t, 30, ev.ReminderMinutesBefore)
	assert.Equal(t, calendar.EventNote, ev.Note)
}

func TestCancelLeavesTaskUntouched(t *testing.T) {
	ctx := context.Background()
	f := setup(t, true)

	_, err := f.wf.Begin(ctx, f.task)
	require.NoError(t, err)
	require.NoError(t, f.wf.SelectCalendar("C2"))
	assert.Equal(t, calendar.CalendarSelected, f.wf.State())

	f.wf.Cancel()
	assert.Equal(t, calendar.Idle, f.wf.State())
	assert.False(t, f.wf.Busy())

	got, ok := f.repo.Get(f.task.ID)
	require.True(t, ok)
	assert.Nil(t, got.CalendarEventID)
	assert.Zero(t, f.linker.calls)
	assert.Empty(t, f.provider.Events())

	// Selections were discarded.
	assert.ErrorIs(t, f.wf.PickDate(day), calendar.ErrNoTask)
}

func TestCancelFromEveryStep(t *testing.T) {
	ctx := context.Background()
	steps := []func(w *calendar.Workflow) error{
		func(w *calendar.Workflow) error { return w.SelectCalendar("C1") },
		func(w *calendar.Workflow) error { return w.PickDate(day) },
		func(w *calendar.Workflow) error { return w.PickTime(clock) },
	}
	for n := 0; n <= len(steps); n++ {
		f := setup(t, true)
		_, err := f.wf.Begin(ctx, f.task)
		require.NoError(t, err)
		for _, step := range steps[:n] {
			require.NoError(t, step(f.wf))
		}
		f.wf.Cancel()
		assert.Equal(t, calendar.Idle, f.wf.State())
		assert.Empty(t, f.provider.Events())
	}
}

func TestProviderFailureReturnsToIdle(t *testing.T) {
	ctx := context.Background()
	f := setup(t, true)
	boom := errors.New("calendar unavailable")
	f.provider.FailCreate = boom

	_, err := f.wf.Begin(ctx, f.task)
	require.NoError(t, err)
	require.NoError(t, f.wf.SelectCalendar("C1"))
	require.NoError(t, f.wf.PickDate(day))
	require.NoError(t, f.wf.PickTime(clock))

	_, err = f.wf.Commit(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, calendar.Idle, f.wf.State())
	assert.False(t, f.wf.Busy())
	assert.Zero(t, f.linker.calls)

	got, _ := f.repo.Get(f.task.ID)
	assert.Equal(t, f.task, got)
}

func TestPermissionDenied(t *testing.T) {
	ctx := context.Background()
	f := setup(t, false)

	_, err := f.wf.Begin(ctx, f.task)
	assert.ErrorIs(t, err, calendar.ErrPermissionDenied)
	assert.Equal(t, calendar.Idle, f.wf.State())

	// The answer is remembered.
	ok, err := f.wf.Authorize(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBusy(t *testing.T) {
	ctx := context.Background()
	f := setup(t, true)

	_, err := f.wf.Begin(ctx, f.task)
	require.NoError(t, err)
	_, err = f.wf.Begin(ctx, f.task)
	assert.ErrorIs(t, err, calendar.ErrBusy)
}

func TestUnknownCalendarAndOrder(t *testing.T) {
	ctx := context.Background()
	f := setup(t, true)

	assert.ErrorIs(t, f.wf.SelectCalendar("C1"), calendar.ErrNoTask)

	_, err := f.wf.Begin(ctx, f.task)
	require.NoError(t, err)
	assert.ErrorIs(t, f.wf.SelectCalendar("C9"), calendar.ErrUnknownCalendar)
	assert.Equal(t, calendar.Idle, f.wf.State())

	assert.ErrorIs(t, f.wf.PickTime(clock), calendar.ErrInvalidTransition)
	_, err = f.wf.Commit(ctx)
	assert.ErrorIs(t, err, calendar.ErrInvalidTransition)
}

func TestRelinkOverwrites(t *testing.T) {
	ctx := context.Background()
	f := setup(t, true)

	run := func() core.Task {
		_, err := f.wf.Begin(ctx, f.task)
		require.NoError(t, err)
		require.NoError(t, f.wf.SelectCalendar("C1"))
		require.NoError(t, f.wf.PickDate(day))
		require.NoError(t, f.wf.PickTime(clock))
		linked, err := f.wf.Commit(ctx)
		require.NoError(t, err)
		return linked
	}

	first := run()
	second := run()
	assert.NotEqual(t, *first.CalendarEventID, *second.CalendarEventID)
	assert.Len(t, f.provider.Events(), 2, "the first event is left in place")
}

func TestStartOfUsesDateLocation(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*3600)
	date := time.Date(2026, 12, 31, 23, 0, 0, 0, loc)
	start := calendar.StartOf(date, time.Date(2000, 1, 1, 9, 5, 59, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 12, 31, 9, 5, 0, 0, loc), start)
}
