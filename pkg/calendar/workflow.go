package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/quire/pkg/core"
)

// State is a step of the link workflow.
type State int

const (
	Idle State = iota
	CalendarSelected
	DatePicked
	TimePicked
	Committed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CalendarSelected:
		return "calendar_selected"
	case DatePicked:
		return "date_picked"
	case TimePicked:
		return "time_picked"
	case Committed:
		return "committed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Step is an input to the state machine.
type Step int

const (
	StepSelectCalendar Step = iota
	StepPickDate
	StepPickTime
	StepCommit
	StepFail
	StepCancel
)

func (s Step) String() string {
	switch s {
	case StepSelectCalendar:
		return "select_calendar"
	case StepPickDate:
		return "pick_date"
	case StepPickTime:
		return "pick_time"
	case StepCommit:
		return "commit"
	case StepFail:
		return "fail"
	case StepCancel:
		return "cancel"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Next is the transition function. It has no side effects.
//
//	Idle -select-> CalendarSelected -date-> DatePicked -time-> TimePicked -commit-> Committed
//
// cancel returns to Idle from every state but Committed; fail returns to Idle
// from TimePicked.
func Next(s State, step Step) (State, error) {
	switch {
	case step == StepCancel && s != Committed:
		return Idle, nil
	case s == Idle && step == StepSelectCalendar:
		return CalendarSelected, nil
	case s == CalendarSelected && step == StepPickDate:
		return DatePicked, nil
	case s == DatePicked && step == StepPickTime:
		return TimePicked, nil
	case s == TimePicked && step == StepCommit:
		return Committed, nil
	case s == TimePicked && step == StepFail:
		return Idle, nil
	}
	return s, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, step, s)
}

// Workflow drives one task at a time through the link steps.
type Workflow struct {
	provider Provider
	linker   Linker
	logger   *slog.Logger

	mu         sync.Mutex
	authorized bool
	asked      bool
	state      State
	task       *core.Task
	calendars  []Calendar
	calendarID string
	date       time.Time
	clock      time.Time
}

// WorkflowOption configures a Workflow.
type WorkflowOption func(*Workflow)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) WorkflowOption {
	return func(w *Workflow) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorkflow creates an idle workflow. Authorize must succeed before Begin.
func NewWorkflow(provider Provider, linker Linker, opts ...WorkflowOption) *Workflow {
	w := &Workflow{
		provider: provider,
		linker:   linker,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Authorize asks the provider for permission. Only the first call reaches
// the provider; later calls return the recorded answer. A denial leaves the
// workflow disabled.
func (w *Workflow) Authorize(ctx context.Context) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.asked {
		return w.authorized, nil
	}
	granted, err := w.provider.RequestPermission(ctx)
	w.asked = true
	if err != nil {
		w.logger.Warn("calendar permission request failed", "error", err)
		return false, fmt.Errorf("request calendar permission: %w", err)
	}
	w.authorized = granted
	w.logger.Info("calendar permission", "granted", granted)
	return granted, nil
}

// Begin starts a run for task and returns the calendars to choose from.
func (w *Workflow) Begin(ctx context.Context, task core.Task) ([]Calendar, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.authorized {
		return nil, ErrPermissionDenied
	}
	if w.task != nil {
		return nil, ErrBusy
	}

	calendars, err := w.provider.Calendars(ctx)
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}

	t := task.Clone()
	w.reset()
	w.task = &t
	w.calendars = calendars
	w.logger.Debug("calendar link started", "task", task.ID, "calendars", len(calendars))

	out := make([]Calendar, len(calendars))
	copy(out, calendars)
	return out, nil
}

// SelectCalendar picks one of the calendars offered by Begin.
func (w *Workflow) SelectCalendar(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.active(); err != nil {
		return err
	}
	next, err := Next(w.state, StepSelectCalendar)
	if err != nil {
		return err
	}
	found := false
	for _, c := range w.calendars {
		found = found || c.ID == id
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownCalendar, id)
	}
	w.calendarID = id
	w.state = next
	return nil
}

// PickDate records the event day. Only the year, month and day of date in
// its own location are used.
func (w *Workflow) PickDate(date time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.active(); err != nil {
		return err
	}
	next, err := Next(w.state, StepPickDate)
	if err != nil {
		return err
	}
	w.date = date
	w.state = next
	return nil
}

// PickTime records the event time of day. Only hour and minute are used.
func (w *Workflow) PickTime(clock time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.active(); err != nil {
		return err
	}
	next, err := Next(w.state, StepPickTime)
	if err != nil {
		return err
	}
	w.clock = clock
	w.state = next
	return nil
}

// Commit creates the event and stores its ID on the task.
//
// If the provider fails, the task is left untouched and the workflow returns
// to Idle. If the event was created, the ID is handed to the Linker exactly
// once; a *core.PersistError from the Linker still counts as linked.
func (w *Workflow) Commit(ctx context.Context) (core.Task, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.active(); err != nil {
		return core.Task{}, err
	}
	if _, err := Next(w.state, StepCommit); err != nil {
		return core.Task{}, err
	}

	req := w.request()
	eventID, err := w.provider.CreateEvent(ctx, req)
	if err == nil && eventID == "" {
		err = errors.New("provider returned an empty event id")
	}
	if err != nil {
		w.state, _ = Next(w.state, StepFail)
		w.release()
		w.logger.Warn("calendar event not created", "error", err)
		return core.Task{}, fmt.Errorf("create calendar event: %w", err)
	}

	taskID := w.task.ID
	linked, err := w.linker.SetCalendarEventID(ctx, taskID, eventID)
	if err != nil && !core.IsPersistError(err) {
		// The event exists but no task carries its ID.
		w.state = Idle
		w.release()
		w.logger.Warn("calendar event orphaned", "task", taskID, "event", eventID, "error", err)
		return core.Task{}, fmt.Errorf("link event %s: %w", eventID, err)
	}

	w.state, _ = Next(w.state, StepCommit)
	w.release()
	w.logger.Info("task linked to calendar", "task", taskID, "event", eventID, "start", req.Start)
	return linked, err
}

// Cancel abandons the current run. It never reaches a collaborator.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.task == nil {
		return
	}
	w.state, _ = Next(w.state, StepCancel)
	w.release()
	w.logger.Debug("calendar link cancelled")
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Busy reports whether a run is in progress.
func (w *Workflow) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.task != nil
}

// StartOf combines the day of date with the hour and minute of clock, in
// date's location.
func StartOf(date, clock time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, date.Location())
}

func (w *Workflow) request() EventRequest {
	start := StartOf(w.date, w.clock)
	return EventRequest{
		CalendarID:            w.calendarID,
		Title:                 w.task.Title,
		Start:                 start,
		End:                   start.Add(EventDuration),
		ReminderMinutesBefore: ReminderMinutesBefore,
		Note:                  EventNote,
	}
}

func (w *Workflow) active() error {
	if w.task == nil {
		return ErrNoTask
	}
	return nil
}

// release drops the task and selections but keeps the state.
func (w *Workflow) release() {
	w.task = nil
	w.calendars = nil
	w.calendarID = ""
	w.date = time.Time{}
	w.clock = time.Time{}
}

func (w *Workflow) reset() {
	w.release()
	w.state = Idle
}
