// Package calendar links tasks to events in an external calendar through an
// explicit state machine: pick a calendar, a date and a time, then commit.
package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/quire/pkg/core"
)

// Fixed event parameters.
const (
	EventDuration         = time.Hour
	ReminderMinutesBefore = 30
	EventNote             = "Task from quire"
)

// Errors returned by the workflow and its collaborators.
var (
	ErrPermissionDenied  = errors.New("calendar permission not granted")
	ErrBusy              = errors.New("a calendar link is already in progress")
	ErrInvalidTransition = errors.New("invalid calendar workflow transition")
	ErrUnknownCalendar   = errors.New("unknown calendar")
	ErrNoTask            = errors.New("no task selected")
)

// Calendar is an external calendar the user may pick.
type Calendar struct {
	ID   string `mapstructure:"id" yaml:"id" json:"id"`
	Name string `mapstructure:"name" yaml:"name" json:"name"`
}

// EventRequest describes the event created on commit.
type EventRequest struct {
	CalendarID            string
	Title                 string
	Start                 time.Time
	End                   time.Time
	ReminderMinutesBefore int
	Note                  string
}

// Provider is the external calendar collaborator.
type Provider interface {
	// RequestPermission asks for calendar access and reports whether it was granted.
	RequestPermission(ctx context.Context) (bool, error)
	// Calendars lists the calendars reachable with the granted permission.
	Calendars(ctx context.Context) ([]Calendar, error)
	// CreateEvent creates the event and returns its external identifier.
	CreateEvent(ctx context.Context, req EventRequest) (string, error)
}

// Linker stores the external event identifier on a task.
// It is the only task mutation the workflow performs.
type Linker interface {
	SetCalendarEventID(ctx context.Context, taskID, eventID string) (core.Task, error)
}
