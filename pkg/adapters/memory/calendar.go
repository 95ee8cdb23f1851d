package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/aretw0/quire/pkg/calendar"
)

var _ calendar.Provider = (*Calendar)(nil)

// Calendar is an in-memory calendar.Provider that records created events.
type Calendar struct {
	mu        sync.Mutex
	granted   bool
	calendars []calendar.Calendar
	events    map[string]calendar.EventRequest
	order     []string

	// FailCreate, when set, is returned by CreateEvent.
	FailCreate error
	// FailList, when set, is returned by Calendars.
	FailList error
}

// NewCalendar creates a provider that answers RequestPermission with granted
// and offers the given calendars.
func NewCalendar(granted bool, calendars ...calendar.Calendar) *Calendar {
	return &Calendar{
		granted:   granted,
		calendars: calendars,
		events:    make(map[string]calendar.EventRequest),
	}
}

func (c *Calendar) RequestPermission(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.granted, nil
}

func (c *Calendar) Calendars(ctx context.Context) ([]calendar.Calendar, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.granted {
		return nil, calendar.ErrPermissionDenied
	}
	if c.FailList != nil {
		return nil, c.FailList
	}
	out := make([]calendar.Calendar, len(c.calendars))
	copy(out, c.calendars)
	return out, nil
}

func (c *Calendar) CreateEvent(ctx context.Context, req calendar.EventRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.granted {
		return "", calendar.ErrPermissionDenied
	}
	if c.FailCreate != nil {
		return "", c.FailCreate
	}
	known := false
	for _, cal := range c.calendars {
		known = known || cal.ID == req.CalendarID
	}
	if !known {
		return "", fmt.Errorf("%w: %s", calendar.ErrUnknownCalendar, req.CalendarID)
	}

	id := uuid.NewString()
	c.events[id] = req
	c.order = append(c.order, id)
	return id, nil
}

// Events returns created events in creation order.
func (c *Calendar) Events() []calendar.EventRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]calendar.EventRequest, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.events[id])
	}
	return out
}

// Event returns the request behind an event ID.
func (c *Calendar) Event(id string) (calendar.EventRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	req, ok := c.events[id]
	return req, ok
}
