package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/quire/pkg/calendar"
)

var _ calendar.Provider = (*Calendar)(nil)

// CalendarConfig configures the file-backed calendar provider.
type CalendarConfig struct {
	Dir       string
	Enabled   bool // answer to RequestPermission
	Calendars []calendar.Calendar
	Logger    *slog.Logger
}

// Calendar is a calendar.Provider that keeps each event as a Markdown file
// with YAML frontmatter under Dir/<calendarID>/<eventID>.md.
type Calendar struct {
	config CalendarConfig
	newID  func() string
}

// EventRecord is the frontmatter of a stored event.
type EventRecord struct {
	ID                    string    `yaml:"id"`
	Calendar              string    `yaml:"calendar"`
	Title                 string    `yaml:"title"`
	Start                 time.Time `yaml:"start"`
	End                   time.Time `yaml:"end"`
	ReminderMinutesBefore int       `yaml:"reminder_minutes_before"`
	Status                string    `yaml:"status"`
}

// NewCalendar creates a file-backed calendar provider.
func NewCalendar(config CalendarConfig) *Calendar {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Calendar{
		config: config,
		newID:  func() string { return uuid.NewString() },
	}
}

// RequestPermission reports the configured consent.
func (c *Calendar) RequestPermission(ctx context.Context) (bool, error) {
	c.config.Logger.Debug("calendar permission requested", "granted", c.config.Enabled)
	return c.config.Enabled, nil
}

// Calendars returns the configured calendars.
func (c *Calendar) Calendars(ctx context.Context) ([]calendar.Calendar, error) {
	if !c.config.Enabled {
		return nil, calendar.ErrPermissionDenied
	}
	out := make([]calendar.Calendar, len(c.config.Calendars))
	copy(out, c.config.Calendars)
	return out, nil
}

// CreateEvent writes a new event file and returns its ID.
func (c *Calendar) CreateEvent(ctx context.Context, req calendar.EventRequest) (string, error) {
	if !c.config.Enabled {
		return "", calendar.ErrPermissionDenied
	}
	if !c.known(req.CalendarID) {
		return "", fmt.Errorf("%w: %s", calendar.ErrUnknownCalendar, req.CalendarID)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(c.config.Dir, req.CalendarID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create calendar directory: %w", err)
	}

	record := EventRecord{
		ID:                    c.newID(),
		Calendar:              req.CalendarID,
		Title:                 req.Title,
		Start:                 req.Start,
		End:                   req.End,
		ReminderMinutesBefore: req.ReminderMinutesBefore,
		Status:                "confirmed",
	}
	data, err := encodeFrontmatter(record, req.Note+"\n")
	if err != nil {
		return "", fmt.Errorf("failed to encode event: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, record.ID+".md"), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write event: %w", err)
	}

	c.config.Logger.Info("calendar event created",
		"calendar", req.CalendarID,
		"event", record.ID,
		"start", req.Start.Format(time.RFC3339),
	)
	return record.ID, nil
}

// Events lists the stored events of a calendar ordered by start time.
func (c *Calendar) Events(ctx context.Context, calendarID string) ([]EventRecord, error) {
	if !c.known(calendarID) {
		return nil, fmt.Errorf("%w: %s", calendar.ErrUnknownCalendar, calendarID)
	}
	matches, err := filepath.Glob(filepath.Join(c.config.Dir, calendarID, "*.md"))
	if err != nil {
		return nil, err
	}

	events := make([]EventRecord, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read event %s: %w", filepath.Base(path), err)
		}
		var rec EventRecord
		if _, err := decodeFrontmatter(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse event %s: %w", filepath.Base(path), err)
		}
		events = append(events, rec)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

func (c *Calendar) known(id string) bool {
	for _, cal := range c.config.Calendars {
		if cal.ID == id {
			return true
		}
	}
	return false
}
