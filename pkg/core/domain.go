// Package core holds the domain model shared by every quire component:
// notes, tasks, categories, the Durable Store contract and the error taxonomy.
package core

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Note is a user-authored text record.
// ID and CreatedAt never change after creation.
type Note struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Content     string    `json:"content" yaml:"content"`
	Image       *string   `json:"image,omitempty" yaml:"image,omitempty"`
	Category    string    `json:"category,omitempty" yaml:"category,omitempty"`
	Color       *string   `json:"color,omitempty" yaml:"color,omitempty"`
	IsFavorite  bool      `json:"isFavorite" yaml:"isFavorite"`
	IsBold      bool      `json:"isBold" yaml:"isBold"`
	IsItalic    bool      `json:"isItalic" yaml:"isItalic"`
	IsUnderline bool      `json:"isUnderline" yaml:"isUnderline"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// NoteFields is the editable part of a Note.
type NoteFields struct {
	Title       string
	Content     string
	Image       *string
	Category    string
	Color       *string
	IsBold      bool
	IsItalic    bool
	IsUnderline bool
}

// FieldsOf extracts the editable fields of n.
func FieldsOf(n Note) NoteFields {
	return NoteFields{
		Title:       n.Title,
		Content:     n.Content,
		Image:       cloneString(n.Image),
		Category:    n.Category,
		Color:       cloneString(n.Color),
		IsBold:      n.IsBold,
		IsItalic:    n.IsItalic,
		IsUnderline: n.IsUnderline,
	}
}

// Apply overwrites the editable fields of n with f.
func (f NoteFields) Apply(n *Note) {
	n.Title = f.Title
	n.Content = f.Content
	n.Image = cloneString(f.Image)
	n.Category = f.Category
	n.Color = cloneString(f.Color)
	n.IsBold = f.IsBold
	n.IsItalic = f.IsItalic
	n.IsUnderline = f.IsUnderline
}

// Validate checks the caller-facing contract before the fields reach a repository.
// known reports whether a category name is currently registered; a nil known
// skips the category check. An empty category is always accepted.
func (f NoteFields) Validate(known func(string) bool) error {
	if strings.TrimSpace(f.Title) == "" {
		return ErrEmptyTitle
	}
	if err := f.CheckText(); err != nil {
		return err
	}
	if f.Category != "" && known != nil && !known(f.Category) {
		return &CategoryError{Name: f.Category}
	}
	return nil
}

// CheckText reports ErrInvalidText when any text field is not valid UTF-8.
func (f NoteFields) CheckText() error {
	for _, s := range []string{f.Title, f.Content, f.Category} {
		if !utf8.ValidString(s) {
			return ErrInvalidText
		}
	}
	for _, p := range []*string{f.Image, f.Color} {
		if p != nil && !utf8.ValidString(*p) {
			return ErrInvalidText
		}
	}
	return nil
}

// Clone returns a deep copy of n.
func (n Note) Clone() Note {
	n.Image = cloneString(n.Image)
	n.Color = cloneString(n.Color)
	return n
}

// Priority is the stored importance of a task. It does not affect ordering.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a checklist item, optionally linked to one external calendar event.
type Task struct {
	ID              string     `json:"id" yaml:"id"`
	Title           string     `json:"title" yaml:"title"`
	Completed       bool       `json:"completed" yaml:"completed"`
	Priority        Priority   `json:"priority" yaml:"priority"`
	DueDate         *time.Time `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	CalendarEventID *string    `json:"calendarEventId,omitempty" yaml:"calendarEventId,omitempty"`
}

// Linked reports whether the task carries an external event identifier.
func (t Task) Linked() bool {
	return t.CalendarEventID != nil && *t.CalendarEventID != ""
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	t.CalendarEventID = cloneString(t.CalendarEventID)
	return t
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
