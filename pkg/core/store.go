package core

import "context"

// Well-known store keys.
const (
	KeyNotes      = "notes"
	KeyTasks      = "tasks"
	KeyTheme      = "currentTheme"
	KeyCategories = "categories"
)

// Store is the Durable Store contract: text snapshots addressed by key.
//
// Load returns ok=false (and no error) when nothing was ever saved under key.
// A failed Save must leave the previously stored value intact.
type Store interface {
	Load(ctx context.Context, key string) (text string, ok bool, err error)
	Save(ctx context.Context, key, text string) error
}

// Watchable is implemented by stores that can report external changes.
type Watchable interface {
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
