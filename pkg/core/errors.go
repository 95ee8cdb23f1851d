package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrNotFound marks an operation on an unknown ID. Nothing was changed.
	ErrNotFound = errors.New("not found")
	// ErrReadOnly is returned by stores opened in read-only mode.
	ErrReadOnly = errors.New("store is in read-only mode")
	// ErrInvalidKey is returned for store keys that cannot be mapped to storage.
	ErrInvalidKey = errors.New("invalid store key")
	// ErrEmptyTitle is the validation error for blank titles.
	ErrEmptyTitle = errors.New("title cannot be empty")
	// ErrInvalidText is returned for text that is not valid UTF-8. Stored
	// snapshots are UTF-8, so such text would not survive a reload.
	ErrInvalidText = errors.New("text is not valid UTF-8")
	// ErrInvalidPriority is returned for priorities outside low/medium/high.
	ErrInvalidPriority = errors.New("invalid priority")
	// ErrUnknownCategory is matched by every *CategoryError.
	ErrUnknownCategory = errors.New("unknown category")
)

// CategoryError reports a category name that is not registered.
type CategoryError struct {
	Name string
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("unknown category %q", e.Name)
}

// Is lets errors.Is(err, ErrUnknownCategory) match.
func (e *CategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}

// PersistError reports that an in-memory mutation succeeded but writing the
// snapshot to the Durable Store failed. In-memory state stays authoritative.
type PersistError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s: persist %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// IsPersistError reports whether err carries a *PersistError.
func IsPersistError(err error) bool {
	var pe *PersistError
	return errors.As(err, &pe)
}
