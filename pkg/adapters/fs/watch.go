package fs

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/quire/pkg/core"
)

// Watch reports changes to key files whose key matches pattern.
// Pattern uses doublestar syntax over keys ("*" matches every key).
// The returned channel is closed when ctx is cancelled or the watcher stops.
func (s *Store) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	events := make(chan core.Event, 16)
	w := newKeyWatcher(s, pattern, events)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

// matches reports whether a filesystem event concerns a watched key.
func (s *Store) matches(event fsnotify.Event, pattern string) (string, bool) {
	key, ok := s.keyFromPath(event.Name)
	if !ok {
		return "", false
	}
	match, err := doublestar.Match(pattern, key)
	if err != nil || !match {
		return "", false
	}
	return key, true
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	}
	return ""
}

func (s *Store) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherActive = active
}
