// Package memory provides in-process implementations of the quire collaborators.
// They back ephemeral sessions and tests.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/quire/pkg/core"
)

var _ core.Store = (*Store)(nil)

// Store is a map-backed core.Store.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
	saves  map[string]int

	// FailSave, when set, is returned by every Save without touching stored values.
	FailSave error
	// FailLoad, when set, is returned by every Load.
	FailLoad error
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		values: make(map[string]string),
		saves:  make(map[string]int),
	}
}

// Load returns the value saved under key.
func (s *Store) Load(ctx context.Context, key string) (string, bool, error) {
	if err := validKey(key); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.FailLoad != nil {
		return "", false, s.FailLoad
	}
	text, ok := s.values[key]
	return text, ok, nil
}

// Save stores text under key.
func (s *Store) Save(ctx context.Context, key, text string) error {
	if err := validKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSave != nil {
		return s.FailSave
	}
	s.values[key] = text
	s.saves[key]++
	return nil
}

// Saves returns how many successful saves key received.
func (s *Store) Saves(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves[key]
}

// Keys returns the keys that currently hold a value.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}

func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", core.ErrInvalidKey, key)
	}
	return nil
}
