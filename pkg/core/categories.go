package core

import "strings"

// DefaultCategories seeds every new CategorySet.
var DefaultCategories = []string{"Personal", "Work", "Shopping", "Ideas"}

// CategorySet is an ordered set of category names. It only grows.
// Comparison is exact: "work" and "Work" are distinct names.
type CategorySet struct {
	names []string
	index map[string]struct{}
}

// NewCategorySet returns a set seeded with DefaultCategories followed by extra.
func NewCategorySet(extra ...string) *CategorySet {
	s := &CategorySet{index: make(map[string]struct{})}
	for _, name := range DefaultCategories {
		s.Add(name)
	}
	for _, name := range extra {
		s.Add(name)
	}
	return s
}

// Add appends name (trimmed) unless it is blank or already present.
// It reports whether the set changed.
func (s *CategorySet) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if _, ok := s.index[name]; ok {
		return false
	}
	s.index[name] = struct{}{}
	s.names = append(s.names, name)
	return true
}

// Contains reports whether name, trimmed like Add does, is registered.
func (s *CategorySet) Contains(name string) bool {
	_, ok := s.index[strings.TrimSpace(name)]
	return ok
}

// Names returns a copy of the names in insertion order.
func (s *CategorySet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of categories.
func (s *CategorySet) Len() int {
	return len(s.names)
}
