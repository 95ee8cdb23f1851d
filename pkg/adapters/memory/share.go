package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/quire/pkg/share"
)

var (
	_ share.Files  = (*Files)(nil)
	_ share.Sharer = (*Sharer)(nil)
)

// Files keeps written files in a map.
type Files struct {
	mu      sync.Mutex
	files   map[string]string
	deleted []string

	FailWrite error
}

// NewFiles creates an empty file set.
func NewFiles() *Files {
	return &Files{files: make(map[string]string)}
}

func (f *Files) WriteText(ctx context.Context, path, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWrite != nil {
		return f.FailWrite
	}
	f.files[path] = content
	return nil
}

func (f *Files) Delete(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, path)
	f.deleted = append(f.deleted, path)
	return nil
}

// Read returns the content at path.
func (f *Files) Read(path string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.files[path]
	return content, ok
}

// Deleted lists deleted paths in call order.
func (f *Files) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// Shared is one recorded share call.
type Shared struct {
	Path    string
	Content string
	Options share.Options
}

// Sharer records share requests. It reads shared content from Files so
// tests can assert what the recipient saw.
type Sharer struct {
	mu        sync.Mutex
	files     *Files
	available bool
	shared    []Shared

	FailShare error
}

// NewSharer creates a sharer reading from files.
func NewSharer(files *Files, available bool) *Sharer {
	return &Sharer{files: files, available: available}
}

func (s *Sharer) IsAvailable(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

func (s *Sharer) Share(ctx context.Context, path string, opts share.Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailShare != nil {
		return s.FailShare
	}
	content, ok := s.files.Read(path)
	if !ok {
		return fmt.Errorf("share: no such file %s", path)
	}
	s.shared = append(s.shared, Shared{Path: path, Content: content, Options: opts})
	return nil
}

// Shared lists recorded share calls.
func (s *Sharer) Shared() []Shared {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Shared(nil), s.shared...)
}
