// Package share exports the note collection and shares single notes through
// an external share facility.
package share

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/quire/pkg/core"
)

const (
	// ExportFileName is the name of the full-collection snapshot.
	ExportFileName = "notes_backup.json"
	// ShareFileName is the transient file used when sharing one note.
	ShareFileName = "note.txt"

	MimeJSON = "application/json"
	MimeText = "text/plain"
)

// ErrSharingUnavailable is returned when the platform cannot share files.
var ErrSharingUnavailable = errors.New("sharing is not available")

// Options describe a share request.
type Options struct {
	MimeType string
	Title    string
}

// Files writes and removes local files.
type Files interface {
	WriteText(ctx context.Context, path, content string) error
	Delete(ctx context.Context, path string) error
}

// Sharer hands a file to the outside world.
type Sharer interface {
	IsAvailable(ctx context.Context) bool
	Share(ctx context.Context, path string, opts Options) error
}

// Service implements export and share.
type Service struct {
	files        Files
	sharer       Sharer
	documentsDir string
	cacheDir     string
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a share service. Exports are written to documentsDir and
// transient share files to cacheDir.
func New(files Files, sharer Sharer, documentsDir, cacheDir string, opts ...Option) *Service {
	s := &Service{
		files:        files,
		sharer:       sharer,
		documentsDir: documentsDir,
		cacheDir:     cacheDir,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExportAll writes the full note collection as JSON and shares it.
// The export file is kept even when sharing is unavailable or fails, and its
// path is returned whenever it was written.
func (s *Service) ExportAll(ctx context.Context, notes []core.Note) (string, error) {
	if notes == nil {
		notes = []core.Note{}
	}
	data, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode export: %w", err)
	}

	path := filepath.Join(s.documentsDir, ExportFileName)
	if err := s.files.WriteText(ctx, path, string(data)); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	s.logger.Info("notes exported", "path", path, "count", len(notes))

	if !s.sharer.IsAvailable(ctx) {
		return path, ErrSharingUnavailable
	}
	if err := s.sharer.Share(ctx, path, Options{MimeType: MimeJSON, Title: "Export Notes"}); err != nil {
		return path, fmt.Errorf("failed to share export: %w", err)
	}
	return path, nil
}

// ShareOne shares a single note as plain text.
// The transient file is removed afterwards whatever the outcome.
func (s *Service) ShareOne(ctx context.Context, note core.Note) (err error) {
	path := filepath.Join(s.cacheDir, ShareFileName)
	if err := s.files.WriteText(ctx, path, Text(note)); err != nil {
		return fmt.Errorf("failed to write share file: %w", err)
	}
	defer func() {
		if delErr := s.files.Delete(ctx, path); delErr != nil {
			s.logger.Warn("failed to remove share file", "path", path, "error", delErr)
		}
	}()

	if !s.sharer.IsAvailable(ctx) {
		return ErrSharingUnavailable
	}
	if err := s.sharer.Share(ctx, path, Options{MimeType: MimeText, Title: note.Title}); err != nil {
		return fmt.Errorf("failed to share note %s: %w", note.ID, err)
	}
	s.logger.Info("note shared", "id", note.ID)
	return nil
}

// Text renders a note the way it is shared.
func Text(note core.Note) string {
	return note.Title + "\n\n" + note.Content
}
