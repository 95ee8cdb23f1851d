package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/quire/pkg/share"
)

var (
	_ share.Files  = Files{}
	_ share.Sharer = Outbox{}
)

// Files is the transient filesystem collaborator used by the share service.
type Files struct {
	Logger *slog.Logger
}

// WriteText writes content to path atomically, creating parent directories.
func (f Files) WriteText(ctx context.Context, path, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	if err := writeFileAtomic(path, []byte(content), 0644); err != nil {
		return err
	}
	if f.Logger != nil {
		f.Logger.Debug("transient file written", "path", path)
	}
	return nil
}

// Delete removes path. A missing file is not an error.
func (f Files) Delete(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// Outbox is a share collaborator that hands files off by copying them into a
// directory the user (or another tool) picks up from.
type Outbox struct {
	Dir    string
	Logger *slog.Logger
}

// IsAvailable reports whether the outbox is configured and writable.
func (o Outbox) IsAvailable(ctx context.Context) bool {
	if o.Dir == "" {
		return false
	}
	return os.MkdirAll(o.Dir, 0755) == nil
}

// Share copies path into the outbox. The title and MIME type are only logged.
func (o Outbox) Share(ctx context.Context, path string, opts share.Options) error {
	if o.Dir == "" {
		return errors.New("outbox not configured")
	}
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	dest := filepath.Join(o.Dir, filepath.Base(path))
	if err := writeFileAtomic(dest, data, 0644); err != nil {
		return err
	}
	if o.Logger != nil {
		o.Logger.Info("shared file", "dest", dest, "mime", opts.MimeType, "title", opts.Title)
	}
	return nil
}
