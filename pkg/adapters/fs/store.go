package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/aretw0/quire/pkg/core"
)

var (
	_ core.Store     = (*Store)(nil)
	_ core.Watchable = (*Store)(nil)
)

// DefaultExt is the file extension used for keys when Config.Ext is empty.
const DefaultExt = ".json"

// Store implements core.Store with one file per key inside a directory.
type Store struct {
	Path   string
	config Config

	mu            sync.RWMutex
	watcherActive bool
	saves         int
	lastSave      *time.Time
}

// Config holds the configuration for the filesystem store.
type Config struct {
	Path          string
	Ext           string // e.g. ".json" or ".yaml"
	MustExist     bool
	ReadOnly      bool
	RetryAttempts uint // attempts per Save, minimum 1
	RetryDelay    time.Duration
	Logger        *slog.Logger
	ErrorHandler  func(error) // watcher runtime errors
}

// NewStore creates a new filesystem-backed store.
func NewStore(config Config) *Store {
	if config.Ext == "" {
		config.Ext = DefaultExt
	}
	if !strings.HasPrefix(config.Ext, ".") {
		config.Ext = "." + config.Ext
	}
	if config.RetryAttempts == 0 {
		config.RetryAttempts = 1
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 20 * time.Millisecond
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Store{Path: config.Path, config: config}
}

// Initialize makes sure the store directory exists.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.MustExist || s.config.ReadOnly {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			if s.config.ReadOnly {
				// Nothing to read yet; every Load reports absent.
				return nil
			}
			return fmt.Errorf("store path does not exist: %s", s.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("store path is not a directory: %s", s.Path)
		}
		return nil
	}

	if err := os.MkdirAll(s.Path, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	removed, err := removeStaleTemps(s.Path)
	if err != nil {
		return fmt.Errorf("failed to clean store directory: %w", err)
	}
	if removed > 0 {
		s.config.Logger.Warn("removed interrupted writes", "path", s.Path, "count", removed)
	}
	return nil
}

// KeyPath maps key to its file.
func (s *Store) KeyPath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." ||
		strings.HasPrefix(key, TempFilePrefix) {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidKey, key)
	}
	return filepath.Join(s.Path, key+s.config.Ext), nil
}

// Load reads the file behind key.
func (s *Store) Load(ctx context.Context, key string) (string, bool, error) {
	path, err := s.KeyPath(key)
	if err != nil {
		return "", false, err
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Save writes text under key.
//
// The write goes to a temp file that is renamed over the target, so readers
// see either the old or the new snapshot. Failed attempts are retried up to
// Config.RetryAttempts times.
func (s *Store) Save(ctx context.Context, key, text string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	path, err := s.KeyPath(key)
	if err != nil {
		return err
	}

	err = retry.Do(
		func() error {
			return writeFileAtomic(path, []byte(text), 0644)
		},
		retry.Context(ctx),
		retry.Attempts(s.config.RetryAttempts),
		retry.Delay(s.config.RetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			s.config.Logger.Warn("store write failed, retrying",
				"key", key,
				"attempt", attempt+1,
				"error", err,
			)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}

	s.mu.Lock()
	now := time.Now()
	s.saves++
	s.lastSave = &now
	s.mu.Unlock()

	s.config.Logger.Debug("store saved", "key", key, "bytes", len(text))
	return nil
}

// keyFromPath is the inverse of KeyPath. ok is false for files that are not keys.
func (s *Store) keyFromPath(path string) (string, bool) {
	if filepath.Dir(filepath.Clean(path)) != filepath.Clean(s.Path) {
		return "", false
	}
	name := filepath.Base(path)
	if strings.HasPrefix(name, TempFilePrefix) || filepath.Ext(name) != s.config.Ext {
		return "", false
	}
	key := strings.TrimSuffix(name, s.config.Ext)
	if key == "" {
		return "", false
	}
	return key, true
}
