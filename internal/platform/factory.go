package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/quire/pkg/adapters/fs"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/typed"
)

// Backend is an opened store plus what was decided while opening it.
type Backend struct {
	Store    core.Store
	FS       *fs.Store // nil when a store was injected
	Path     string    // resolved data directory; empty for injected stores
	Codec    typed.Codec
	Logger   *slog.Logger
	Settings AppSettings
}

// Open resolves path, builds the store and initializes it.
func Open(ctx context.Context, path string, opts ...Option) (*Backend, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	codec, err := typed.CodecByName(o.format)
	if err != nil {
		return nil, err
	}

	if o.store != nil {
		return &Backend{Store: o.store, Codec: codec, Logger: logger, Settings: o.app}, nil
	}

	bypass := o.readOnly || !o.devSafety
	sandbox := o.forceTemp || (IsDevRun() && !bypass)
	resolved := ResolveDataPath(path, sandbox)
	if sandbox {
		logger.Warn("running in SAFE MODE (dev sandbox)", "original_path", path, "resolved_path", resolved)
	} else if IsDevRun() && !o.readOnly {
		logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
	}

	store := fs.NewStore(fs.Config{
		Path:          resolved,
		Ext:           codec.Name(),
		MustExist:     o.mustExist,
		ReadOnly:      o.readOnly,
		RetryAttempts: o.retryAttempts,
		Logger:        logger,
		ErrorHandler:  o.errorHandler,
	})
	if err := store.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &Backend{Store: store, FS: store, Path: resolved, Codec: codec, Logger: logger, Settings: o.app}, nil
}
