package fs

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/quire/pkg/core"
)

// settleDelay is how long a key must stay quiet before its change is reported.
// One atomic save produces a create, a write and a rename on the temp file.
const settleDelay = 50 * time.Millisecond

var errWatcherClosed = errors.New("fsnotify closed unexpectedly")

// keyWatcher turns fsnotify activity in the store directory into key events.
// It runs as a lifecycle worker so a supervisor can restart it.
type keyWatcher struct {
	*worker.BaseWorker
	store   *Store
	pattern string
	out     chan core.Event

	fsw       *fsnotify.Watcher
	settle    *debouncer
	cancel    context.CancelFunc
	delivered atomic.Int64
}

func newKeyWatcher(store *Store, pattern string, out chan core.Event) *keyWatcher {
	return &keyWatcher{
		BaseWorker: worker.NewBaseWorker("store-watcher"),
		store:      store,
		pattern:    pattern,
		out:        out,
	}
}

func (k *keyWatcher) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if st := k.State().Status; st != worker.StatusCreated && st != worker.StatusPending {
		return fmt.Errorf("store watcher is %s", st)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(k.store.Path); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", k.store.Path, err)
	}
	k.fsw = fsw
	k.settle = newDebouncer(settleDelay)
	k.store.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	k.cancel = cancel
	k.SetStatus(worker.StatusRunning)
	return k.StartFunc(runCtx, k.run)
}

func (k *keyWatcher) Stop(ctx context.Context) error {
	if k.cancel != nil {
		k.StopRequested = true
		k.cancel()
	}
	return k.BaseWorker.Stop(ctx)
}

func (k *keyWatcher) State() worker.State {
	return k.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"pattern":           k.pattern,
			"delivered":         strconv.FormatInt(k.delivered.Load(), 10),
		}
	})
}

func (k *keyWatcher) run(ctx context.Context) (err error) {
	log := k.store.config.Logger
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("store watcher panic: %v", r)
			log.Debug("store watcher stack", "stack", string(debug.Stack()))
			log.Error("store watcher panic", "error", err)
		}
	}()
	defer close(k.out)
	defer k.store.setWatcherActive(false)
	defer k.fsw.Close()

	err = k.pump(ctx)
	// Pending timers may still deliver; out must stay open until they finish.
	k.settle.stopAndWait(5 * time.Second)
	return err
}

// pump feeds fsnotify events to observe. It returns nil on a requested
// shutdown and errWatcherClosed when fsnotify goes away on its own.
func (k *keyWatcher) pump(ctx context.Context) error {
	for {
		var (
			ev  fsnotify.Event
			ok  bool
			err error
		)
		select {
		case <-ctx.Done():
			return nil
		case ev, ok = <-k.fsw.Events:
			if ok {
				k.observe(ctx, ev)
				continue
			}
		case err, ok = <-k.fsw.Errors:
			if ok {
				k.store.config.Logger.Error("fsnotify error", "error", err)
				if k.store.config.ErrorHandler != nil {
					k.store.config.ErrorHandler(err)
				}
				continue
			}
		}
		if k.StopRequested || ctx.Err() != nil {
			return nil
		}
		return errWatcherClosed
	}
}

func (k *keyWatcher) observe(ctx context.Context, ev fsnotify.Event) {
	key, ok := k.store.matches(ev, k.pattern)
	if !ok {
		return
	}
	typ := mapEventType(ev)
	if typ == "" {
		return
	}
	k.store.config.Logger.Debug("key changed", "key", key, "op", ev.Op.String())

	k.settle.add(core.Event{Type: typ, Key: key, Timestamp: time.Now().Unix()}, func(e core.Event) {
		// A timer can fire after out is closed during shutdown.
		defer func() { _ = recover() }()
		select {
		case k.out <- e:
			k.delivered.Add(1)
		case <-ctx.Done():
		}
	})
}

// Forward copies store events into handle until ctx ends or events closes.
// A panicking handle is reported through onError instead of crashing the process.
func Forward(ctx context.Context, events <-chan core.Event, handle func(core.Event), onError func(error)) {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				handle(e)
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		if onError != nil {
			onError(err)
		}
	}))
}
