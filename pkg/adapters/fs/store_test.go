package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/quire/pkg/core"
)

func newTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = t.TempDir()
	}
	s := NewStore(cfg)
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Config{})

	if _, ok, err := s.Load(ctx, core.KeyNotes); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := s.Save(ctx, core.KeyNotes, `[{"id":"1"}]`); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	text, ok, err := s.Load(ctx, core.KeyNotes)
	if err != nil || !ok {
		t.Fatalf("Load failed: ok=%v err=%v", ok, err)
	}
	if text != `[{"id":"1"}]` {
		t.Errorf("unexpected text %q", text)
	}

	if _, err := os.Stat(filepath.Join(s.Path, "notes.json")); err != nil {
		t.Errorf("expected notes.json on disk: %v", err)
	}
}

func TestStoreIdempotentSave(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Config{Ext: "yaml"})

	for i := 0; i < 2; i++ {
		if err := s.Save(ctx, core.KeyTheme, `"rose"`); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(s.Path, "currentTheme.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"rose"` {
		t.Errorf("unexpected content %q", data)
	}

	state := s.State().(StoreState)
	if state.Saves != 2 || state.LastSave == nil {
		t.Errorf("unexpected state %+v", state)
	}
}

func TestStoreFailedSaveKeepsPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Config{RetryAttempts: 2})

	if err := s.Save(ctx, core.KeyTasks, "[]"); err != nil {
		t.Fatal(err)
	}

	// Replace the target with a non-empty directory so every rename fails.
	path := filepath.Join(s.Path, "tasks.json")
	_ = os.Remove(path)
	if err := os.MkdirAll(filepath.Join(path, "blocker"), 0755); err != nil {
		t.Fatal(err)
	}

	if err := s.Save(ctx, core.KeyTasks, `[{"id":"t1"}]`); err == nil {
		t.Fatal("expected save to fail")
	}

	entries, _ := os.ReadDir(s.Path)
	for _, e := range entries {
		if e.Name() != "tasks.json" {
			t.Errorf("partial write left behind: %s", e.Name())
		}
	}
}

func TestStoreReadOnly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.json"), []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}

	s := newTestStore(t, Config{Path: dir, ReadOnly: true})

	if text, ok, err := s.Load(ctx, core.KeyNotes); err != nil || !ok || text != "[]" {
		t.Fatalf("Load: text=%q ok=%v err=%v", text, ok, err)
	}
	if err := s.Save(ctx, core.KeyNotes, "[1]"); !errors.Is(err, core.ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
}

func TestStoreReadOnlyMissingDirectory(t *testing.T) {
	s := NewStore(Config{Path: filepath.Join(t.TempDir(), "absent"), ReadOnly: true})
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("read-only store on missing dir should initialize: %v", err)
	}
	if _, ok, err := s.Load(context.Background(), core.KeyNotes); ok || err != nil {
		t.Errorf("expected absent key, got ok=%v err=%v", ok, err)
	}
}

func TestStoreMustExist(t *testing.T) {
	s := NewStore(Config{Path: filepath.Join(t.TempDir(), "absent"), MustExist: true})
	if err := s.Initialize(context.Background()); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestStoreInvalidKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Config{})

	for _, key := range []string{"", "../notes", `a\b`, "..", TempFilePrefix + "x"} {
		if err := s.Save(ctx, key, "x"); !errors.Is(err, core.ErrInvalidKey) {
			t.Errorf("Save(%q): expected ErrInvalidKey, got %v", key, err)
		}
		if _, _, err := s.Load(ctx, key); !errors.Is(err, core.ErrInvalidKey) {
			t.Errorf("Load(%q): expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestStoreInitializeRemovesInterruptedWrites(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, TempFilePrefix+"42")
	if err := os.WriteFile(stale, []byte("half"), 0644); err != nil {
		t.Fatal(err)
	}

	newTestStore(t, Config{Path: dir})

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("expected stale temp file to be removed, stat err = %v", err)
	}
}

func TestKeyFromPath(t *testing.T) {
	s := NewStore(Config{Path: "/data"})

	tests := []struct {
		path string
		key  string
		ok   bool
	}{
		{filepath.Join("/data", "notes.json"), "notes", true},
		{filepath.Join("/data", "notes.yaml"), "", false},
		{filepath.Join("/data", TempFilePrefix+"1.json"), "", false},
		{filepath.Join("/data", "sub", "tasks.json"), "", false},
	}
	for _, tt := range tests {
		key, ok := s.keyFromPath(tt.path)
		if key != tt.key || ok != tt.ok {
			t.Errorf("keyFromPath(%q) = %q, %v; want %q, %v", tt.path, key, ok, tt.key, tt.ok)
		}
	}
}

func TestStoreState(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Config{RetryAttempts: 4})

	if err := s.Save(ctx, core.KeyTasks, "[]"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	state, ok := s.State().(StoreState)
	if !ok {
		t.Fatalf("unexpected state type %T", s.State())
	}
	if state.Path != s.Path || state.Saves != 1 || state.LastSave == nil {
		t.Errorf("unexpected state %+v", state)
	}
	if state.RetryAttempts != 4 || state.WatcherActive {
		t.Errorf("unexpected config in state %+v", state)
	}
	if s.ComponentType() != "store" {
		t.Errorf("unexpected component type %q", s.ComponentType())
	}
}
