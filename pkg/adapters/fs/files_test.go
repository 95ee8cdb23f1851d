package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/share"
)

func TestFilesWriteAndDelete(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache", "note.txt")

	var files Files
	require.NoError(t, files.WriteText(ctx, path, "Title\n\nBody"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Title\n\nBody", string(data))

	require.NoError(t, files.Delete(ctx, path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is fine.
	assert.NoError(t, files.Delete(ctx, path))
}

func TestOutboxShare(t *testing.T) {
	ctx := context.Background()
	src := filepath.Join(t.TempDir(), "notes_backup.json")
	require.NoError(t, os.WriteFile(src, []byte("[]"), 0644))

	outbox := Outbox{Dir: filepath.Join(t.TempDir(), "outbox")}
	require.True(t, outbox.IsAvailable(ctx))

	require.NoError(t, outbox.Share(ctx, src, share.Options{MimeType: "application/json", Title: "Export"}))

	data, err := os.ReadFile(filepath.Join(outbox.Dir, "notes_backup.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestOutboxUnavailable(t *testing.T) {
	ctx := context.Background()
	assert.False(t, Outbox{}.IsAvailable(ctx))

	// A regular file where the directory should be.
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	assert.False(t, Outbox{Dir: filepath.Join(blocker, "outbox")}.IsAvailable(ctx))
}
