package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalStorage_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "work")

	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, store.WorkDir())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSaveUploadAndOpen(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path, err := store.SaveUpload(ctx, "lecture.mp4", strings.NewReader("video bytes"))
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "lecture.mp4_")

	rc, err := store.Open(ctx, path)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "video bytes", string(data))
}

func TestSaveUpload_CancelledContext(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.SaveUpload(ctx, "x", strings.NewReader("data"))
	require.Error(t, err)
}

func TestCleanup(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	p1, err := store.SaveUpload(ctx, "a", strings.NewReader("1"))
	require.NoError(t, err)
	p2, err := store.SaveUpload(ctx, "b", strings.NewReader("2"))
	require.NoError(t, err)

	// Missing files are tolerated.
	err = store.Cleanup(ctx, []string{p1, p2, filepath.Join(store.WorkDir(), "missing.wav")})
	require.NoError(t, err)

	_, statErr := os.Stat(p1)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(p2)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLocalStorage_UploadToS3NotConfigured(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.UploadToS3(context.Background(), "key", strings.NewReader("data"))
	assert.ErrorIs(t, err, ErrS3NotConfigured)
}
