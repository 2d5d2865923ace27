package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("client went away") }

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	fixed := time.UnixMilli(1700000000123)
	store.now = func() time.Time { return fixed }
	return store
}

func TestNewLocalStore_CreatesPhotoDir(t *testing.T) {
	store := newTestStore(t)
	info, err := os.Stat(filepath.Join(store.root, "uploads", "profilePhotos"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(store.root, "uploads"), store.UploadsDir())
}

func TestSavePhoto(t *testing.T) {
	store := newTestStore(t)

	rel, err := store.SavePhoto(context.Background(), "user-1", ".JPG", "", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/profilePhotos/user-1_1700000000123.jpg", rel)

	data, err := os.ReadFile(filepath.Join(store.root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
	assert.FileExists(t, filepath.Join(store.root, filepath.FromSlash(rel)))
}

func TestSavePhoto_CollisionBumpsTimestamp(t *testing.T) {
	store := newTestStore(t)

	first, err := store.SavePhoto(context.Background(), "user-1", "png", "", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := store.SavePhoto(context.Background(), "user-1", "png", "", strings.NewReader("two"))
	require.NoError(t, err)

	assert.Equal(t, "uploads/profilePhotos/user-1_1700000000123.png", first)
	assert.Equal(t, "uploads/profilePhotos/user-1_1700000000124.png", second)

	data, err := os.ReadFile(filepath.Join(store.root, filepath.FromSlash(first)))
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestSavePhoto_AfterReplacedPhoto(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.SavePhoto(ctx, "user-1", ".png", "", strings.NewReader("one"))
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, first))

	// same millisecond, old file already gone
	second, err := store.SavePhoto(ctx, "user-1", ".png", first, strings.NewReader("two"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/profilePhotos/user-1_1700000000124.png", second)

	// a clock behind the previous stamp still moves forward
	store.now = func() time.Time { return time.UnixMilli(1600000000000) }
	third, err := store.SavePhoto(ctx, "user-1", ".png", second, strings.NewReader("three"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/profilePhotos/user-1_1700000000125.png", third)
}

func TestPhotoStamp(t *testing.T) {
	tests := []struct {
		rel    string
		want   int64
		wantOK bool
	}{
		{"uploads/profilePhotos/user-1_1700000000123.jpg", 1700000000123, true},
		{`uploads\profilePhotos\user-1_42`, 42, true},
		{"uploads/profilePhotos/user-2_1700000000123.jpg", 0, false},
		{"uploads/profilePhotos/user-1_abc.jpg", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := photoStamp("user-1", tt.rel)
		assert.Equal(t, tt.wantOK, ok, tt.rel)
		assert.Equal(t, tt.want, got, tt.rel)
	}
}

func TestSavePhoto_Rejects(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SavePhoto(context.Background(), "../evil", ".png", "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = store.SavePhoto(context.Background(), "", ".png", "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidPath)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.SavePhoto(ctx, "user-1", ".png", "", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSavePhoto_WriteFailureLeavesNoFile(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SavePhoto(context.Background(), "user-1", ".png", "", failingReader{})
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(store.root, "uploads", "profilePhotos"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rel, err := store.SavePhoto(ctx, "user-1", ".gif", "", strings.NewReader("gif"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, rel))
	assert.NoFileExists(t, filepath.Join(store.root, filepath.FromSlash(rel)))

	// already gone
	assert.NoError(t, store.Delete(ctx, rel))
}

func TestDelete_RefusesEscapes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	outside := filepath.Join(filepath.Dir(store.root), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))

	for _, rel := range []string{"../keep.txt", "uploads/../../keep.txt", "/etc/passwd", `..\keep.txt`} {
		assert.ErrorIs(t, store.Delete(ctx, rel), ErrOutsideRoot, rel)
	}
	assert.ErrorIs(t, store.Delete(ctx, ""), ErrInvalidPath)
	assert.ErrorIs(t, store.Delete(ctx, "."), ErrInvalidPath)

	_, err := os.Stat(outside)
	assert.NoError(t, err)
}

func TestNormalizeExt(t *testing.T) {
	tests := map[string]string{
		".PNG":    ".png",
		"jpeg":    ".jpeg",
		"":        "",
		".we/ird": "",
		" .webp ": ".webp",
		".tar.gz": "",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeExt(in), in)
	}
}
