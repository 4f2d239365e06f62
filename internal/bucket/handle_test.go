package bucket

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coredb/coredb/internal/cache"
)

func TestParseURL(t *testing.T) {
	bucket, prefix, err := ParseURL("s3://my-bucket/db/prod")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "db/prod", prefix)

	_, _, err = ParseURL("gs://not-s3/path")
	assert.Error(t, err)
}

func TestHandleReadonlyRejectsWrites(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFakeStore(dir)
	require.NoError(t, err)
	h := NewHandle(store, true, nil)

	err = h.Put(context.Background(), "a.txt", []byte("hi"))
	assert.ErrorIs(t, err, ErrReadonly)

	err = h.Delete(context.Background(), "a.txt")
	assert.ErrorIs(t, err, ErrReadonly)
}

func TestHandleUploadAndDownload(t *testing.T) {
	localRoot := t.TempDir()
	reserved := filepath.Join(localRoot, reservedSubdir)
	require.NoError(t, os.MkdirAll(reserved, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(reserved, "data.bin"), []byte("payload"), 0o644))

	remoteDir := t.TempDir()
	store, err := NewFakeStore(remoteDir)
	require.NoError(t, err)
	h := NewHandle(store, false, nil)

	require.NoError(t, h.Upload(context.Background(), localRoot))

	downloadRoot := t.TempDir()
	require.NoError(t, h.Download(context.Background(), downloadRoot))

	data, err := os.ReadFile(filepath.Join(downloadRoot, reservedSubdir, "data.bin"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestHandleSyncUploadsNewerLocalAndDownloadsNewerRemote(t *testing.T) {
	localRoot := t.TempDir()
	reserved := filepath.Join(localRoot, reservedSubdir)
	require.NoError(t, os.MkdirAll(reserved, 0o755))

	remoteDir := t.TempDir()
	store, err := NewFakeStore(remoteDir)
	require.NoError(t, err)
	h := NewHandle(store, false, nil)

	// Local-only file: must upload.
	localOnly := filepath.Join(reserved, "local_only.txt")
	require.NoError(t, os.WriteFile(localOnly, []byte("local"), 0o644))

	// Remote-only file: must download.
	require.NoError(t, store.Put(context.Background(), ".coredb/remote_only.txt", []byte("remote")))

	stats, err := h.Sync(context.Background(), localRoot)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Uploaded)
	assert.Equal(t, 1, stats.Downloaded)

	_, err = os.Stat(filepath.Join(localRoot, ".coredb", "remote_only.txt"))
	assert.NoError(t, err)

	remoteData, err := store.Get(context.Background(), ".coredb/local_only.txt")
	require.NoError(t, err)
	assert.Equal(t, "local", string(remoteData))
}

func TestHandleSyncSkipsUploadWhenReadonly(t *testing.T) {
	localRoot := t.TempDir()
	reserved := filepath.Join(localRoot, reservedSubdir)
	require.NoError(t, os.MkdirAll(reserved, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(reserved, "f.txt"), []byte("x"), 0o644))

	remoteDir := t.TempDir()
	store, err := NewFakeStore(remoteDir)
	require.NoError(t, err)
	h := NewHandle(store, true, nil)

	stats, err := h.Sync(context.Background(), localRoot)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Uploaded)

	_, err = store.Get(context.Background(), ".coredb/f.txt")
	assert.Error(t, err)
}

func TestCacheKeyIsStableAndFixedLength(t *testing.T) {
	a := cacheKey("path/one")
	b := cacheKey("path/one")
	c := cacheKey("path/two")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32) // 16 bytes hex-encoded
}

func TestHandleGetUsesCache(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFakeStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), "k", []byte("v1")))

	h := NewHandle(store, false, cache.NewByteCache(1024))
	v, err := h.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(v))

	// Mutate the backing file directly; a cached Get must not see it.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "k"), []byte("v2"), 0o644))
	v, err = h.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(v))
}

func TestFakeStoreListRespectsPrefix(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFakeStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), "a/one.txt", []byte("1")))
	require.NoError(t, store.Put(context.Background(), "b/two.txt", []byte("2")))

	objs, err := store.List(context.Background(), "a/")
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "a/one.txt", objs[0].Path)
	assert.WithinDuration(t, time.Now(), objs[0].LastModified, time.Minute)
}
