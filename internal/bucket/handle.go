package bucket

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/coredb/coredb/internal/cache"
)

// reservedSubdir is the directory inside the local data root that gets
// mirrored to/from the bucket.
const reservedSubdir = ".coredb"

// Handle is a connected bucket, optionally readonly, fronted by a byte
// cache keyed on a derived digest of the object path.
type Handle struct {
	store    ObjectStore
	readonly bool
	cache    *cache.ByteCache
}

// NewHandle wraps store behind a Handle. A nil byteCache disables
// caching (every Get goes straight to the store).
func NewHandle(store ObjectStore, readonly bool, byteCache *cache.ByteCache) *Handle {
	return &Handle{store: store, readonly: readonly, cache: byteCache}
}

// SetReadonly toggles the readonly guard.
func (h *Handle) SetReadonly(readonly bool) { h.readonly = readonly }

// Readonly reports whether mutating calls are rejected.
func (h *Handle) Readonly() bool { return h.readonly }

// cacheKey derives a stable, fixed-length cache key from an object path
// via HKDF-SHA256, so cached entries never leak the raw path structure
// through the cache's key space.
func cacheKey(path string) string {
	r := hkdf.New(sha256.New, []byte(path), []byte("coredb-bucket-cache"), []byte("object-key"))
	out := make([]byte, 16)
	if _, err := io.ReadFull(r, out); err != nil {
		// HKDF over a fixed-size SHA-256 extract never runs out of
		// entropy for a 16-byte expand; this path is unreachable.
		panic(err)
	}
	return hex.EncodeToString(out)
}

// Get returns the bytes at path, consulting the cache first when one is
// configured.
func (h *Handle) Get(ctx context.Context, path string) ([]byte, error) {
	if h.cache == nil {
		return h.store.Get(ctx, path)
	}
	return h.cache.GetOrFetch(cacheKey(path), func() ([]byte, error) {
		return h.store.Get(ctx, path)
	})
}

// Put writes data at path, rejecting the call if the handle is readonly.
func (h *Handle) Put(ctx context.Context, path string, data []byte) error {
	if h.readonly {
		return ErrReadonly
	}
	if err := h.store.Put(ctx, path, data); err != nil {
		return err
	}
	if h.cache != nil {
		h.cache.Put(cacheKey(path), data)
	}
	return nil
}

// Delete removes the object at path, rejecting the call if readonly.
func (h *Handle) Delete(ctx context.Context, path string) error {
	if h.readonly {
		return ErrReadonly
	}
	if err := h.store.Delete(ctx, path); err != nil {
		return err
	}
	if h.cache != nil {
		h.cache.Remove(cacheKey(path))
	}
	return nil
}

// Upload walks localRoot's reserved subdirectory and writes every file
// found to the bucket at its path relative to localRoot.
func (h *Handle) Upload(ctx context.Context, localRoot string) error {
	if h.readonly {
		return ErrReadonly
	}
	dir := filepath.Join(localRoot, reservedSubdir)
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		relative, err := filepath.Rel(localRoot, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return h.store.Put(ctx, toObjectPath(relative), data)
	})
}

// Download lists every object in the bucket and writes it under
// localRoot at its relative path, creating intermediate directories.
func (h *Handle) Download(ctx context.Context, localRoot string) error {
	objects, err := h.store.List(ctx, "")
	if err != nil {
		return err
	}
	for _, obj := range objects {
		data, err := h.store.Get(ctx, obj.Path)
		if err != nil {
			return err
		}
		localFile := filepath.Join(localRoot, filepath.FromSlash(obj.Path))
		if err := os.MkdirAll(filepath.Dir(localFile), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(localFile, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// Sync performs a bidirectional, last-writer-wins sync between
// localRoot's reserved subdirectory and the bucket: per file, the newer
// modification time wins; a file present on only one side is copied to
// the other. Uploads are skipped entirely when the handle is readonly.
func (h *Handle) Sync(ctx context.Context, localRoot string) (SyncStats, error) {
	var stats SyncStats

	remote, err := h.store.List(ctx, "")
	if err != nil {
		return stats, err
	}
	remoteByPath := make(map[string]ObjectInfo, len(remote))
	for _, obj := range remote {
		remoteByPath[obj.Path] = obj
	}

	local, err := localFileTimes(localRoot)
	if err != nil {
		return stats, err
	}

	if !h.readonly {
		for path, localTime := range local {
			remoteObj, existsRemotely := remoteByPath[path]
			if existsRemotely && !localTime.After(remoteObj.LastModified) {
				continue
			}
			data, err := os.ReadFile(filepath.Join(localRoot, filepath.FromSlash(path)))
			if err != nil {
				return stats, err
			}
			if err := h.store.Put(ctx, path, data); err != nil {
				return stats, err
			}
			stats.Uploaded++
		}
	}

	for path, remoteObj := range remoteByPath {
		localTime, existsLocally := local[path]
		if existsLocally && !remoteObj.LastModified.After(localTime) {
			continue
		}
		data, err := h.store.Get(ctx, path)
		if err != nil {
			return stats, err
		}
		localFile := filepath.Join(localRoot, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(localFile), 0o755); err != nil {
			return stats, err
		}
		if err := os.WriteFile(localFile, data, 0o644); err != nil {
			return stats, err
		}
		stats.Downloaded++
	}

	return stats, nil
}

func localFileTimes(localRoot string) (map[string]time.Time, error) {
	dir := filepath.Join(localRoot, reservedSubdir)
	times := make(map[string]time.Time)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		relative, err := filepath.Rel(localRoot, path)
		if err != nil {
			return err
		}
		times[toObjectPath(relative)] = info.ModTime()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return times, nil
}

func toObjectPath(relative string) string {
	return strings.ReplaceAll(relative, string(filepath.Separator), "/")
}
