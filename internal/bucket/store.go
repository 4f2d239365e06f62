// Package bucket implements the optional remote mirror of the local
// store: upload, download, bidirectional mtime-based sync, and a
// readonly guard, addressed through a small ObjectStore interface so
// the S3-backed implementation and a local-filesystem fake share one
// contract.
//
// Grounded on original_source's storage/bucket.rs (BucketStorage) for
// the upload/download/sync algorithms and nornicdb/pkg/storage/loader.go
// for the directory-walk idiom, per SPEC_FULL.md §4.2.
package bucket

import (
	"context"
	"errors"
	"time"
)

// ErrReadonly is returned by every mutating call on a readonly handle.
var ErrReadonly = errors.New("bucket: readonly handle")

// ObjectInfo describes a stored object's identity and staleness.
type ObjectInfo struct {
	Path         string
	LastModified time.Time
}

// ObjectStore is the minimal contract a remote (or fake local) backend
// must satisfy. Paths are always relative (no leading slash) and use
// forward slashes regardless of host OS.
type ObjectStore interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Put(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// SyncStats counts the objects moved by a Sync call.
type SyncStats struct {
	Uploaded   int
	Downloaded int
}
