package storage

import (
	"context"
	"io"
)

// ObjectStorage is the subset of an object store the export archive needs.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Bucket() string
}
