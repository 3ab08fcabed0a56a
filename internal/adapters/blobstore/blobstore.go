// Package blobstore defines the outbound contract for raw file storage,
// consumed by the Document Upload flow. Paths always follow
// {bucket}/{org_id}/{resource_id}/{filename}; enforcing that shape is the
// caller's responsibility (see tenant.Context), not the store's.
package blobstore

import (
	"context"
	"io"
	"time"
)

// BlobStore is the adapter boundary; concrete drivers (an object-storage
// SDK, a local filesystem stub for tests) are swappable behind this.
type BlobStore interface {
	Put(ctx context.Context, bucket, path string, body io.Reader, contentType string) error
	Get(ctx context.Context, bucket, path string) (io.ReadCloser, error)
	SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, bucket, path string) error
}
