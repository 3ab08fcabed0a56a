package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// LocalDisk is the concrete BlobStore backing document uploads when no
// object-store driver is configured (spec's Non-goals explicitly exclude
// shipping a real object-store driver; every bucket here is just a
// subdirectory of Root). SignedURL returns a file:// reference rather than
// a real pre-signed URL, since there's no HTTP surface in front of Root.
type LocalDisk struct {
	Root string
}

func NewLocalDisk(root string) *LocalDisk {
	return &LocalDisk{Root: root}
}

func (l *LocalDisk) resolve(bucket, path string) string {
	return filepath.Join(l.Root, filepath.Clean("/"+bucket), filepath.Clean("/"+path))
}

func (l *LocalDisk) Put(ctx context.Context, bucket, path string, body io.Reader, contentType string) error {
	full := l.resolve(bucket, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("mkdir blob dir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("create blob file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		return fmt.Errorf("write blob file: %w", err)
	}
	return nil
}

func (l *LocalDisk) Get(ctx context.Context, bucket, path string) (io.ReadCloser, error) {
	f, err := os.Open(l.resolve(bucket, path))
	if err != nil {
		return nil, fmt.Errorf("open blob file: %w", err)
	}
	return f, nil
}

func (l *LocalDisk) SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	return "file://" + l.resolve(bucket, path), nil
}

func (l *LocalDisk) Delete(ctx context.Context, bucket, path string) error {
	if err := os.Remove(l.resolve(bucket, path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob file: %w", err)
	}
	return nil
}
