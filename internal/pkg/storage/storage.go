package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrObjectNotFound = errors.New("stored object not found")
	ErrInvalidPath    = errors.New("invalid storage path")
)

// Storage keeps uploaded blobs addressed by a relative, slash-separated path.
type Storage interface {
	Save(ctx context.Context, path string, content io.Reader) error
	// Open returns ErrObjectNotFound when nothing is stored at path.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete is a no-op for missing objects.
	Delete(ctx context.Context, path string) error
}
