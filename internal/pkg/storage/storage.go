package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidPath is returned for keys that would escape the storage root.
var ErrInvalidPath = errors.New("storage: invalid path")

// Storage stores uploaded blobs under relative keys such as
// "upload/ab/<uuid>.jpg".
type Storage interface {
	Save(ctx context.Context, path string, content io.Reader) error
	// Get returns the blob; the caller closes it.
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, path string) error
}
