// Package storage persists the reading list as a single JSON blob in a key/value backend.
package storage

import (
	"context"
	"errors"
)

var ErrBlobNotFound = errors.New("blob not found")

// BlobStore saves and loads opaque values by name. Load returns
// ErrBlobNotFound when nothing has been saved under the key yet.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}
