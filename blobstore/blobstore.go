// Package blobstore implements a write-once key→bytes store for layer
// archives, as described in the core's object-store component.
package blobstore

import (
	"context"
	"errors"

	"github.com/statekit/statekit"
)

// ErrNotFound is returned by Get when the requested hash is absent.
var ErrNotFound = errors.New("blob not found")

// Getter is the read side of a Store.
type Getter interface {
	// Has reports whether a blob with the given hash is present.
	Has(ctx context.Context, hash statekit.Hash) (bool, error)

	// Get returns the bytes stored under hash, or ErrNotFound if absent.
	Get(ctx context.Context, hash statekit.Hash) ([]byte, error)

	// Size returns the byte length of the blob stored under hash, without
	// necessarily reading its full contents.
	Size(ctx context.Context, hash statekit.Hash) (int64, error)
}

// Store is a blob store: a write-once mapping from hash to bytes.
type Store interface {
	Getter

	// Put stores b under its own hash. Put is idempotent: storing the same
	// bytes under a hash that's already present is a no-op in effect.
	Put(ctx context.Context, hash statekit.Hash, b []byte) error
}
