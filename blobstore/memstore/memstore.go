// Package memstore implements blobstore.Store in memory, for tests and for
// the reset-then-replay round-trip property.
package memstore

import (
	"context"
	"sync"

	"github.com/statekit/statekit"
	"github.com/statekit/statekit/blobstore"
	"github.com/statekit/statekit/blobstore/registry"
)

var _ blobstore.Store = &Store{}

// Store is a memory-based blobstore.Store.
type Store struct {
	mu    sync.Mutex
	blobs map[statekit.Hash][]byte
}

// New produces a new, empty Store.
func New() *Store {
	return &Store{blobs: make(map[statekit.Hash][]byte)}
}

// Has reports whether a blob with the given hash is present.
func (s *Store) Has(_ context.Context, hash statekit.Hash) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[hash]
	return ok, nil
}

// Get returns the blob stored under hash.
func (s *Store) Get(_ context.Context, hash statekit.Hash) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[hash]
	if !ok {
		return nil, blobstore.ErrNotFound
	}
	return b, nil
}

// Size returns the byte length of the blob stored under hash.
func (s *Store) Size(_ context.Context, hash statekit.Hash) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[hash]
	if !ok {
		return 0, blobstore.ErrNotFound
	}
	return int64(len(b)), nil
}

// Put stores b under hash. Put is idempotent.
func (s *Store) Put(_ context.Context, hash statekit.Hash, b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[hash]; ok {
		return nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	s.blobs[hash] = cp
	return nil
}

func init() {
	registry.Register("mem", func(context.Context, map[string]interface{}) (blobstore.Store, error) {
		return New(), nil
	})
}
