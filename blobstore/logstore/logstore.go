// Package logstore implements a blob store that delegates everything to a
// nested store, logging operations as they happen.
package logstore

import (
	"context"
	"log"

	"github.com/statekit/statekit"
	"github.com/statekit/statekit/blobstore"
)

var _ blobstore.Store = &Store{}

// Store wraps a nested blobstore.Store and logs each call through it.
type Store struct {
	s blobstore.Store
}

// New produces a new Store that logs operations against s.
func New(s blobstore.Store) *Store {
	return &Store{s: s}
}

// Has reports whether a blob with the given hash is present.
func (s *Store) Has(ctx context.Context, hash statekit.Hash) (bool, error) {
	ok, err := s.s.Has(ctx, hash)
	if err != nil {
		log.Printf("ERROR Has %s: %s", hash, err)
	} else {
		log.Printf("Has %s: %v", hash, ok)
	}
	return ok, err
}

// Get returns the blob stored under hash.
func (s *Store) Get(ctx context.Context, hash statekit.Hash) ([]byte, error) {
	b, err := s.s.Get(ctx, hash)
	if err != nil {
		log.Printf("ERROR Get %s: %s", hash, err)
	} else {
		log.Printf("Get %s (%d bytes)", hash, len(b))
	}
	return b, err
}

// Size returns the byte length of the blob stored under hash.
func (s *Store) Size(ctx context.Context, hash statekit.Hash) (int64, error) {
	n, err := s.s.Size(ctx, hash)
	if err != nil {
		log.Printf("ERROR Size %s: %s", hash, err)
	} else {
		log.Printf("Size %s: %d", hash, n)
	}
	return n, err
}

// Put stores b under hash.
func (s *Store) Put(ctx context.Context, hash statekit.Hash, b []byte) error {
	err := s.s.Put(ctx, hash, b)
	if err != nil {
		log.Printf("ERROR Put %s (%d bytes): %s", hash, len(b), err)
	} else {
		log.Printf("Put %s (%d bytes)", hash, len(b))
	}
	return err
}
