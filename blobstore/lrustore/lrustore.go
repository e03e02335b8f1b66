// Package lrustore implements a blob store that caches reads from a nested
// blob store in a bounded least-recently-used cache.
package lrustore

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/statekit/statekit"
	"github.com/statekit/statekit/blobstore"
	"github.com/statekit/statekit/blobstore/registry"
)

var _ blobstore.Store = &Store{}

// Store wraps a nested blobstore.Store, caching up to size recently-read
// blobs in memory. Writes pass through to the nested store and are also
// added to the cache, since a freshly-written layer is the one most likely
// to be read again immediately (checkout, inspect).
type Store struct {
	c *lru.Cache // statekit.Hash -> []byte
	s blobstore.Store
}

// New produces a new Store backed by s, caching up to size blobs.
func New(s blobstore.Store, size int) (*Store, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "creating lru cache")
	}
	return &Store{s: s, c: c}, nil
}

// Has reports whether a blob with the given hash is present.
func (s *Store) Has(ctx context.Context, hash statekit.Hash) (bool, error) {
	if s.c.Contains(hash) {
		return true, nil
	}
	return s.s.Has(ctx, hash)
}

// Get returns the blob stored under hash, populating the cache on a miss.
func (s *Store) Get(ctx context.Context, hash statekit.Hash) ([]byte, error) {
	if cached, ok := s.c.Get(hash); ok {
		return cached.([]byte), nil
	}
	b, err := s.s.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	s.c.Add(hash, b)
	return b, nil
}

// Size returns the byte length of the blob stored under hash.
func (s *Store) Size(ctx context.Context, hash statekit.Hash) (int64, error) {
	if cached, ok := s.c.Get(hash); ok {
		return int64(len(cached.([]byte))), nil
	}
	return s.s.Size(ctx, hash)
}

// Put stores b under hash in the nested store and primes the cache with it.
func (s *Store) Put(ctx context.Context, hash statekit.Hash, b []byte) error {
	if err := s.s.Put(ctx, hash, b); err != nil {
		return err
	}
	s.c.Add(hash, b)
	return nil
}

func init() {
	registry.Register("lru", func(ctx context.Context, conf map[string]interface{}) (blobstore.Store, error) {
		// A config map built in code may carry an int; one decoded from a
		// JSON file carries a float64.
		var size int
		switch v := conf["size"].(type) {
		case int:
			size = v
		case float64:
			size = int(v)
		default:
			return nil, errors.New(`missing "size" parameter`)
		}
		nested, ok := conf["nested"].(map[string]interface{})
		if !ok {
			return nil, errors.New(`missing "nested" parameter`)
		}
		nestedType, ok := nested["type"].(string)
		if !ok {
			return nil, errors.New(`"nested" parameter missing "type"`)
		}
		nestedStore, err := registry.Create(ctx, nestedType, nested)
		if err != nil {
			return nil, errors.Wrap(err, "creating nested store")
		}
		return New(nestedStore, size)
	})
}
