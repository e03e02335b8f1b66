package lrustore

import (
	"context"
	"testing"

	"github.com/statekit/statekit"
	"github.com/statekit/statekit/blobstore/memstore"
	"github.com/statekit/statekit/statekittest"
)

func TestStore(t *testing.T) {
	s, err := New(memstore.New(), 16)
	if err != nil {
		t.Fatal(err)
	}
	statekittest.BlobStore(context.Background(), t, s)
}

func TestCacheServesWithoutNestedRead(t *testing.T) {
	nested := memstore.New()
	s, err := New(nested, 16)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	data := []byte("cached payload")
	hash := statekit.Sum(data)
	if err := s.Put(ctx, hash, data); err != nil {
		t.Fatal(err)
	}

	// Swap in an empty nested store: a read that reached it would fail
	// with ErrNotFound, so a successful Get must come from the cache.
	s.s = memstore.New()

	got, err := s.Get(ctx, hash)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(data) {
		t.Fatalf("got %q, want %q", got, data)
	}
}
