// Package statekittest holds test helpers shared across the module's
// packages, in the spirit of the upstream testutil package this module grew
// from: small, reusable assertions run against every backend of an
// interface rather than duplicated per implementation.
package statekittest

import (
	"bytes"
	"context"
	"testing"
	"testing/quick"

	"github.com/statekit/statekit"
	"github.com/statekit/statekit/blobstore"
)

// BlobStore exercises the basic contract of a blobstore.Store: absence,
// write, presence, idempotent rewrite, and size reporting.
func BlobStore(ctx context.Context, t *testing.T, s blobstore.Store) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	hash := statekit.Sum(data)

	ok, err := s.Has(ctx, hash)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("Has reported true before Put")
	}

	if _, err := s.Get(ctx, hash); err != blobstore.ErrNotFound {
		t.Fatalf("Get before Put: got err %v, want ErrNotFound", err)
	}

	if err := s.Put(ctx, hash, data); err != nil {
		t.Fatal(err)
	}

	// Put again with the same bytes must be a no-op in effect.
	if err := s.Put(ctx, hash, data); err != nil {
		t.Fatal(err)
	}

	ok, err = s.Has(ctx, hash)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("Has reported false after Put")
	}

	got, err := s.Get(ctx, hash)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("got %q, want %q", got, data)
	}

	size, err := s.Size(ctx, hash)
	if err != nil {
		t.Fatal(err)
	}
	if size != int64(len(data)) {
		t.Fatalf("got size %d, want %d", size, len(data))
	}
}

// BlobStoreProperty runs a randomized round-trip check against s: any blob
// put into the store comes back byte-identical under its own hash.
func BlobStoreProperty(ctx context.Context, t *testing.T, s blobstore.Store) {
	f := func(data []byte) bool {
		hash := statekit.Sum(data)
		if err := s.Put(ctx, hash, data); err != nil {
			t.Logf("Put: %s", err)
			return false
		}
		got, err := s.Get(ctx, hash)
		if err != nil {
			t.Logf("Get: %s", err)
			return false
		}
		return bytes.Equal(got, data)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}
