// Package fsstore implements blobstore.Store as a flat directory of files,
// one per hash, per the core's external on-disk layout (blobs/<hash>).
package fsstore

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/statekit/statekit"
	"github.com/statekit/statekit/blobstore"
	"github.com/statekit/statekit/blobstore/registry"
)

var _ blobstore.Store = &Store{}

// Store stores blobs as files directly beneath root, one file per hash,
// named with the full hex hash. There is no sharding: the core's on-disk
// layout names exactly "blobs/<hash>".
type Store struct {
	root string
}

// New produces a new Store storing blobs beneath root. root is created
// lazily on the first Put.
func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) path(hash statekit.Hash) string {
	return filepath.Join(s.root, hash.String())
}

// Has reports whether a blob with the given hash is present.
func (s *Store) Has(_ context.Context, hash statekit.Hash) (bool, error) {
	_, err := os.Stat(s.path(hash))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "statting %s", s.path(hash))
	}
	return true, nil
}

// Get returns the blob stored under hash.
func (s *Store) Get(_ context.Context, hash statekit.Hash) ([]byte, error) {
	path := s.path(hash)
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, blobstore.ErrNotFound
	}
	return b, errors.Wrapf(err, "reading %s", path)
}

// Size returns the byte length of the blob stored under hash.
func (s *Store) Size(_ context.Context, hash statekit.Hash) (int64, error) {
	info, err := os.Stat(s.path(hash))
	if os.IsNotExist(err) {
		return 0, blobstore.ErrNotFound
	}
	if err != nil {
		return 0, errors.Wrapf(err, "statting %s", s.path(hash))
	}
	return info.Size(), nil
}

// Put writes b to disk under hash, atomically (write to a temp file in the
// same directory, then rename). Put is idempotent: if a blob already
// exists under hash, Put is a no-op.
func (s *Store) Put(_ context.Context, hash statekit.Hash, b []byte) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return errors.Wrapf(err, "ensuring %s exists", s.root)
	}

	path := s.path(hash)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-"+hash.String()+"-")
	if err != nil {
		return errors.Wrapf(err, "creating temp file in %s", s.root)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "writing %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "closing %s", tmpName)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		if _, statErr := os.Stat(path); statErr == nil {
			// Another Put for the same hash won the race; that's fine,
			// Put is idempotent.
			return nil
		}
		return errors.Wrapf(err, "renaming %s to %s", tmpName, path)
	}
	return nil
}

func init() {
	registry.Register("fs", func(_ context.Context, conf map[string]interface{}) (blobstore.Store, error) {
		root, ok := conf["root"].(string)
		if !ok {
			return nil, errors.New(`missing "root" parameter`)
		}
		return New(root), nil
	})
}
