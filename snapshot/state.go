package snapshot

import (
	"crypto/sha256"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/statekit/statekit"
)

// State is a working-directory fingerprint: every relative path mapped to
// its Fingerprint, plus the sorted order paths were discovered in (the
// order Diff uses when it needs a deterministic iteration order, e.g. for
// the deleted-file list).
type State struct {
	Order  []string
	byPath map[string]Fingerprint
	stat   Stat
}

// Stat is a summary of a State's contents: how many entries of each kind
// it holds, and the total byte size of its regular files.
type Stat struct {
	Files    int
	Dirs     int
	Symlinks int
	Bytes    int64
}

// newState builds an empty, ready-to-populate State.
func newState() *State {
	return &State{byPath: make(map[string]Fingerprint)}
}

// Get returns the Fingerprint recorded for path, if any.
func (s *State) Get(path string) (Fingerprint, bool) {
	fp, ok := s.byPath[path]
	return fp, ok
}

func (s *State) set(path string, fp Fingerprint, size int64) {
	if _, ok := s.byPath[path]; !ok {
		s.Order = append(s.Order, path)
	}
	s.byPath[path] = fp

	switch fp.Kind {
	case KindFile:
		s.stat.Files++
		s.stat.Bytes += size
	case KindDir:
		s.stat.Dirs++
	case KindSymlink:
		s.stat.Symlinks++
	}
}

// Len reports the number of paths in the state.
func (s *State) Len() int {
	return len(s.byPath)
}

// Stat summarizes the state's contents.
func (s *State) Stat() Stat {
	return s.stat
}

// ComputeState walks root and fingerprints every entry found.
func ComputeState(root string) (*State, error) {
	entries, err := Walk(root)
	if err != nil {
		return nil, err
	}

	st := newState()
	for _, e := range entries {
		fp, err := fingerprint(root, e)
		if err != nil {
			return nil, errors.Wrapf(err, "fingerprinting %s", e.RelPath)
		}
		st.set(e.RelPath, fp, e.Info.Size())
	}
	return st, nil
}

func fingerprint(root string, e Entry) (Fingerprint, error) {
	mode := e.Info.Mode()
	full := filepath.Join(root, e.RelPath)

	switch {
	case mode&os.ModeSymlink != 0:
		target, err := os.Readlink(full)
		if err != nil {
			return Fingerprint{}, errors.Wrapf(err, "reading symlink %s", full)
		}
		return Fingerprint{Kind: KindSymlink, Target: target, Mode: mode.Perm()}, nil

	case mode.IsDir():
		return Fingerprint{Kind: KindDir, Mode: mode.Perm()}, nil

	default:
		hash, err := hashFile(full)
		if err != nil {
			return Fingerprint{}, err
		}
		return Fingerprint{Kind: KindFile, Hash: hash, Mode: mode.Perm()}, nil
	}
}

func hashFile(path string) (statekit.Hash, error) {
	f, err := os.Open(path)
	if err != nil {
		return statekit.Zero, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return statekit.Zero, errors.Wrapf(err, "hashing %s", path)
	}
	return statekit.HashFromBytes(h.Sum(nil)), nil
}
