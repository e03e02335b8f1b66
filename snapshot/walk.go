package snapshot

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// Entry is one item found while walking a directory tree.
type Entry struct {
	// RelPath is the entry's path relative to the walk root, using forward
	// slashes.
	RelPath string
	// Info is the entry's lstat result: symlinks are reported as symlinks,
	// never followed.
	Info fs.FileInfo
}

// Walk recursively traverses root and returns every entry — files,
// directories, and symlinks — sorted lexicographically by RelPath. Symlinks
// are never followed. Hidden entries are included. root itself is not
// included as an entry.
func Walk(root string) ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Wrapf(err, "computing relative path for %s", path)
		}
		rel = filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return errors.Wrapf(err, "statting %s", path)
		}

		entries = append(entries, Entry{RelPath: rel, Info: info})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", root)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].RelPath < entries[j].RelPath })
	return entries, nil
}

// ensureDir creates dir (and its parents) if it does not already exist.
func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
