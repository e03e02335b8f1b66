package snapshot

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// pack builds a portable, uncompressed USTAR archive of the given relative
// paths, read from beneath root, in the order given. Directories,
// regular files, and symlinks are supported; mtimes are zeroed for hash
// stability across reruns.
// An empty paths yields an empty archive, not an empty-but-well-formed tar
// stream: spec.md §4.3 step 5 defines the archive as the empty byte string
// when nothing changed, and step 6 hashes that string directly against the
// deleted-list JSON. A tar writer's own end-of-archive padding would give a
// deletions-only layer a different, non-empty identity than the spec
// requires.
func pack(root string, paths []string) ([]byte, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	buf := new(bytes.Buffer)
	tw := tar.NewWriter(buf)

	for _, rel := range paths {
		full := filepath.Join(root, rel)
		info, err := os.Lstat(full)
		if err != nil {
			return nil, errors.Wrapf(err, "statting %s", full)
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return nil, errors.Wrapf(err, "building tar header for %s", full)
		}
		hdr.Name = rel
		hdr.ModTime = time0
		hdr.AccessTime = time0
		hdr.ChangeTime = time0
		hdr.Uid, hdr.Gid = 0, 0
		hdr.Uname, hdr.Gname = "", ""

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(full)
			if err != nil {
				return nil, errors.Wrapf(err, "reading symlink %s", full)
			}
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = target
			hdr.Size = 0
			if err := tw.WriteHeader(hdr); err != nil {
				return nil, errors.Wrapf(err, "writing tar header for %s", rel)
			}

		case info.IsDir():
			hdr.Typeflag = tar.TypeDir
			if !strings.HasSuffix(hdr.Name, "/") {
				hdr.Name += "/"
			}
			hdr.Size = 0
			if err := tw.WriteHeader(hdr); err != nil {
				return nil, errors.Wrapf(err, "writing tar header for %s", rel)
			}

		case info.Mode().IsRegular():
			hdr.Typeflag = tar.TypeReg
			if err := tw.WriteHeader(hdr); err != nil {
				return nil, errors.Wrapf(err, "writing tar header for %s", rel)
			}
			f, err := os.Open(full)
			if err != nil {
				return nil, errors.Wrapf(err, "opening %s", full)
			}
			_, err = io.Copy(tw, f)
			f.Close()
			if err != nil {
				return nil, errors.Wrapf(err, "writing %s to archive", rel)
			}

		default:
			// Device/FIFO nodes and other non-portable entry types are skipped.
		}
	}

	if err := tw.Close(); err != nil {
		return nil, errors.Wrap(err, "closing tar writer")
	}
	return buf.Bytes(), nil
}

// time0 is the zero time used to normalize every tar header's timestamps,
// so identical content always produces byte-identical archives regardless
// of when it was captured.
var time0 time.Time

// unpack extracts a portable tar archive into destRoot. Member names must
// be relative and must not escape destRoot; absolute paths or names
// containing ".." are rejected. An empty archive is a no-op.
func unpack(destRoot string, archive []byte) error {
	if len(archive) == 0 {
		return nil
	}

	tr := tar.NewReader(bytes.NewReader(archive))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading tar header")
		}

		target, err := safeJoin(destRoot, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrapf(err, "creating directory %s", target)
			}

		case tar.TypeSymlink:
			if err := ensureDir(filepath.Dir(target)); err != nil {
				return err
			}
			os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return errors.Wrapf(err, "creating symlink %s", target)
			}

		case tar.TypeReg:
			if err := ensureDir(filepath.Dir(target)); err != nil {
				return err
			}
			mode := os.FileMode(hdr.Mode).Perm()
			f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
			if err != nil {
				return errors.Wrapf(err, "creating %s", target)
			}
			_, err = io.Copy(f, tr)
			f.Close()
			if err != nil {
				return errors.Wrapf(err, "writing %s", target)
			}

		default:
			// Device/FIFO/other non-portable entries are skipped on extraction.
		}
	}
}

// safeJoin joins root and name, refusing to produce a path outside root.
func safeJoin(root, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", errors.Errorf("refusing absolute tar member name %q", name)
	}
	clean := filepath.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, string(filepath.Separator)+"..") {
		return "", errors.Errorf("refusing path-traversing tar member name %q", name)
	}
	joined := filepath.Join(root, clean)
	if !strings.HasPrefix(joined, filepath.Clean(root)+string(filepath.Separator)) && joined != filepath.Clean(root) {
		return "", errors.Errorf("refusing tar member name %q escaping root", name)
	}
	return joined, nil
}
