package snapshot

import (
	"io/fs"

	"github.com/statekit/statekit"
)

// Kind tags the variant a Fingerprint holds, replacing the polymorphic
// string value ("dir", "link:target", or a hex hash) the identity check was
// originally built around.
type Kind int

const (
	// KindFile marks a regular file; Fingerprint.Hash is meaningful.
	KindFile Kind = iota
	// KindDir marks a directory.
	KindDir
	// KindSymlink marks a symbolic link; Fingerprint.Target is meaningful.
	KindSymlink
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Fingerprint is the per-path record used during diffing: a tagged variant
// over what a path in the working directory currently is, plus its POSIX
// permission bits.
type Fingerprint struct {
	Kind Kind

	// Hash is the SHA-256 of a regular file's contents. Valid when Kind is
	// KindFile.
	Hash statekit.Hash

	// Target is a symlink's target. Valid when Kind is KindSymlink.
	Target string

	// Mode holds the POSIX permission bits (the low 9 bits of the mode).
	// It is recorded only; it takes no part in comparing identity, and
	// unpack takes modes from the archive's headers, not from here.
	Mode fs.FileMode
}

// identity returns the content-identity key the original polymorphic value
// represented: "dir", "link:"+target, or the file's hash. Two fingerprints
// with equal identity are considered the same content for diffing purposes,
// regardless of any difference in Mode — mode-only changes are not surfaced
// by Diff, matching the source's Diff definition (FileFingerprint.hash
// equality only).
func (f Fingerprint) identity() string {
	switch f.Kind {
	case KindDir:
		return "dir"
	case KindSymlink:
		return "link:" + f.Target
	default:
		return "file:" + f.Hash.String()
	}
}

// Equal reports whether f and other have the same content identity.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.identity() == other.identity()
}
