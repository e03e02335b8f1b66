// Package snapshot walks a working directory, fingerprints its state, and
// packs or unpacks the per-layer tar delta that the engine stores as a
// layer's blob.
package snapshot

import (
	"context"
	"os"

	canonicaljson "github.com/gibson042/canonicaljson-go"
	"github.com/pkg/errors"

	"github.com/statekit/statekit"
	"github.com/statekit/statekit/blobstore"
)

// Result is what Capture or Diff produces: either a new layer's identity
// and archive bytes, or an indication that nothing changed.
type Result struct {
	Hash    statekit.Hash
	Archive []byte
	Changed bool
}

// Capture produces the root layer: a tar of the entire working directory,
// sorted by path. If workdir is empty, Capture reports Changed=false — no
// layer is created for an empty root.
func Capture(workdir string) (Result, error) {
	st, err := ComputeState(workdir)
	if err != nil {
		return Result{}, err
	}
	if st.Len() == 0 {
		return Result{Changed: false}, nil
	}

	archive, err := pack(workdir, st.Order)
	if err != nil {
		return Result{}, errors.Wrap(err, "packing root archive")
	}
	return Result{Hash: statekit.Sum(archive), Archive: archive, Changed: true}, nil
}

// Diff computes the delta between workdir's current state and the state of
// parentChain's last layer (the parent being diffed against). parentChain
// is the ancestry from the root layer up to and including the parent,
// needed to reconstruct the parent's filesystem state without touching
// workdir.
//
// If nothing changed — no added/modified files and no deletions — Diff
// reports Changed=false and no layer should be recorded.
func Diff(ctx context.Context, workdir string, parentChain []statekit.Layer, blobs blobstore.Getter) (Result, error) {
	current, err := ComputeState(workdir)
	if err != nil {
		return Result{}, err
	}
	base, err := reconstructState(ctx, parentChain, blobs)
	if err != nil {
		return Result{}, errors.Wrap(err, "reconstructing parent state")
	}

	var changed []string
	for _, rel := range current.Order {
		curFP, _ := current.Get(rel)
		baseFP, ok := base.Get(rel)
		if !ok || !curFP.Equal(baseFP) {
			changed = append(changed, rel)
		}
	}

	var deleted []string
	for _, rel := range base.Order {
		if _, ok := current.Get(rel); !ok {
			deleted = append(deleted, rel)
		}
	}

	if len(changed) == 0 && len(deleted) == 0 {
		return Result{Changed: false}, nil
	}

	archive, err := pack(workdir, changed)
	if err != nil {
		return Result{}, errors.Wrap(err, "packing delta archive")
	}

	deletedJSON, err := canonicaljson.Marshal(deleted)
	if err != nil {
		return Result{}, errors.Wrap(err, "encoding deleted-file list")
	}

	hashed := append(append([]byte{}, archive...), deletedJSON...)
	return Result{Hash: statekit.Sum(hashed), Archive: archive, Changed: true}, nil
}

// RestoreOne extracts a single layer's archive into workdir. A layer with
// an empty archive (nothing changed, or a deletions-only layer whose
// identity is hashed from its deleted-file list alone — see pack) has no
// blob in the store at all, and is a no-op. RestoreOne never removes
// files: deletions recorded in a non-root layer's hash are not persisted in
// its blob, so they cannot be replayed from that layer.
func RestoreOne(ctx context.Context, workdir string, layer statekit.Layer, blobs blobstore.Getter) error {
	archive, err := blobs.Get(ctx, layer.Hash)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil
		}
		return errors.Wrapf(err, "fetching blob for layer %s", layer.Hash)
	}
	if err := ensureDir(workdir); err != nil {
		return err
	}
	return unpack(workdir, archive)
}

// Rebuild deletes workdir and recreates it by replaying chain — the root
// layer followed by each descendant's delta, in order. Files added or
// modified along the chain end up as chain's last layer left them. Files
// that a later layer deleted are not removed: each layer's blob holds only
// its added and modified files, so a file packed by an earlier layer is
// restored by Rebuild even if a later layer deleted it.
func Rebuild(ctx context.Context, workdir string, chain []statekit.Layer, blobs blobstore.Getter) error {
	if err := os.RemoveAll(workdir); err != nil {
		return errors.Wrapf(err, "removing %s", workdir)
	}
	if err := ensureDir(workdir); err != nil {
		return err
	}
	for _, layer := range chain {
		if err := RestoreOne(ctx, workdir, layer, blobs); err != nil {
			return err
		}
	}
	return nil
}

// StateForChain materializes chain (root to the hash of interest) into a
// scratch directory and fingerprints the result, without touching the
// caller's working directory. A nil or empty chain yields the empty state.
// Used by callers that need the state at an arbitrary point in history,
// such as status and diff comparisons.
func StateForChain(ctx context.Context, chain []statekit.Layer, blobs blobstore.Getter) (*State, error) {
	return reconstructState(ctx, chain, blobs)
}

// reconstructState materializes chain into a scratch directory and
// fingerprints the result, without touching the caller's working
// directory. The scratch directory is always removed, success or failure.
func reconstructState(ctx context.Context, chain []statekit.Layer, blobs blobstore.Getter) (*State, error) {
	scratch, err := os.MkdirTemp("", "statekit-state-")
	if err != nil {
		return nil, errors.Wrap(err, "creating scratch directory")
	}
	defer os.RemoveAll(scratch)

	if err := Rebuild(ctx, scratch, chain, blobs); err != nil {
		return nil, err
	}
	return ComputeState(scratch)
}
