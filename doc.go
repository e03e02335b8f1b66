// Package statekit implements persistent, content-addressed compute.
//
// A caller issues shell instructions against a working directory,
// and each instruction's effect on the filesystem is captured as an
// immutable, hash-identified layer.
// A linear chain of such layers forms the history of a working directory.
// Re-issuing the same instruction from the same parent state is a pure
// cache hit: no subprocess runs, the stored effect is simply replayed.
//
// This package holds the domain types shared by the rest of the module —
// Hash, Layer, and the cache key derivation — and a small amount of glue.
// The interesting work happens in the subpackages:
//
//   - blobstore stores the raw archive bytes of each layer, keyed by hash.
//   - index stores the catalog of layers, the head pointer, and tags.
//   - snapshot walks a working directory, fingerprints it, and packs or
//     unpacks the tar archive that makes up a layer's payload.
//   - runner executes an instruction as a subprocess.
//   - engine ties all of the above together into run/exec/checkout/rebuild.
//
// Hashing throughout is SHA-256, written as 64 lowercase hex characters.
// The "short" form used for display is the first 12 of those characters.
package statekit
