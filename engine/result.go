package engine

import "github.com/statekit/statekit"

// ResultKind tags the variant a RunResult holds, replacing the source's
// untyped run result with an explicit Created/Cached/Empty record.
type ResultKind int

const (
	// Created means a new layer was recorded; Hash is its hash.
	Created ResultKind = iota
	// Cached means a prior layer satisfied the cache key; head was not
	// advanced, but workdir now matches that layer's content.
	Cached
	// Empty means the instruction ran but produced no filesystem change;
	// no layer was recorded and head is unchanged.
	Empty
)

func (k ResultKind) String() string {
	switch k {
	case Created:
		return "created"
	case Cached:
		return "cached"
	case Empty:
		return "empty"
	default:
		return "unknown"
	}
}

// RunResult is the outcome of Run: which of the three cases occurred, and
// the relevant hash (the new layer's hash, the cache hit's hash, or the
// unchanged head).
type RunResult struct {
	Kind ResultKind
	Hash statekit.Hash
}
