package statekit

import (
	canonicaljson "github.com/gibson042/canonicaljson-go"
	"github.com/pkg/errors"
)

// cacheKeyDoc is the exact shape hashed to derive a CacheKey: an object with
// the two fields "instruction" and "parent", in that order, and no others.
// canonicaljson-go sorts object members by key, and "instruction" sorts
// before "parent", so the canonical encoding already matches the required
// field order without any special-casing.
type cacheKeyDoc struct {
	Instruction string `json:"instruction"`
	Parent      *Hash  `json:"parent"`
}

// CacheKey computes the lookup key for a memoized instruction: the SHA-256
// of the canonical JSON encoding of {instruction, parent}. parent is nil for
// a root lookup (no preceding layer).
func CacheKey(instruction string, parent *Hash) (Hash, error) {
	doc := cacheKeyDoc{Instruction: instruction, Parent: parent}
	b, err := canonicaljson.Marshal(doc)
	if err != nil {
		return Zero, errors.Wrap(err, "encoding cache key document")
	}
	return Sum(b), nil
}
