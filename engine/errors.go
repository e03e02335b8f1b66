package engine

import "github.com/statekit/statekit"

// LayerNotOnChain is returned by Checkout when ref resolves to a hash that
// is not in the current head's ancestry.
type LayerNotOnChain struct {
	Hash statekit.Hash
}

func (e *LayerNotOnChain) Error() string {
	return "layer " + e.Hash.Short() + " is not on the current chain"
}

// NothingToTag is returned by Tag when no ref is given and the store has
// no head yet.
type NothingToTag struct{}

func (e *NothingToTag) Error() string {
	return "nothing to tag: store has no head"
}
