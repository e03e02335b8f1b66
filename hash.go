package statekit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"
)

// ShortLen is the number of hex characters used in a Hash's short form.
const ShortLen = 12

// Hash is the SHA-256 hash of a layer's archive payload.
// It is the identity of a Layer and the key under which its blob is stored.
type Hash [sha256.Size]byte

// Zero is the zero value of a Hash. No real layer hashes to it.
var Zero Hash

// Sum computes the Hash of b.
func Sum(b []byte) Hash {
	return sha256.Sum256(b)
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == Zero
}

// String renders h as 64 lowercase hex characters.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short renders the first ShortLen hex characters of h.
func (h Hash) Short() string {
	return h.String()[:ShortLen]
}

// Less orders hashes byte-wise, for deterministic sorting.
func (h Hash) Less(other Hash) bool {
	return bytes.Compare(h[:], other[:]) < 0
}

// MarshalJSON renders h as a JSON string.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON parses h from a JSON string.
func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := HashFromHex(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// HashFromHex parses a 64-character lowercase hex string into a Hash.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	if len(s) != 2*sha256.Size {
		return h, errors.Errorf("wrong length for hash %q: got %d, want %d", s, len(s), 2*sha256.Size)
	}
	_, err := hex.Decode(h[:], []byte(s))
	return h, errors.Wrapf(err, "decoding hash %q", s)
}

// HashFromBytes copies the first sha256.Size bytes of b into a Hash.
func HashFromBytes(b []byte) Hash {
	var h Hash
	copy(h[:], b)
	return h
}
