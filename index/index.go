// Package index stores the catalog of layers, the head pointer, and tags,
// as the single JSON document index.json beneath a store's state directory.
package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/statekit/statekit"
)

const fileName = "index.json"

// document is the on-disk shape of index.json.
type document struct {
	Head   *statekit.Hash          `json:"head"`
	Layers []statekit.Layer        `json:"layers"`
	Tags   map[string]statekit.Hash `json:"tags"`
}

// Index is the persistent catalog of layers for one store. It is not safe
// for concurrent use by multiple processes: the store is single-writer, and
// the last Save wins.
type Index struct {
	path string
	doc  document
}

// Open loads the index document from dir/index.json, or starts a fresh,
// empty index if the file does not yet exist.
func Open(dir string) (*Index, error) {
	idx := &Index{
		path: filepath.Join(dir, fileName),
		doc:  document{Tags: make(map[string]statekit.Hash)},
	}

	b, err := os.ReadFile(idx.path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", idx.path)
	}

	if err := json.Unmarshal(b, &idx.doc); err != nil {
		return nil, &ErrCorruptIndex{Path: idx.path, Cause: err}
	}
	if idx.doc.Tags == nil {
		idx.doc.Tags = make(map[string]statekit.Hash)
	}
	return idx, nil
}

// save writes the index document atomically: to a temp file in the same
// directory, fsynced, then renamed over index.json.
func (idx *Index) save() error {
	dir := filepath.Dir(idx.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "ensuring %s exists", dir)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+fileName+"-")
	if err != nil {
		return errors.Wrapf(err, "creating temp file in %s", dir)
	}
	tmpName := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(idx.doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "encoding index document")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "syncing index temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "closing index temp file")
	}
	if err := os.Rename(tmpName, idx.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "renaming %s to %s", tmpName, idx.path)
	}
	return nil
}

// Head returns the current head hash, or nil if the store is empty.
func (idx *Index) Head() *statekit.Hash {
	return idx.doc.Head
}

// Layers returns every recorded layer, in append order (not chain order).
func (idx *Index) Layers() []statekit.Layer {
	out := make([]statekit.Layer, len(idx.doc.Layers))
	copy(out, idx.doc.Layers)
	return out
}

// Append adds layer to the catalog and advances head to it. The write is
// persisted before Append returns.
func (idx *Index) Append(layer statekit.Layer) error {
	idx.doc.Layers = append(idx.doc.Layers, layer)
	h := layer.Hash
	idx.doc.Head = &h
	return idx.save()
}

// SetHead moves head to hash without otherwise touching the catalog.
func (idx *Index) SetHead(hash statekit.Hash) error {
	h := hash
	idx.doc.Head = &h
	return idx.save()
}

// FindByCacheKey returns the first recorded layer matching
// (instruction, parent), or nil if none matches. Two layers sharing an
// (instruction, parent) pair are findable only by this first-stored-wins
// rule, matching statekit.CacheKey equality without needing to recompute
// the hash for every stored layer.
func (idx *Index) FindByCacheKey(instruction string, parent *statekit.Hash) *statekit.Layer {
	for i := range idx.doc.Layers {
		l := &idx.doc.Layers[i]
		if l.Instruction != instruction {
			continue
		}
		if !hashPtrsEqual(l.Parent, parent) {
			continue
		}
		return l
	}
	return nil
}

func hashPtrsEqual(a, b *statekit.Hash) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Ancestry follows parent pointers back from head to the root and returns
// them in root-to-head order. If head or any parent on the way is missing
// from the catalog, no root is reachable, and Ancestry silently returns an
// empty chain rather than one starting at a layer whose parent is unknown.
func (idx *Index) Ancestry() []statekit.Layer {
	if idx.doc.Head == nil {
		return nil
	}

	byHash := make(map[statekit.Hash]*statekit.Layer, len(idx.doc.Layers))
	for i := range idx.doc.Layers {
		byHash[idx.doc.Layers[i].Hash] = &idx.doc.Layers[i]
	}

	var chain []statekit.Layer
	cur := idx.doc.Head
	for cur != nil {
		l, ok := byHash[*cur]
		if !ok {
			return nil
		}
		chain = append(chain, *l)
		cur = l.Parent
	}

	// chain is head-to-root; reverse it.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Resolve turns a user-supplied ref into a concrete hash. Resolution order:
// a tag name, then a unique hash prefix (any length ≥ 1; more than one
// match is reported as ambiguous), then an exact
// hash. ErrUnresolvedRef is returned if none match.
func (idx *Index) Resolve(ref string) (statekit.Hash, error) {
	if ref == "" {
		return statekit.Zero, &ErrUnresolvedRef{Ref: ref}
	}

	if hash, ok := idx.doc.Tags[ref]; ok {
		return hash, nil
	}

	lowered := strings.ToLower(ref)
	var matches []statekit.Hash
	for _, l := range idx.doc.Layers {
		if strings.HasPrefix(l.Hash.String(), lowered) {
			matches = append(matches, l.Hash)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		// fall through to exact-hash check below
	default:
		return statekit.Zero, &ErrUnresolvedRef{Ref: ref}
	}

	if hash, err := statekit.HashFromHex(lowered); err == nil {
		for _, l := range idx.doc.Layers {
			if l.Hash == hash {
				return hash, nil
			}
		}
	}

	return statekit.Zero, &ErrUnresolvedRef{Ref: ref}
}

// SetTag creates or replaces the tag name to point at hash.
func (idx *Index) SetTag(name string, hash statekit.Hash) error {
	idx.doc.Tags[name] = hash
	return idx.save()
}

// Tags returns the current name→hash mapping, sorted by name.
func (idx *Index) Tags() []Tag {
	out := make([]Tag, 0, len(idx.doc.Tags))
	for name, hash := range idx.doc.Tags {
		out = append(out, Tag{Name: name, Hash: hash})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Tag is one entry of Tags: a name and the hash it currently points to.
type Tag struct {
	Name string
	Hash statekit.Hash
}
