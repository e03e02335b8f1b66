// Package engine orchestrates a store's lifecycle: running instructions,
// recording the layers they produce, and moving between points in history.
// It is the one component that knows about all of BlobStore, Index,
// Snapshotter, and Runner together.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/statekit/statekit"
	"github.com/statekit/statekit/blobstore"
	"github.com/statekit/statekit/blobstore/fsstore"
	"github.com/statekit/statekit/index"
	"github.com/statekit/statekit/runner"
	"github.com/statekit/statekit/snapshot"
)

// DefaultStateDir is the state directory used when Config.StateDir is
// empty.
const DefaultStateDir = ".statekit"

// blobsSubdir is where a default fsstore keeps blob files beneath
// Config.StateDir.
const blobsSubdir = "blobs"

// Config selects where an Engine keeps its persistent state and the
// directory instructions run in. Both are resolved to absolute paths at
// construction.
type Config struct {
	StateDir string
	Workdir  string
}

// resolve fills in defaults and makes both paths absolute.
func (c Config) resolve() (Config, error) {
	if c.StateDir == "" {
		c.StateDir = DefaultStateDir
	}
	stateDir, err := filepath.Abs(c.StateDir)
	if err != nil {
		return Config{}, errors.Wrapf(err, "resolving state dir %q", c.StateDir)
	}
	c.StateDir = stateDir

	if c.Workdir == "" {
		c.Workdir = filepath.Join(stateDir, "work")
	}
	workdir, err := filepath.Abs(c.Workdir)
	if err != nil {
		return Config{}, errors.Wrapf(err, "resolving workdir %q", c.Workdir)
	}
	c.Workdir = workdir
	return c, nil
}

// Engine ties the BlobStore, Index, Snapshotter, and Runner together and
// exposes the store's operations.
type Engine struct {
	cfg   Config
	idx   *index.Index
	blobs blobstore.Store
	run   runner.Runner
}

// New constructs an Engine, creating StateDir and Workdir if absent and
// loading (or starting) the index beneath StateDir. A nil blobs defaults to
// an fsstore rooted at StateDir/blobs; a nil run defaults to ExecRunner.
func New(cfg Config, blobs blobstore.Store, run runner.Runner) (*Engine, error) {
	cfg, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating state dir %s", cfg.StateDir)
	}
	if err := os.MkdirAll(cfg.Workdir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating workdir %s", cfg.Workdir)
	}

	idx, err := index.Open(cfg.StateDir)
	if err != nil {
		return nil, err
	}

	if blobs == nil {
		blobs = fsstore.New(filepath.Join(cfg.StateDir, blobsSubdir))
	}
	if run == nil {
		run = runner.NewExecRunner()
	}

	return &Engine{cfg: cfg, idx: idx, blobs: blobs, run: run}, nil
}

// StateDir returns the engine's resolved state directory.
func (e *Engine) StateDir() string { return e.cfg.StateDir }

// Workdir returns the engine's resolved working directory.
func (e *Engine) Workdir() string { return e.cfg.Workdir }

// Run executes instruction and records the resulting layer.
//
// A cache hit (a layer already recorded under the same instruction and
// parent) is materialized into the workdir and returned as Cached, but
// does not move head: the logical head remains whatever it was before the
// call, even though the workdir content now matches the hit layer. Source
// behavior, preserved intentionally — see "Cache hit does not move head"
// under the open-question decisions in DESIGN.md.
func (e *Engine) Run(ctx context.Context, instruction string) (RunResult, error) {
	parent := e.idx.Head()

	if hit := e.idx.FindByCacheKey(instruction, parent); hit != nil {
		if err := snapshot.RestoreOne(ctx, e.cfg.Workdir, *hit, e.blobs); err != nil {
			return RunResult{}, err
		}
		return RunResult{Kind: Cached, Hash: hit.Hash}, nil
	}

	if err := e.run.Run(ctx, e.cfg.Workdir, instruction); err != nil {
		return RunResult{}, err
	}

	var (
		result snapshot.Result
		err    error
	)
	if parent == nil {
		result, err = snapshot.Capture(e.cfg.Workdir)
	} else {
		result, err = snapshot.Diff(ctx, e.cfg.Workdir, e.idx.Ancestry(), e.blobs)
	}
	if err != nil {
		return RunResult{}, err
	}

	if !result.Changed {
		var head statekit.Hash
		if parent != nil {
			head = *parent
		}
		return RunResult{Kind: Empty, Hash: head}, nil
	}

	// A deletions-only layer hashes to SHA256(deleted-list JSON) with no
	// archive bytes behind it (spec.md §4.3 steps 5/6); there is nothing to
	// store. Every other layer stores its archive under that same hash.
	if len(result.Archive) > 0 {
		if err := e.blobs.Put(ctx, result.Hash, result.Archive); err != nil {
			return RunResult{}, err
		}
	}
	layer := statekit.Layer{Hash: result.Hash, Instruction: instruction, Parent: parent, Time: statekit.Now()}
	if err := e.idx.Append(layer); err != nil {
		return RunResult{}, err
	}
	return RunResult{Kind: Created, Hash: result.Hash}, nil
}

// Exec runs instruction without touching the Index or BlobStore. It is
// used for queries that must not create layers.
func (e *Engine) Exec(ctx context.Context, instruction string) error {
	return e.run.Run(ctx, e.cfg.Workdir, instruction)
}

// Batch runs each instruction in order via Run, stopping (and propagating
// the error) on the first failure.
func (e *Engine) Batch(ctx context.Context, instructions []string) ([]RunResult, error) {
	results := make([]RunResult, 0, len(instructions))
	for _, instruction := range instructions {
		res, err := e.Run(ctx, instruction)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Rebuild reconstructs the workdir from the current head's ancestry and
// returns the number of layers replayed.
func (e *Engine) Rebuild(ctx context.Context) (int, error) {
	chain := e.idx.Ancestry()
	if err := snapshot.Rebuild(ctx, e.cfg.Workdir, chain, e.blobs); err != nil {
		return 0, err
	}
	return len(chain), nil
}

// Reset deletes StateDir entirely and starts over: a fresh, empty Index,
// and an empty Workdir. A BlobStore rooted beneath StateDir (the default)
// is wiped along with it; a BlobStore injected from elsewhere is left to
// the caller to clear.
func (e *Engine) Reset() error {
	if err := os.RemoveAll(e.cfg.StateDir); err != nil {
		return errors.Wrapf(err, "removing %s", e.cfg.StateDir)
	}
	if err := os.RemoveAll(e.cfg.Workdir); err != nil {
		return errors.Wrapf(err, "removing workdir %s", e.cfg.Workdir)
	}
	if err := os.MkdirAll(e.cfg.Workdir, 0o755); err != nil {
		return errors.Wrapf(err, "recreating workdir %s", e.cfg.Workdir)
	}

	idx, err := index.Open(e.cfg.StateDir)
	if err != nil {
		return err
	}
	e.idx = idx
	return nil
}

// Checkout resolves ref, verifies it is on the current chain, rebuilds the
// workdir to that point, and moves head.
func (e *Engine) Checkout(ctx context.Context, ref string) (statekit.Hash, error) {
	hash, err := e.idx.Resolve(ref)
	if err != nil {
		return statekit.Zero, err
	}

	chain := e.idx.Ancestry()
	pos := -1
	for i, l := range chain {
		if l.Hash == hash {
			pos = i
			break
		}
	}
	if pos == -1 {
		return statekit.Zero, &LayerNotOnChain{Hash: hash}
	}

	if err := snapshot.Rebuild(ctx, e.cfg.Workdir, chain[:pos+1], e.blobs); err != nil {
		return statekit.Zero, err
	}
	if err := e.idx.SetHead(hash); err != nil {
		return statekit.Zero, err
	}
	return hash, nil
}

// PathDiff names the paths that differ between two points in history:
// added (new), modified (content differs), or deleted.
type PathDiff struct {
	Added    []string
	Modified []string
	Deleted  []string
}

// Clean reports whether d has no differences at all.
func (d PathDiff) Clean() bool {
	return len(d.Added) == 0 && len(d.Modified) == 0 && len(d.Deleted) == 0
}

// StatusResult is the outcome of Status: the added/modified/deleted paths,
// plus a Stat summary of the live workdir and a short human-readable line
// combining the two, the way Engine.Inspect reports a blob's size alongside
// its other metadata.
type StatusResult struct {
	PathDiff
	Stat    snapshot.Stat
	Summary string
}

// Status compares the live workdir against the state of head (the empty
// state if there is no head yet).
func (e *Engine) Status(ctx context.Context) (StatusResult, error) {
	current, err := snapshot.ComputeState(e.cfg.Workdir)
	if err != nil {
		return StatusResult{}, err
	}
	base, err := snapshot.StateForChain(ctx, e.idx.Ancestry(), e.blobs)
	if err != nil {
		return StatusResult{}, err
	}
	added, modified, deleted := snapshot.Compare(base, current)
	diff := PathDiff{Added: added, Modified: modified, Deleted: deleted}
	stat := current.Stat()

	summary := fmt.Sprintf(
		"%d files, %d dirs, %d symlinks, %d bytes (%d added, %d modified, %d deleted)",
		stat.Files, stat.Dirs, stat.Symlinks, stat.Bytes,
		len(added), len(modified), len(deleted),
	)
	return StatusResult{PathDiff: diff, Stat: stat, Summary: summary}, nil
}

// Diff compares the state at two points in history. An empty from means
// the empty state (nothing); an empty to means the current head.
func (e *Engine) Diff(ctx context.Context, from, to string) (PathDiff, error) {
	toChain := e.idx.Ancestry()
	if to != "" {
		chain, err := e.chainTo(to)
		if err != nil {
			return PathDiff{}, err
		}
		toChain = chain
	}

	var fromChain []statekit.Layer
	if from != "" {
		chain, err := e.chainTo(from)
		if err != nil {
			return PathDiff{}, err
		}
		fromChain = chain
	}

	base, err := snapshot.StateForChain(ctx, fromChain, e.blobs)
	if err != nil {
		return PathDiff{}, err
	}
	current, err := snapshot.StateForChain(ctx, toChain, e.blobs)
	if err != nil {
		return PathDiff{}, err
	}
	added, modified, deleted := snapshot.Compare(base, current)
	return PathDiff{Added: added, Modified: modified, Deleted: deleted}, nil
}

// chainTo resolves ref against the full layer catalog and returns its
// ancestry (root to ref), independent of the current head.
func (e *Engine) chainTo(ref string) ([]statekit.Layer, error) {
	hash, err := e.idx.Resolve(ref)
	if err != nil {
		return nil, err
	}
	full := e.idx.Layers()
	byHash := make(map[statekit.Hash]statekit.Layer, len(full))
	for _, l := range full {
		byHash[l.Hash] = l
	}

	var chain []statekit.Layer
	cur := &hash
	for cur != nil {
		l, ok := byHash[*cur]
		if !ok {
			break
		}
		chain = append(chain, l)
		cur = l.Parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Tag creates or replaces name to point at ref, or at head if ref is
// empty. Fails with NothingToTag if ref is empty and there is no head.
func (e *Engine) Tag(name, ref string) error {
	var hash statekit.Hash
	if ref == "" {
		head := e.idx.Head()
		if head == nil {
			return &NothingToTag{}
		}
		hash = *head
	} else {
		resolved, err := e.idx.Resolve(ref)
		if err != nil {
			return err
		}
		hash = resolved
	}
	return e.idx.SetTag(name, hash)
}

// Tags lists every tag, sorted by name.
func (e *Engine) Tags() []index.Tag {
	return e.idx.Tags()
}

// Inspection is the metadata Inspect reports about one layer.
type Inspection struct {
	Hash        statekit.Hash
	Instruction string
	Parent      *statekit.Hash
	Time        statekit.Millis
	Size        int64
}

// Inspect resolves ref and reports its layer's metadata, including the
// byte size of its stored blob.
func (e *Engine) Inspect(ctx context.Context, ref string) (Inspection, error) {
	hash, err := e.idx.Resolve(ref)
	if err != nil {
		return Inspection{}, err
	}
	var layer *statekit.Layer
	for _, l := range e.idx.Layers() {
		if l.Hash == hash {
			layer = &l
			break
		}
	}
	if layer == nil {
		return Inspection{}, &LayerNotOnChain{Hash: hash}
	}
	// A deletions-only layer (see Run) has no blob at all: its identity is
	// hashed from its deleted-file list alone, so there's nothing to size.
	size, err := e.blobs.Size(ctx, hash)
	if err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		return Inspection{}, err
	}
	return Inspection{
		Hash:        layer.Hash,
		Instruction: layer.Instruction,
		Parent:      layer.Parent,
		Time:        layer.Time,
		Size:        size,
	}, nil
}

// History returns the chain from root to head.
func (e *Engine) History() []statekit.Layer {
	return e.idx.Ancestry()
}

// Head returns the current head hash, or nil if the store is empty.
func (e *Engine) Head() *statekit.Hash {
	return e.idx.Head()
}
