package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/statekit/statekit"
	"github.com/statekit/statekit/blobstore/memstore"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func mustLayer(hash statekit.Hash, instruction string, parent *statekit.Hash) statekit.Layer {
	return statekit.Layer{Hash: hash, Instruction: instruction, Parent: parent, Time: statekit.Now()}
}

func TestCaptureEmptyWorkdir(t *testing.T) {
	dir := t.TempDir()
	res, err := Capture(dir)
	if err != nil {
		t.Fatal(err)
	}
	if res.Changed {
		t.Fatal("expected Changed=false for an empty workdir")
	}
}

func TestCaptureAndRestore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "hello")
	writeFile(t, dir, "sub/b.txt", "world")

	res, err := Capture(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Changed {
		t.Fatal("expected Changed=true")
	}

	blobs := memstore.New()
	if err := blobs.Put(ctx, res.Hash, res.Archive); err != nil {
		t.Fatal(err)
	}

	root := mustLayer(res.Hash, "root", nil)

	dest := t.TempDir()
	if err := Rebuild(ctx, dest, []statekit.Layer{root}, blobs); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want hello", got)
	}
	got, err = os.ReadFile(filepath.Join(dest, "sub/b.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "world" {
		t.Fatalf("got %q, want world", got)
	}
}

func TestDiffAddModifyDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "keep.txt", "unchanged")
	writeFile(t, dir, "a.txt", "v1")
	writeFile(t, dir, "b.txt", "to be deleted")

	rootRes, err := Capture(dir)
	if err != nil {
		t.Fatal(err)
	}
	blobs := memstore.New()
	if err := blobs.Put(ctx, rootRes.Hash, rootRes.Archive); err != nil {
		t.Fatal(err)
	}
	root := mustLayer(rootRes.Hash, "root", nil)

	// Mutate the workdir: modify a.txt, delete b.txt, add c.txt.
	writeFile(t, dir, "a.txt", "v2")
	if err := os.Remove(filepath.Join(dir, "b.txt")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "c.txt", "new")

	diffRes, err := Diff(ctx, dir, []statekit.Layer{root}, blobs)
	if err != nil {
		t.Fatal(err)
	}
	if !diffRes.Changed {
		t.Fatal("expected Changed=true")
	}
	if err := blobs.Put(ctx, diffRes.Hash, diffRes.Archive); err != nil {
		t.Fatal(err)
	}
	layer2 := mustLayer(diffRes.Hash, "mutate", &rootRes.Hash)

	dest := t.TempDir()
	if err := Rebuild(ctx, dest, []statekit.Layer{root, layer2}, blobs); err != nil {
		t.Fatal(err)
	}

	if b, err := os.ReadFile(filepath.Join(dest, "a.txt")); err != nil || string(b) != "v2" {
		t.Fatalf("a.txt: got %q, %v", b, err)
	}
	if b, err := os.ReadFile(filepath.Join(dest, "c.txt")); err != nil || string(b) != "new" {
		t.Fatalf("c.txt: got %q, %v", b, err)
	}
	if b, err := os.ReadFile(filepath.Join(dest, "keep.txt")); err != nil || string(b) != "unchanged" {
		t.Fatalf("keep.txt: got %q, %v", b, err)
	}
	if _, err := os.Stat(filepath.Join(dest, "b.txt")); !os.IsNotExist(err) {
		t.Fatalf("b.txt should have been deleted by Rebuild, stat err = %v", err)
	}
}

func TestDiffNoChangeIsEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "same")

	rootRes, err := Capture(dir)
	if err != nil {
		t.Fatal(err)
	}
	blobs := memstore.New()
	if err := blobs.Put(ctx, rootRes.Hash, rootRes.Archive); err != nil {
		t.Fatal(err)
	}
	root := mustLayer(rootRes.Hash, "root", nil)

	diffRes, err := Diff(ctx, dir, []statekit.Layer{root}, blobs)
	if err != nil {
		t.Fatal(err)
	}
	if diffRes.Changed {
		t.Fatal("expected Changed=false when nothing in the workdir changed")
	}
}

func TestRebuildIdempotent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "hello")
	writeFile(t, dir, "sub/b.txt", "world")

	res, err := Capture(dir)
	if err != nil {
		t.Fatal(err)
	}
	blobs := memstore.New()
	if err := blobs.Put(ctx, res.Hash, res.Archive); err != nil {
		t.Fatal(err)
	}
	root := mustLayer(res.Hash, "root", nil)

	dest := t.TempDir()
	if err := Rebuild(ctx, dest, []statekit.Layer{root}, blobs); err != nil {
		t.Fatal(err)
	}
	first, err := ComputeState(dest)
	if err != nil {
		t.Fatal(err)
	}

	if err := Rebuild(ctx, dest, []statekit.Layer{root}, blobs); err != nil {
		t.Fatal(err)
	}
	second, err := ComputeState(dest)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(first.Order, second.Order); diff != "" {
		t.Fatalf("rebuild is not idempotent (-first +second):\n%s", diff)
	}
}

func TestSymlinkFingerprint(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "target.txt", "x")
	if err := os.Symlink("target.txt", filepath.Join(dir, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %s", err)
	}

	st, err := ComputeState(dir)
	if err != nil {
		t.Fatal(err)
	}
	fp, ok := st.Get("link.txt")
	if !ok {
		t.Fatal("expected link.txt in state")
	}
	if fp.Kind != KindSymlink || fp.Target != "target.txt" {
		t.Fatalf("got %+v", fp)
	}
}
