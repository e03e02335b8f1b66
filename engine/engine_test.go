package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/statekit/statekit/blobstore/memstore"
	"github.com/statekit/statekit/runner"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	cfg := Config{StateDir: filepath.Join(dir, "state"), Workdir: filepath.Join(dir, "work")}
	e, err := New(cfg, memstore.New(), runner.NewExecRunner())
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestRunCreatesFirstLayer(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	res, err := e.Run(ctx, "echo hello > f")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != Created {
		t.Fatalf("got kind %v, want Created", res.Kind)
	}

	got, err := os.ReadFile(filepath.Join(e.Workdir(), "f"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello\n" {
		t.Fatalf("got %q, want %q", got, "hello\n")
	}

	if len(e.History()) != 1 {
		t.Fatalf("got %d layers, want 1", len(e.History()))
	}
}

func TestRunRepeatedWithoutCheckoutIsEmpty(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	if _, err := e.Run(ctx, "echo hello > f"); err != nil {
		t.Fatal(err)
	}
	headBefore := *e.Head()

	res, err := e.Run(ctx, "echo hello > f")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != Empty {
		t.Fatalf("got kind %v, want Empty", res.Kind)
	}
	if *e.Head() != headBefore {
		t.Fatal("head should be unchanged after an empty result")
	}
}

func TestCheckoutThenRerunHitsCache(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	layer1, err := e.Run(ctx, "echo hello > f")
	if err != nil {
		t.Fatal(err)
	}
	layer2, err := e.Run(ctx, "echo world > g")
	if err != nil {
		t.Fatal(err)
	}
	if layer2.Kind != Created {
		t.Fatalf("got kind %v, want Created", layer2.Kind)
	}

	if _, err := e.Checkout(ctx, layer1.Hash.String()); err != nil {
		t.Fatal(err)
	}

	res, err := e.Run(ctx, "echo world > g")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != Cached {
		t.Fatalf("got kind %v, want Cached", res.Kind)
	}
	if res.Hash != layer2.Hash {
		t.Fatalf("got hash %v, want %v", res.Hash, layer2.Hash)
	}
}

func TestRunFailurePropagatesAndRecordsNoLayer(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.Run(ctx, "exit 1")
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(e.History()) != 0 {
		t.Fatalf("got %d layers, want 0 after a failed run", len(e.History()))
	}
}

func TestCheckoutRemovesLaterFiles(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	layer1, err := e.Run(ctx, "echo a > a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Run(ctx, "echo b > b.txt"); err != nil {
		t.Fatal(err)
	}

	if _, err := e.Checkout(ctx, layer1.Hash.String()); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(e.Workdir(), "a.txt")); err != nil {
		t.Fatal("a.txt should be present after checkout to layer1")
	}
	if _, err := os.Stat(filepath.Join(e.Workdir(), "b.txt")); !os.IsNotExist(err) {
		t.Fatal("b.txt should be absent after checkout to layer1")
	}
}

func TestTagThenCheckoutEquivalentToHeadAtTagTime(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	if _, err := e.Run(ctx, "echo a > a.txt"); err != nil {
		t.Fatal(err)
	}
	headAtTagTime := *e.Head()
	if err := e.Tag("v1", ""); err != nil {
		t.Fatal(err)
	}

	if _, err := e.Run(ctx, "echo b > b.txt"); err != nil {
		t.Fatal(err)
	}

	got, err := e.Checkout(ctx, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if got != headAtTagTime {
		t.Fatalf("got %v, want %v", got, headAtTagTime)
	}
}

func TestStatusCleanAfterRun(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	if _, err := e.Run(ctx, "echo a > a.txt"); err != nil {
		t.Fatal(err)
	}
	diff, err := e.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !diff.Clean() {
		t.Fatalf("got %+v, want clean", diff)
	}

	if err := os.WriteFile(filepath.Join(e.Workdir(), "untracked.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	diff, err = e.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff.Clean() || len(diff.Added) != 1 || diff.Added[0] != "untracked.txt" {
		t.Fatalf("got %+v", diff)
	}
}

func TestTagWithNoRefAndNoHeadFails(t *testing.T) {
	e := newTestEngine(t)
	err := e.Tag("v1", "")
	if err == nil {
		t.Fatal("expected NothingToTag")
	}
	if _, ok := err.(*NothingToTag); !ok {
		t.Fatalf("got error of type %T, want *NothingToTag", err)
	}
}

func TestCheckoutUnresolvableRefFails(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	if _, err := e.Run(ctx, "echo a > a.txt"); err != nil {
		t.Fatal(err)
	}

	_, err := e.Checkout(ctx, "0000000000000000000000000000000000000000000000000000000000000000") // not a real hash

	if err == nil {
		t.Fatal("expected an error for an unresolvable ref")
	}
}

func TestInspectReportsSize(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	res, err := e.Run(ctx, "echo hello > f")
	if err != nil {
		t.Fatal(err)
	}

	info, err := e.Inspect(ctx, res.Hash.String())
	if err != nil {
		t.Fatal(err)
	}
	if info.Instruction != "echo hello > f" {
		t.Fatalf("got instruction %q", info.Instruction)
	}
	if info.Size <= 0 {
		t.Fatalf("got size %d, want > 0", info.Size)
	}
}

func TestRebuildReplaysChain(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	if _, err := e.Run(ctx, "echo a > a.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Run(ctx, "echo b > b.txt"); err != nil {
		t.Fatal(err)
	}

	count, err := e.Rebuild(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("got %d, want 2", count)
	}
	if _, err := os.Stat(filepath.Join(e.Workdir(), "a.txt")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(e.Workdir(), "b.txt")); err != nil {
		t.Fatal(err)
	}
}

func TestResetClearsHistory(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	if _, err := e.Run(ctx, "echo a > a.txt"); err != nil {
		t.Fatal(err)
	}

	if err := e.Reset(); err != nil {
		t.Fatal(err)
	}
	if e.Head() != nil {
		t.Fatal("expected nil head after reset")
	}
	if len(e.History()) != 0 {
		t.Fatal("expected no history after reset")
	}
}

func TestBatchStopsOnFirstFailure(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.Batch(ctx, []string{"echo a > a.txt", "exit 1", "echo b > b.txt"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(e.History()) != 1 {
		t.Fatalf("got %d layers, want 1 (only the first instruction should have committed)", len(e.History()))
	}
	if _, statErr := os.Stat(filepath.Join(e.Workdir(), "b.txt")); !os.IsNotExist(statErr) {
		t.Fatal("b.txt should not exist; batch should have stopped before the third instruction")
	}
}
