package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunSuccess(t *testing.T) {
	r := NewExecRunner()
	if err := r.Run(context.Background(), t.TempDir(), "exit 0"); err != nil {
		t.Fatal(err)
	}
}

func TestRunFailureIsExitError(t *testing.T) {
	r := NewExecRunner()
	err := r.Run(context.Background(), t.TempDir(), "exit 7")
	if err == nil {
		t.Fatal("expected an error")
	}
	exitErr, ok := err.(*ExitError)
	if !ok {
		t.Fatalf("got error of type %T, want *ExitError", err)
	}
	if exitErr.Code != 7 {
		t.Fatalf("got code %d, want 7", exitErr.Code)
	}
}

func TestRunUsesWorkdir(t *testing.T) {
	dir := t.TempDir()
	r := NewExecRunner()
	if err := r.Run(context.Background(), dir, "pwd > out.txt"); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(got)) != dir {
		t.Fatalf("got %q, want %q", got, dir)
	}
}

func TestRunOverridesHome(t *testing.T) {
	dir := t.TempDir()
	r := NewExecRunner()
	if err := r.Run(context.Background(), dir, "echo -n \"$HOME\" > home.txt"); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "home.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != dir {
		t.Fatalf("got HOME=%q, want %q", got, dir)
	}
}

func TestWithHomeReplacesExisting(t *testing.T) {
	base := []string{"PATH=/bin", "HOME=/old", "FOO=bar"}
	got := withHome(base, "/new")

	var home string
	count := 0
	for _, kv := range got {
		if strings.HasPrefix(kv, "HOME=") {
			home = kv
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one HOME entry, got %d", count)
	}
	if home != "HOME=/new" {
		t.Fatalf("got %q, want HOME=/new", home)
	}
}
