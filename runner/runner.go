// Package runner executes the shell instructions that produce each layer.
package runner

import (
	"context"
	"os"
	"os/exec"

	"github.com/pkg/errors"
)

// Runner executes a single shell instruction in workdir. Stdout and stderr
// are passed through to the calling process; the core never captures them.
type Runner interface {
	Run(ctx context.Context, workdir, instruction string) error
}

// ExitError reports that an instruction ran but exited non-zero.
type ExitError struct {
	Instruction string
	Code        int
}

func (e *ExitError) Error() string {
	return errors.Errorf("instruction %q exited %d", e.Instruction, e.Code).Error()
}

// ExecRunner runs instructions with a shell via os/exec, the way a
// terminal would. Shell is the path to the shell binary; an empty Shell
// defaults to "/bin/sh".
type ExecRunner struct {
	Shell string
}

// NewExecRunner returns an ExecRunner using /bin/sh.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run runs instruction as `sh -c instruction` with workdir as its current
// directory. The child's environment is the caller's, with HOME overridden
// to workdir, so tools that write beneath "~/" are captured by the
// snapshot instead of escaping it. Stdout and stderr are connected directly
// to the calling process's; Run captures nothing.
//
// A non-zero exit is reported as *ExitError, not a plain error, so callers
// can distinguish "ran and failed" from "could not run at all".
func (r *ExecRunner) Run(ctx context.Context, workdir, instruction string) error {
	shell := r.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", instruction)
	cmd.Dir = workdir
	cmd.Env = withHome(os.Environ(), workdir)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Instruction: instruction, Code: exitErr.ExitCode()}
	}
	return errors.Wrapf(err, "running instruction %q", instruction)
}

// withHome returns a copy of base with HOME set to dir, replacing any
// existing HOME entry.
func withHome(base []string, dir string) []string {
	out := make([]string, 0, len(base)+1)
	for _, kv := range base {
		if len(kv) >= 5 && kv[:5] == "HOME=" {
			continue
		}
		out = append(out, kv)
	}
	out = append(out, "HOME="+dir)
	return out
}
