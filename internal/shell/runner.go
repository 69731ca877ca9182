package shell

import (
	"bytes"
	"context"
	"io"
	"os/exec"
)

// DefaultShell is the interpreter SystemRunner hands commands to.
const DefaultShell = "/bin/sh"

// Runner executes a single command attempt.
//
// Run returns the attempt's stdout. A nil error means the command exited
// with status 0.
type Runner interface {
	Run(ctx context.Context, command string, stderr io.Writer) (string, error)
}

// SystemRunner runs commands with "<Shell> -c <command>".
type SystemRunner struct {
	// Shell defaults to DefaultShell.
	Shell string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env, when set, replaces the process environment.
	Env []string
}

// Run implements Runner.
func (r SystemRunner) Run(ctx context.Context, command string, stderr io.Writer) (string, error) {
	shell := r.Shell
	if shell == "" {
		shell = DefaultShell
	}

	// #nosec G204 -- running operator-supplied commands is this package's purpose
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = r.Dir
	if r.Env != nil {
		cmd.Env = r.Env
	}

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	return stdout.String(), err
}

// RunnerFunc adapts a plain function to Runner.
type RunnerFunc func(ctx context.Context, command string, stderr io.Writer) (string, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, command string, stderr io.Writer) (string, error) {
	return f(ctx, command, stderr)
}
