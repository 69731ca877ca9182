package shell

import (
	"errors"
	"fmt"
)

// ErrCommandFailed matches every *CommandFailedError.
var ErrCommandFailed = errors.New("command failed")

// CommandFailedError reports a command that never exited successfully.
type CommandFailedError struct {
	Command  string
	Attempts int
	LastErr  error
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("command %q failed after %d attempts: %v", e.Command, e.Attempts, e.LastErr)
}

func (e *CommandFailedError) Unwrap() error {
	return e.LastErr
}

// Is reports whether target is ErrCommandFailed.
func (e *CommandFailedError) Is(target error) bool {
	return target == ErrCommandFailed
}

// ExitCode returns the exit status of the last attempt, or -1 when the
// process never exited normally. Both local and remote (SSH) exit errors
// are understood.
func (e *CommandFailedError) ExitCode() int {
	var exitErr interface{ ExitCode() int }
	if errors.As(e.LastErr, &exitErr) {
		return exitErr.ExitCode()
	}
	var remoteErr interface{ ExitStatus() int }
	if errors.As(e.LastErr, &remoteErr) {
		return remoteErr.ExitStatus()
	}
	return -1
}
