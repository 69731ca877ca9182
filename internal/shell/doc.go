// Package shell runs operator commands through the system shell with a
// bounded retry loop.
//
// A command is attempted until it exits with status 0 or the attempt
// budget is spent. Only the stdout of the successful attempt is returned;
// stderr is streamed to the executor's stderr writer as it is produced.
// Attempts carry no individual timeout: a hung process blocks until the
// caller's context is cancelled.
//
// The Runner interface is the seam tests use to replace the real shell.
package shell
