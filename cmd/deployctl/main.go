// Package main is the entry point for the deployctl CLI.
//
// deployctl records the metadata of datastore deployments (secret, TLS
// identity, SSH key and which node hosts which role) on the operator's
// machine, starts and terminates their cloud machines, and runs commands
// against them with bounded retries.
//
// Commands: up, status, host, exec, down, backup, restore, credentials,
// doctor.
//
// For detailed usage information, run:
//
//	deployctl --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/deployctl/cmd/deployctl/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
