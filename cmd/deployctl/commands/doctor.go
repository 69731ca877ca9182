package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/deployctl/cmd/deployctl/handlers"
)

// Doctor returns the command for diagnosing the operator environment.
func Doctor(g *handlers.Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check local tools, configuration and credentials",
		Long: `Doctor checks that the tools deployctl shells out to are installed,
that the configuration loads, that the cloud token is accepted and that
the backup bucket is reachable.

Examples:
  deployctl doctor
  deployctl doctor --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), *g)
		},
	}
}
