package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/deployctl/cmd/deployctl/handlers"
)

// Status returns the status command.
func Status(g *handlers.Globals) *cobra.Command {
	var keyname string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a deployment's metadata and node reachability",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), *g, keyname)
		},
	}

	addKeyname(cmd, &keyname)
	return cmd
}
