package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/deployctl/cmd/deployctl/handlers"
)

// Down returns the down command.
func Down(g *handlers.Globals) *cobra.Command {
	var keyname string

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Terminate a deployment and remove its metadata",
		Long: `Down deletes the deployment's cloud servers, SSH key, and (once no
servers of the group remain) its firewall and network, then removes every
local metadata file.

Running down for a deployment that no longer exists succeeds.

WARNING: This operation is irreversible. Back up the metadata first with
'deployctl backup' if you may need it again.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Down(cmd.Context(), *g, keyname)
		},
	}

	addKeyname(cmd, &keyname)
	return cmd
}
