package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/deployctl/cmd/deployctl/handlers"
)

// Host returns the host command.
func Host(g *handlers.Globals) *cobra.Command {
	var keyname, role string

	cmd := &cobra.Command{
		Use:   "host",
		Short: "Print the address of the node performing a role",
		Long: `Host prints the public address of the first node that performs the
given role. Without --role the login node is printed.

Example:
  ssh root@$(deployctl host -k prod --role db_master)`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Host(cmd.Context(), *g, keyname, role)
		},
	}

	addKeyname(cmd, &keyname)
	cmd.Flags().StringVarP(&role, "role", "r", "", "Role to look up (default: login)")
	return cmd
}
