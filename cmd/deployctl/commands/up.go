package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/deployctl/cmd/deployctl/handlers"
)

// Up returns the up command.
func Up(g *handlers.Globals) *cobra.Command {
	var opts handlers.UpOptions

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Record a new deployment and start its machines",
		Long: `Up generates the deployment's secret and TLS identity and records
which node hosts which role.

With infrastructure "xen" the nodes are listed in a layout file:

  - public_ip: 192.168.1.10
    jobs: [load_balancer, db_master, login]
  - public_ip: 192.168.1.11
    private_ip: 10.0.0.11
    jobs: [compute]

With a cloud infrastructure (hcloud) the machines are created first. A
layout then only supplies the roles, in order.

Examples:
  deployctl up -k prod --layout nodes.yaml
  deployctl up -k prod --count 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Up(cmd.Context(), *g, opts)
		},
	}

	addKeyname(cmd, &opts.Keyname)
	cmd.Flags().StringVarP(&opts.Layout, "layout", "l", "", "Node layout file (YAML or JSON)")
	cmd.Flags().IntVar(&opts.Count, "count", 1, "Number of cloud instances to start without a layout")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Record the deployment even if one with this keyname exists")
	cmd.Flags().BoolVar(&opts.Wait, "wait", false, "Wait until every node accepts SSH connections")

	return cmd
}
