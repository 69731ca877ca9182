package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/imamik/deployctl/cmd/deployctl/handlers"
)

// Exec returns the exec command.
func Exec(g *handlers.Globals) *cobra.Command {
	var opts handlers.ExecOptions

	cmd := &cobra.Command{
		Use:   "exec [flags] -- command [args...]",
		Short: "Run a command with retries, locally or on a deployment node",
		Long: `Exec runs a shell command until it exits 0 or the retry budget is spent.
Only the successful attempt's stdout is printed; stderr is streamed.

With --keyname the command runs over SSH on the node performing --role
(default: login) using the deployment's SSH key.

Examples:
  deployctl exec -- curl -fsS http://localhost:8080/health
  deployctl exec -k prod --role db_master --retries 10 -- nodetool status`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = strings.Join(args, " ")
			return handlers.Exec(cmd.Context(), *g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Keyname, "keyname", "k", "", "Deployment whose node runs the command")
	cmd.Flags().StringVarP(&opts.Role, "role", "r", "", "Role of the target node (default: login)")
	cmd.Flags().IntVar(&opts.Retries, "retries", 0, "Maximum attempts (default: retry.max_attempts)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write executor metrics in Prometheus text format")
	return cmd
}
