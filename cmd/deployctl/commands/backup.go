package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/deployctl/cmd/deployctl/handlers"
)

// Backup returns the backup command.
func Backup(g *handlers.Globals) *cobra.Command {
	var keyname string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Upload a deployment's metadata to object storage",
		Long: `Backup copies every metadata file of the deployment to the bucket
configured under "backup" in deployctl.yaml, keyed <keyname>/<file>.
The bucket is created if it does not exist.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Backup(cmd.Context(), *g, keyname)
		},
	}

	addKeyname(cmd, &keyname)
	return cmd
}

// Restore returns the restore command.
func Restore(g *handlers.Globals) *cobra.Command {
	var keyname string
	var force bool

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Download a deployment's metadata from object storage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Restore(cmd.Context(), *g, keyname, force)
		},
	}

	addKeyname(cmd, &keyname)
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite metadata of a recorded deployment")
	return cmd
}
