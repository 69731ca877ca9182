// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/deployctl/cmd/deployctl/handlers"
)

// Root returns the root command for the deployctl CLI.
func Root() *cobra.Command {
	var g handlers.Globals

	cmd := &cobra.Command{
		Use:           "deployctl",
		Short:         "Record, reach and tear down datastore deployments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&g.ConfigPath, "config", "c", "", "Path to configuration file (default: ./deployctl.yaml)")
	flags.StringVar(&g.StateDir, "state-dir", "", "Directory holding deployment metadata (default: ~/.deployctl)")
	flags.BoolVarP(&g.Verbose, "verbose", "v", false, "Log every command attempt and debug output")
	flags.BoolVar(&g.JSON, "json", false, "Output in JSON format")

	// Deployment lifecycle
	cmd.AddCommand(Up(&g))
	cmd.AddCommand(Status(&g))
	cmd.AddCommand(Host(&g))
	cmd.AddCommand(Exec(&g))
	cmd.AddCommand(Down(&g))

	// Metadata and utilities
	cmd.AddCommand(Backup(&g))
	cmd.AddCommand(Restore(&g))
	cmd.AddCommand(Credentials(&g))
	cmd.AddCommand(Doctor(&g))
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

// addKeyname binds the --keyname flag shared by deployment commands.
func addKeyname(cmd *cobra.Command, keyname *string) {
	cmd.Flags().StringVarP(keyname, "keyname", "k", "", "Name identifying the deployment (required)")
	_ = cmd.MarkFlagRequired("keyname")
}
