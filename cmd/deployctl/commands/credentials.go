package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imamik/deployctl/cmd/deployctl/handlers"
)

// Credentials returns the credentials command.
func Credentials(g *handlers.Globals) *cobra.Command {
	var opts handlers.CredentialsOptions
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Validate administrator credentials and print the password digest",
		Long: `Credentials prompts for the administrator e-mail address and password
(at least 6 characters, entered twice) and prints the salted digest the
deployment stores.

Non-interactive use:
  echo "$ADMIN_PASSWORD" | deployctl credentials --email admin@example.com --password-stdin`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if passwordStdin {
				password, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				opts.Password = password
			}
			return handlers.Credentials(cmd.Context(), *g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "Administrator e-mail address")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
