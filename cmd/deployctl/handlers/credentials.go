package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/imamik/deployctl/internal/config"
	"github.com/imamik/deployctl/internal/localstate"
)

// CredentialsOptions are the flags of the credentials command.
type CredentialsOptions struct {
	Email    string
	Password string
}

// CredentialsResult is the administrator account handed to a deployment.
type CredentialsResult struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

var errPasswordMismatch = errors.New("passwords entered do not match")

// promptCredentials asks for whatever is missing - can be replaced in tests.
var promptCredentials = func(ctx context.Context, email, password string) (string, string, error) {
	var confirmation string
	fields := []huh.Field{}
	if email == "" {
		fields = append(fields, huh.NewInput().
			Title("Admin e-mail address").
			Placeholder("admin@example.com").
			Value(&email).
			Validate(localstate.ValidateEmail))
	}
	if password == "" {
		fields = append(fields,
			huh.NewInput().
				Title("New password").
				Description("At least 6 characters").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(localstate.ValidatePassword),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&confirmation).
				Validate(func(s string) error {
					if s != password {
						return errPasswordMismatch
					}
					return nil
				}),
		)
	}

	err := huh.NewForm(huh.NewGroup(fields...).Title("Deployment credentials")).RunWithContext(ctx)
	return email, password, err
}

// Credentials validates an administrator e-mail and password and prints
// the salted password digest a deployment stores.
func Credentials(ctx context.Context, g Globals, opts CredentialsOptions) error {
	email, password := opts.Email, opts.Password
	if email == "" || password == "" {
		if !isInteractiveTTY() {
			return config.Invalid("credentials", "e-mail and password are required",
				"pass --email and --password-stdin, or run in a terminal")
		}
		var err error
		email, password, err = promptCredentials(ctx, email, password)
		if err != nil {
			return fmt.Errorf("credentials prompt: %w", err)
		}
	}

	if err := localstate.ValidateEmail(email); err != nil {
		return err
	}
	if err := localstate.ValidatePassword(password); err != nil {
		return err
	}

	res := CredentialsResult{Username: email, PasswordHash: localstate.HashPassword(email, password)}
	if g.JSON {
		return printJSON(res)
	}
	printField("username", res.Username)
	printField("password hash", res.PasswordHash)
	return nil
}
