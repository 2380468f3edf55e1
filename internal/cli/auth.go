package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSignUpCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = app.Config.AuthEmail
			}
			if password == "" {
				password = app.Config.AuthPassword
			}

			session, err := app.Client.SignUp(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed up as %s\n", session.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (defaults to AUTH_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (defaults to AUTH_PASSWORD)")
	return cmd
}

func newWhoAmICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.signIn(cmd.Context()); err != nil {
				return err
			}
			user, err := app.Client.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
}
