package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"logdeck/api"
	"logdeck/auth"
)

func newLoginCmd() *cobra.Command {
	var username, password string
	var google bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the logging platform",
		Long:  "Exchange credentials for a session. The token pair is stored locally so later commands stay logged in.",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()

			if google {
				return googleLogin(cmd, env)
			}

			if username == "" {
				username = prompt(cmd, "Username: ")
			}
			if password == "" {
				password = prompt(cmd, "Password: ")
			}

			if err := env.Auth.Login(ctx, username, password); err != nil {
				var credErr *api.CredentialsError
				if errors.As(err, &credErr) {
					return errors.New(credErr.Error())
				}
				return surfaceError(err)
			}

			user := env.Store.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user.Username, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	cmd.Flags().BoolVar(&google, "google", false, "Log in with Google instead of a password")

	return cmd
}

// googleLogin walks the OAuth handshake in the terminal: print the
// provider URL, then accept the pasted redirect URL or bare code.
func googleLogin(cmd *cobra.Command, env *Env) error {
	ctx := cmd.Context()

	authURL, err := env.Auth.GoogleLoginURL(ctx)
	if err != nil {
		return surfaceError(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Open this URL in your browser and authorize access:\n\n  %s\n\n", authURL)
	redirect := prompt(cmd, "Paste the redirect URL (or the code) here: ")

	if err := env.Auth.HandleGoogleRedirect(ctx, redirect); err != nil {
		if errors.Is(err, auth.ErrCodeAlreadyUsed) {
			return errors.New("that authorization code was already used; start the login again")
		}
		return surfaceError(err)
	}

	user := env.Store.User()
	fmt.Fprintf(out, "Logged in as %s (%s)\n", user.Username, user.Email)
	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			// Safe with no session; clearing twice is a no-op.
			env.Auth.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var username, email, password, confirm string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			if username == "" {
				username = prompt(cmd, "Username: ")
			}
			if email == "" {
				email = prompt(cmd, "Email: ")
			}
			if password == "" {
				password = prompt(cmd, "Password: ")
			}
			if confirm == "" {
				confirm = prompt(cmd, "Confirm password: ")
			}

			err = env.Auth.Register(cmd.Context(), username, email, password, confirm)
			if err != nil {
				if errors.Is(err, auth.ErrPasswordMismatch) {
					return errors.New("passwords do not match")
				}
				var valErr *api.ValidationError
				if errors.As(err, &valErr) {
					return errors.New(valErr.Display())
				}
				return surfaceError(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Account created; run `logdeck login` to sign in")
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	cmd.Flags().StringVar(&confirm, "confirm", "", "Password confirmation")

	return cmd
}

func newWhoamiCmd() *cobra.Command {
	var newUsername, newEmail string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show or update the logged-in profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			if err := env.requireSession(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if newUsername != "" || newEmail != "" {
				current := env.Store.User()
				if newUsername == "" {
					newUsername = current.Username
				}
				if newEmail == "" {
					newEmail = current.Email
				}
				updated, err := env.Client.UpdateProfile(ctx, newUsername, newEmail)
				if err != nil {
					return surfaceError(err)
				}
				fmt.Fprintf(out, "Profile updated: %s (%s)\n", updated.Username, updated.Email)
				return nil
			}

			user := env.Store.User()
			fmt.Fprintf(out, "%s (%s)\n", user.Username, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&newUsername, "set-username", "", "Replace the account username")
	cmd.Flags().StringVar(&newEmail, "set-email", "", "Replace the account email")

	return cmd
}

// prompt reads one line from stdin.
func prompt(cmd *cobra.Command, label string) string {
	fmt.Fprint(cmd.OutOrStdout(), label)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// confirmAction asks for explicit confirmation before a destructive
// mutation, unless --yes was supplied.
func confirmAction(cmd *cobra.Command, yes bool, what string) bool {
	if yes {
		return true
	}
	answer := prompt(cmd, fmt.Sprintf("%s [y/N]: ", what))
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
