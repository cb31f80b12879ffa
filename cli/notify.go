package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNotifyCmd() *cobra.Command {
	var enable, disable bool
	var onError, onWarning string
	var email string

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Show or update email notification preferences",
		Long:  "Without flags, shows the current preferences. Flags replace the settings in full.",
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

			prefs, err := env.Resources.NotificationPrefs(ctx)
			if err != nil {
				return surfaceError(err)
			}

			out := cmd.OutOrStdout()
			changed := enable || disable || email != "" ||
				cmd.Flags().Changed("on-error") || cmd.Flags().Changed("on-warning")

			if !changed {
				fmt.Fprintf(out, "Email:            %s\nEnabled:          %v\nNotify on error:  %v\nNotify on warning: %v\n",
					prefs.Email, prefs.Enabled, prefs.NotifyOnError, prefs.NotifyOnWarning)
				return nil
			}

			if enable && disable {
				return fmt.Errorf("--enable and --disable are mutually exclusive")
			}

			// The endpoint is a full replace, so start from the fetched
			// settings and apply the flags on top.
			next := *prefs
			if enable {
				next.Enabled = true
			}
			if disable {
				next.Enabled = false
			}
			if email != "" {
				next.Email = email
			}
			if cmd.Flags().Changed("on-error") {
				next.NotifyOnError = onError == "true"
			}
			if cmd.Flags().Changed("on-warning") {
				next.NotifyOnWarning = onWarning == "true"
			}

			updated, err := env.Resources.UpdateNotificationPrefs(ctx, next)
			if err != nil {
				return surfaceError(err)
			}

			fmt.Fprintf(out, "Preferences updated (enabled=%v, on_error=%v, on_warning=%v)\n",
				updated.Enabled, updated.NotifyOnError, updated.NotifyOnWarning)
			return nil
		},
	}

	cmd.Flags().BoolVar(&enable, "enable", false, "Enable email notifications")
	cmd.Flags().BoolVar(&disable, "disable", false, "Disable email notifications")
	cmd.Flags().StringVar(&email, "email", "", "Notification email address")
	cmd.Flags().StringVar(&onError, "on-error", "", "Notify on error logs: true or false")
	cmd.Flags().StringVar(&onWarning, "on-warning", "", "Notify on warning logs: true or false")

	return cmd
}
