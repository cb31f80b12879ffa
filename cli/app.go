package cli

import (
	"github.com/spf13/cobra"

	"logdeck/ui"
)

func newAppCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "app",
		Short: "Launch the desktop dashboard",
		Long:  "Open the graphical dashboard. It shares the stored session with the CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			app := ui.NewApp(env.Config, env.Logger, env.DB, env.Store, env.Client, env.Auth, env.Resources)
			app.Run()
			return nil
		},
	}
}
