package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys for log producers",
		Long: "Manage the API keys external clients use to send logs. Producers authenticate\n" +
			"with `Authorization: Api-Key <key>`; the key value is shown once, on creation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeysList(cmd)
		},
	}

	cmd.AddCommand(
		newKeysListCmd(),
		newKeysCreateCmd(),
		newKeysToggleCmd(),
		newKeysDeleteCmd(),
	)

	return cmd
}

func newKeysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeysList(cmd)
		},
	}
}

func runKeysList(cmd *cobra.Command) error {
	env, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()
	if err := env.requireSession(ctx); err != nil {
		return err
	}

	keys, err := env.Resources.APIKeys(ctx)
	if err != nil {
		return surfaceError(err)
	}

	if len(keys) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No API keys yet; create one with `logdeck keys create`")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tACTIVE\tCREATED")
	for _, k := range keys {
		fmt.Fprintf(w, "%d\t%s\t%v\t%s\n", k.ID, k.Name, k.IsActive, k.CreatedAt)
	}
	return w.Flush()
}

func newKeysCreateCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a new API key",
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

			if name == "" {
				name = prompt(cmd, "Key name: ")
			}

			key, err := env.Resources.CreateAPIKey(ctx, name)
			if err != nil {
				return surfaceError(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created key %q (id %d)\n\n", key.Name, key.ID)
			fmt.Fprintf(out, "  %s\n\n", key.Key)
			fmt.Fprintln(out, "This is the only time the key is shown; store it now.")
			fmt.Fprintln(out, "Producers send logs with the header: Authorization: Api-Key <key>")
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Key name")

	return cmd
}

func newKeysToggleCmd() *cobra.Command {
	var activate, deactivate bool

	cmd := &cobra.Command{
		Use:   "toggle <key-id>",
		Short: "Activate or deactivate an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid key id %q", args[0])
			}
			if activate == deactivate {
				return fmt.Errorf("pass exactly one of --activate or --deactivate")
			}

			env, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			if err := env.requireSession(ctx); err != nil {
				return err
			}

			active := activate
			key, err := env.Resources.UpdateAPIKey(ctx, id, nil, &active)
			if err != nil {
				return surfaceError(err)
			}

			state := "deactivated"
			if key.IsActive {
				state = "activated"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Key %q (id %d) %s\n", key.Name, key.ID, state)
			return nil
		},
	}

	cmd.Flags().BoolVar(&activate, "activate", false, "Activate the key")
	cmd.Flags().BoolVar(&deactivate, "deactivate", false, "Deactivate the key")

	return cmd
}

func newKeysDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <key-id>",
		Short: "Revoke an API key permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid key id %q", args[0])
			}

			env, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			if err := env.requireSession(ctx); err != nil {
				return err
			}

			if !confirmAction(cmd, yes, fmt.Sprintf("Revoke key %d? Producers using it will stop working.", id)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}

			if err := env.Resources.DeleteAPIKey(ctx, id); err != nil {
				return surfaceError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Revoked key %d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
