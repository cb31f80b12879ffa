package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"logdeck/view"
)

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Browse and manage logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		newLogsListCmd(),
		newLogsShowCmd(),
		newLogsDeleteCmd(),
		newLogsClearCmd(),
	)

	return cmd
}

func newLogsListCmd() *cobra.Command {
	var projectID int64
	var kind, level, search string
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List logs for a project",
		Long: "List a project's logs, ten per page. Filtering and pagination happen\n" +
			"client-side over the full fetched collection, matching the dashboard.",
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

			lv := view.NewLogView()
			lv.SelectProject(projectID)
			lv.SetSearch(search)
			out := cmd.OutOrStdout()

			switch kind {
			case "events":
				lv.SetLevel(level)
				logs, err := env.Resources.EventLogs(ctx, projectID)
				if err != nil {
					return surfaceError(err)
				}
				filtered := view.FilterEventLogs(logs, lv.Level(), lv.Search())
				lv.SetPage(page, view.TotalPages(len(filtered)))
				visible, totalPages := lv.VisibleEventLogs(logs)

				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tLEVEL\tUSER\tTIMESTAMP\tMESSAGE")
				for _, l := range visible {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", l.ID, l.Level, l.UserID, l.Timestamp, l.Message)
				}
				w.Flush()
				fmt.Fprintf(out, "\nPage %d of %d (%d matching logs)\n", lv.Page(), totalPages, len(filtered))

			case "llm":
				logs, err := env.Resources.LlmLogs(ctx, projectID)
				if err != nil {
					return surfaceError(err)
				}
				filtered := view.FilterLlmLogs(logs, lv.Search())
				lv.SelectTab(view.TabLLM)
				lv.SetPage(page, view.TotalPages(len(filtered)))
				visible, totalPages := lv.VisibleLlmLogs(logs)

				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSOURCE\tUSER\tTIMESTAMP\tQUERY")
				for _, l := range visible {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", l.ID, l.Source, l.UserID, l.Timestamp, truncate(l.Query, 60))
				}
				w.Flush()
				fmt.Fprintf(out, "\nPage %d of %d (%d matching logs)\n", lv.Page(), totalPages, len(filtered))

			default:
				return fmt.Errorf("invalid --type %q (want events or llm)", kind)
			}

			return nil
		},
	}

	cmd.Flags().Int64VarP(&projectID, "project", "P", 0, "Project id to list logs for")
	cmd.Flags().StringVarP(&kind, "type", "t", "events", "Log kind: events or llm")
	cmd.Flags().StringVarP(&level, "level", "l", "", "Level filter for event logs (info|warning|error|debug)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Free-text filter")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number (10 logs per page)")
	cmd.MarkFlagRequired("project")

	return cmd
}

func newLogsShowCmd() *cobra.Command {
	var projectID int64
	var kind string

	cmd := &cobra.Command{
		Use:   "show <log-id>",
		Short: "Show one log record in full, metadata included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid log id %q", args[0])
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

			out := cmd.OutOrStdout()

			switch kind {
			case "events":
				logs, err := env.Resources.EventLogs(ctx, projectID)
				if err != nil {
					return surfaceError(err)
				}
				for _, l := range logs {
					if l.ID != id {
						continue
					}
					fmt.Fprintf(out, "ID:        %d\nLevel:     %s\nUser:      %s\nTimestamp: %s\nMessage:   %s\n",
						l.ID, l.Level, l.UserID, l.Timestamp, l.Message)
					printMetadata(out, l.Metadata)
					return nil
				}
			case "llm":
				logs, err := env.Resources.LlmLogs(ctx, projectID)
				if err != nil {
					return surfaceError(err)
				}
				for _, l := range logs {
					if l.ID != id {
						continue
					}
					fmt.Fprintf(out, "ID:        %d\nSource:    %s\nUser:      %s\nTimestamp: %s\n\nQuery:\n%s\n\nResponse:\n%s\n",
						l.ID, l.Source, l.UserID, l.Timestamp, l.Query, l.Response)
					printMetadata(out, l.Metadata)
					return nil
				}
			default:
				return fmt.Errorf("invalid --type %q (want events or llm)", kind)
			}

			return fmt.Errorf("log %d not found in project %d", id, projectID)
		},
	}

	cmd.Flags().Int64VarP(&projectID, "project", "P", 0, "Project id the log belongs to")
	cmd.Flags().StringVarP(&kind, "type", "t", "events", "Log kind: events or llm")
	cmd.MarkFlagRequired("project")

	return cmd
}

func newLogsDeleteCmd() *cobra.Command {
	var kind string
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <log-id>",
		Short: "Delete one log record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid log id %q", args[0])
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

			if !confirmAction(cmd, yes, fmt.Sprintf("Delete log %d?", id)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}

			switch kind {
			case "events":
				err = env.Resources.DeleteEventLog(ctx, id)
			case "llm":
				err = env.Resources.DeleteLlmLog(ctx, id)
			default:
				return fmt.Errorf("invalid --type %q (want events or llm)", kind)
			}
			if err != nil {
				return surfaceError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted log %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", "events", "Log kind: events or llm")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newLogsClearCmd() *cobra.Command {
	var projectID int64
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every log of a project",
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

			if !confirmAction(cmd, yes, fmt.Sprintf("Delete ALL logs of project %d? This cannot be undone.", projectID)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}

			if err := env.Resources.DeleteAllLogs(ctx, projectID); err != nil {
				return surfaceError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cleared all logs of project %d\n", projectID)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&projectID, "project", "P", 0, "Project id to clear")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.MarkFlagRequired("project")

	return cmd
}

func printMetadata(out io.Writer, metadata map[string]interface{}) {
	if len(metadata) == 0 {
		return
	}
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return
	}
	fmt.Fprintf(out, "\nMetadata:\n%s\n", data)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
