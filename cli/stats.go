package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show account stats, or a project's analytics",
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

			if projectID == 0 {
				stats, err := env.Resources.UserStats(ctx)
				if err != nil {
					return surfaceError(err)
				}
				fmt.Fprintf(out, "Projects:   %d\nEvent logs: %d\nLLM logs:   %d\nAPI keys:   %d\n",
					stats.ProjectCount, stats.EventLogCount, stats.LlmLogCount, stats.APIKeyCount)
				return nil
			}

			snap, err := env.Resources.Analytics(ctx, projectID)
			if err != nil {
				return surfaceError(err)
			}

			if len(snap.MonthlyLogs) > 0 {
				fmt.Fprintln(out, "Monthly logs:")
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "  MONTH\tEVENTS\tLLM")
				for _, m := range snap.MonthlyLogs {
					fmt.Fprintf(w, "  %s\t%d\t%d\n", m.Month, m.EventCount, m.LlmCount)
				}
				w.Flush()
			}

			if len(snap.LlmSources) > 0 {
				fmt.Fprintln(out, "\nLLM sources:")
				max := int64(1)
				for _, s := range snap.LlmSources {
					if s.Value > max {
						max = s.Value
					}
				}
				for _, s := range snap.LlmSources {
					fmt.Fprintf(out, "  %-20s %s %d\n", s.Name, bar(s.Value, max, 30), s.Value)
				}
			}

			if len(snap.LogLevels) > 0 {
				fmt.Fprintln(out, "\nLog levels:")
				max := int64(1)
				for _, l := range snap.LogLevels {
					if l.Count > max {
						max = l.Count
					}
				}
				for _, l := range snap.LogLevels {
					fmt.Fprintf(out, "  %-10s %s %d\n", l.Level, bar(l.Count, max, 30), l.Count)
				}
			}

			return nil
		},
	}

	cmd.Flags().Int64VarP(&projectID, "project", "P", 0, "Project id for per-project analytics")

	return cmd
}

// bar renders a proportional text bar for terminal charts.
func bar(value, max int64, width int) string {
	if max <= 0 {
		max = 1
	}
	n := int(value * int64(width) / max)
	if n < 1 && value > 0 {
		n = 1
	}
	return strings.Repeat("#", n)
}
