package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"logdeck/utils"
)

func newExportCmd() *cobra.Command {
	var projectID int64
	var kind, outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download a CSV export",
		Long: "Download a CSV export of a project's logs, or of an analytics data type.\n" +
			"Kinds: events, llm, all, monthly_logs, llm_sources, log_levels.",
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

			var data []byte
			var suggested string

			switch kind {
			case "events":
				data, suggested, err = env.Client.DownloadEventLogsCSV(ctx, projectID)
			case "llm":
				data, suggested, err = env.Client.DownloadLlmLogsCSV(ctx, projectID)
			case "all":
				data, suggested, err = env.Client.DownloadAllLogsCSV(ctx, projectID)
			case "monthly_logs", "llm_sources", "log_levels":
				data, suggested, err = env.Client.DownloadAnalyticsCSV(ctx, kind)
			default:
				return fmt.Errorf("invalid kind %q", kind)
			}
			if err != nil {
				return surfaceError(err)
			}

			if outDir == "" {
				outDir = env.Config.Data.DownloadDir
			}
			path, err := utils.SaveDownload(outDir, suggested, kind, data)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d bytes to %s\n", len(data), path)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&projectID, "project", "P", 0, "Project id to export (log kinds only)")
	cmd.Flags().StringVarP(&kind, "kind", "k", "events", "Export kind")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to save into (default: config download_dir or ~/Downloads)")

	return cmd
}
