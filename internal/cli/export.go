package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewmarks/internal/application"
)

var flagExportIDs []string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export un-synced comments as tracker issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		tracker, err := newTracker(cfg)
		if err != nil {
			return err
		}
		renderer, err := application.NewTemplateRendererFromFile(cfg.Tracker.TemplatePath)
		if err != nil {
			exitCode = ExitUsageError
			return err
		}

		svc := application.NewExportService(tracker, newStore(cfg), renderer, cfg.Tracker.DefaultLabels)
		result, err := svc.Run(cmd.Context(), flagExportIDs)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "exported: %d  failed: %d\n", result.Exported, result.Failed)
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  record %s: %s\n", e.RecordID, e.Message)
		}
		if result.Failed > 0 {
			exitCode = ExitRuntimeError
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringSliceVar(&flagExportIDs, "id", nil, "Only export these record IDs")
}
