package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewmarks/internal/adapter/driven/report"
	"github.com/ericfisherdev/reviewmarks/internal/application"
)

var (
	flagReportFormat string
	flagReportOut    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the review as a JSON, Markdown or HTML report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		svc := application.NewRecordService(newStore(cfg), newResolver(cfg), cfg.Workspace, cfg.Author, cfg.HiddenStatuses)
		records, err := svc.ListAll(cmd.Context())
		if err != nil {
			return err
		}

		var out io.Writer = os.Stdout
		if flagReportOut != "" {
			f, err := os.Create(flagReportOut)
			if err != nil {
				return fmt.Errorf("creating %s: %w", flagReportOut, err)
			}
			defer f.Close()
			out = f
		}

		switch flagReportFormat {
		case "json":
			return report.WriteJSON(out, records)
		case "markdown", "md":
			return report.WriteMarkdown(out, records)
		case "html":
			return report.WriteHTML(out, records)
		default:
			exitCode = ExitUsageError
			return fmt.Errorf("unknown format %q (want json, markdown or html)", flagReportFormat)
		}
	},
}

func init() {
	reportCmd.Flags().StringVar(&flagReportFormat, "format", "markdown", "Report format: json, markdown, html")
	reportCmd.Flags().StringVarP(&flagReportOut, "out", "o", "", "Output file (default: stdout)")
}
