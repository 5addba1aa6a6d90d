package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewmarks/internal/adapter/driven/reviewdb"
	"github.com/ericfisherdev/reviewmarks/internal/application"
	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
)

var (
	flagImportBranch string
	flagImportSince  string
	flagImportUntil  string
	flagImportLatest bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import comments from the analysis tool's review sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Import.DBPath == "" {
			exitCode = ExitUsageError
			return fmt.Errorf("no review database configured: set import.db_path or REVIEWMARKS_REVIEWDB_PATH")
		}

		filter := model.SessionFilter{
			Branch:     flagImportBranch,
			LatestOnly: flagImportLatest,
		}
		if filter.Since, err = parseDateFlag(flagImportSince); err != nil {
			exitCode = ExitUsageError
			return err
		}
		if filter.Until, err = parseDateFlag(flagImportUntil); err != nil {
			exitCode = ExitUsageError
			return err
		}

		source, err := reviewdb.Open(cfg.Import.DBPath)
		if err != nil {
			return err
		}
		defer source.Close()

		svc := application.NewImportService(
			source, newStore(cfg), newResolver(cfg),
			cfg.Workspace, cfg.Import.URLTemplate, cfg.Import.BaseURL,
		)
		stats, err := svc.Run(cmd.Context(), filter)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout,
			"reviews: %d  imported: %d  skipped: %d resolved, %d no file, %d no message, %d duplicate\n",
			stats.ReviewsConsidered, stats.CommentsImported,
			stats.SkippedResolved, stats.SkippedNoFile,
			stats.SkippedNoMessage, stats.SkippedDuplicate,
		)
		return nil
	},
}

// parseDateFlag accepts a date ("2026-01-31") or RFC 3339 timestamp.
func parseDateFlag(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD or RFC 3339", v)
}

func init() {
	importCmd.Flags().StringVar(&flagImportBranch, "branch", "", "Only import reviews of this branch")
	importCmd.Flags().StringVar(&flagImportSince, "since", "", "Only import reviews completed on or after this date")
	importCmd.Flags().StringVar(&flagImportUntil, "until", "", "Only import reviews completed on or before this date")
	importCmd.Flags().BoolVar(&flagImportLatest, "latest", false, "Only import the most recently completed review")
}
