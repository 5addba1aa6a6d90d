package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewmarks/internal/application"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull issue status back from the tracker",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		tracker, err := newTracker(cfg)
		if err != nil {
			return err
		}

		svc := application.NewSyncService(tracker, newStore(cfg))
		result, err := svc.Run(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "checked: %d  updated: %d  not found: %d\n",
			result.Checked, result.Updated, len(result.NotFound))
		for _, id := range result.NotFound {
			fmt.Fprintf(os.Stderr, "  issue %s not found on tracker\n", id)
		}
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  %s\n", e.Message)
		}
		return nil
	},
}
