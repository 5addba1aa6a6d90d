package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewmarks/internal/application"
)

var flagListAll bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List review comments",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		svc := application.NewRecordService(newStore(cfg), newResolver(cfg), cfg.Workspace, cfg.Author, cfg.HiddenStatuses)

		list := svc.ListVisible
		if flagListAll {
			list = svc.ListAll
		}
		records, err := list(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FILE\tLINES\tPRIORITY\tSTATUS\tISSUE\tTITLE")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.File, r.Lines, r.Priority.Label(), r.Status, r.IssueID, r.Title)
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().BoolVarP(&flagListAll, "all", "a", false, "Include records with hidden statuses")
}
