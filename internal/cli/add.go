package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewmarks/internal/application"
	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
)

var (
	flagAddFile       string
	flagAddStartLine  int
	flagAddStartCol   int
	flagAddEndLine    int
	flagAddEndCol     int
	flagAddComment    string
	flagAddPriority   int
	flagAddCategory   string
	flagAddAdditional string
	flagAddAssignee   string
	flagAddPrivate    bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Attach a review comment to a line range",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		svc := application.NewRecordService(newStore(cfg), newResolver(cfg), cfg.Workspace, cfg.Author, cfg.HiddenStatuses)

		rec, err := svc.Create(cmd.Context(), application.NewAnnotation{
			File:       flagAddFile,
			StartLine:  flagAddStartLine,
			StartCol:   flagAddStartCol,
			EndLine:    flagAddEndLine,
			EndCol:     flagAddEndCol,
			Comment:    flagAddComment,
			Priority:   model.Priority(flagAddPriority),
			Category:   flagAddCategory,
			Additional: flagAddAdditional,
			Assignee:   flagAddAssignee,
			Private:    flagAddPrivate,
		})
		if err != nil {
			exitCode = ExitUsageError
			return err
		}

		fmt.Fprintf(os.Stdout, "added %s %s %s\n", rec.ID, rec.File, rec.Lines)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&flagAddFile, "file", "f", "", "File the comment targets (required)")
	addCmd.Flags().IntVar(&flagAddStartLine, "start-line", 1, "First line of the range")
	addCmd.Flags().IntVar(&flagAddStartCol, "start-col", 0, "First column of the range")
	addCmd.Flags().IntVar(&flagAddEndLine, "end-line", 0, "Last line of the range (defaults to start line)")
	addCmd.Flags().IntVar(&flagAddEndCol, "end-col", 0, "Last column of the range")
	addCmd.Flags().StringVarP(&flagAddComment, "comment", "m", "", "Comment text (required)")
	addCmd.Flags().IntVarP(&flagAddPriority, "priority", "p", 0, "Priority: 0=unset 1=low 2=medium 3=high")
	addCmd.Flags().StringVar(&flagAddCategory, "category", "", "Free-text category")
	addCmd.Flags().StringVar(&flagAddAdditional, "additional", "", "Additional info")
	addCmd.Flags().StringVar(&flagAddAssignee, "assignee", "", "Assignee handle for tracker export")
	addCmd.Flags().BoolVar(&flagAddPrivate, "private", false, "Mark the comment private")
	_ = addCmd.MarkFlagRequired("file")
	_ = addCmd.MarkFlagRequired("comment")
}
