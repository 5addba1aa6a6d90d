// Package cli is the driving adapter: cobra commands that wire stores,
// adapters and services per invocation and render the plain results the
// core returns.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewmarks/internal/adapter/driven/csvstore"
	"github.com/ericfisherdev/reviewmarks/internal/adapter/driven/gitattr"
	githubadapter "github.com/ericfisherdev/reviewmarks/internal/adapter/driven/github"
	gitlabadapter "github.com/ericfisherdev/reviewmarks/internal/adapter/driven/gitlab"
	"github.com/ericfisherdev/reviewmarks/internal/config"
	"github.com/ericfisherdev/reviewmarks/internal/domain/port/driven"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitRuntimeError = 1
	ExitUsageError   = 2
)

var flagWorkspace string

var rootCmd = &cobra.Command{
	Use:           "reviewmarks",
	Short:         "Line-level code review annotations with tracker sync",
	Long:          "reviewmarks keeps review comments in a CSV file next to the code, imports findings from an analysis tool's review sessions, and syncs them with an issue tracker.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.PersistentFlags().StringVarP(&flagWorkspace, "workspace", "w", ".", "Workspace root directory")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(reportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if exitCode == ExitSuccess {
			return ExitRuntimeError
		}
	}
	return exitCode
}

func loadConfig() (*config.Config, error) {
	return config.Load(flagWorkspace)
}

func newStore(cfg *config.Config) driven.RecordStore {
	return csvstore.New(cfg.CSVPath)
}

func newResolver(cfg *config.Config) driven.AttributionResolver {
	return gitattr.New(cfg.AttributionTTL)
}

// newTracker builds the configured tracker client, or nil when the
// workspace carries no tracker configuration. Services treat nil as
// "abort with zero side effects".
func newTracker(cfg *config.Config) (driven.TrackerClient, error) {
	if !cfg.Tracker.Configured() {
		return nil, nil
	}
	switch cfg.Tracker.Kind {
	case "gitlab":
		return gitlabadapter.NewClient(cfg.Tracker.BaseURL, cfg.Tracker.Token, cfg.Tracker.Project, cfg.Tracker.Timeout)
	case "github":
		return githubadapter.NewClient(cfg.Tracker.Token, cfg.Tracker.Project)
	default:
		return nil, fmt.Errorf("unknown tracker kind %q", cfg.Tracker.Kind)
	}
}
