// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree bound to app and flags.
func NewRootCommand(app *App, flags *rootFlagValues) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scriptree",
		Short: "Browse and run package.json scripts as a tree",
		Long: TitleStyle.Render("scriptree") + SubtitleStyle.Render(" - package.json scripts, grouped") + `

scriptree splits script names on a separator (":" by default) and shows
scripts sharing a prefix as one group, so "build", "build:watch" and
"build:prod" appear together.

` + SubtitleStyle.Render("Examples:") + `
  scriptree list                 Show the script tree of the current project
  scriptree list --format flat   One script per line
  scriptree run build:watch      Run a script through the package manager
  scriptree browse --watch       Interactive tree that follows manifest edits
  scriptree config show          Show the effective configuration`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			flags.separatorSet = cmd.Flags().Changed("separator")
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is the platform config dir's scriptree/config.cue)")
	rootCmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", ".", "project root holding package.json")
	rootCmd.PersistentFlags().StringVarP(&flags.separator, "separator", "s", "", "separator splitting script names (overrides config)")

	rootCmd.AddCommand(
		newListCommand(app, flags),
		newRunCommand(app, flags),
		newBrowseCommand(app, flags),
		newWatchCommand(app, flags),
		newConfigCommand(app, flags),
		newCompletionCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Run executes the CLI with args and returns the process exit code.
func Run(ctx context.Context, app *App, args []string) int {
	flags := &rootFlagValues{}
	rootCmd := NewRootCommand(app, flags)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(newErrorHandler(flags)),
	)
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code != 0 {
		return int(exitErr.Code)
	}
	return 1
}

// Execute runs the CLI with the process arguments and exits.
func Execute() {
	os.Exit(Run(context.Background(), NewApp(Dependencies{}), os.Args[1:]))
}
