// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"scriptree-cli/internal/refresh"
	"scriptree-cli/internal/workspace"
)

type watchFlagValues struct {
	format string
}

func newWatchCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &watchFlagValues{}
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the script tree again whenever a manifest changes",
		Long: `Print the script tree of every workspace folder, then keep watching
package.json and .scriptree.toml and print it again after each change.
Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, app, rootFlags, flags)
		},
	}

	watchCmd.Flags().StringVarP(&flags.format, "format", "f", formatTree, "output format (tree, json, flat)")
	return watchCmd
}

func runWatch(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *watchFlagValues) error {
	if err := validateFormat(flags.format); err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := app.loadSettings(ctx, rootFlags)
	if err != nil {
		return err
	}

	pub := app.newPublisher(rootFlags, s.logger)
	render := func(projects []workspace.Project) {
		if err := writeProjects(app.stdout, projects, flags.format, s.cfg.UI.ColorScheme); err != nil {
			s.logger.Error("render scripts", "err", err)
		}
	}

	snap, err := pub.Refresh(ctx)
	if err != nil {
		return err
	}
	render(snap.Projects)

	unsubscribe := pub.Subscribe(func(snap *refresh.Snapshot) {
		fmt.Fprintf(app.stdout, "\n%s Reloaded (%d folder(s))\n\n", CmdStyle.Render("→"), len(snap.Projects))
		render(snap.Projects)
	})
	defer unsubscribe()

	w, err := newManifestWatcher(s, pub, s.logger, nil)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "\n%s Watching for changes (Ctrl+C to stop)...\n", CmdStyle.Render("→"))
	return w.Run(ctx)
}
