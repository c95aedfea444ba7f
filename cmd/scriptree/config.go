// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scriptree-cli/internal/config"
)

// newConfigCommand creates the `scriptree config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage scriptree configuration",
		Long: `Manage scriptree configuration.

Configuration is stored in:
  - Linux: ~/.config/scriptree/config.cue
  - macOS: ~/Library/Application Support/scriptree/config.cue
  - Windows: %APPDATA%\scriptree\config.cue

A .scriptree.toml next to package.json overrides the separator, package
manager and runtime for that project. SCRIPTREE_* environment variables
override both.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, rootFlags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app, rootFlags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath(rootFlags)
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.loadSettings(cmd.Context(), rootFlags)
			if err != nil {
				return err
			}
			cfg := *s.cfg
			cfg.Separator = s.sep
			fmt.Fprint(app.stdout, config.GenerateCUE(&cfg))
			return nil
		},
	})

	return cfgCmd
}

func configFilePath(rootFlags *rootFlagValues) (string, error) {
	if rootFlags.configPath != "" {
		return rootFlags.configPath, nil
	}
	return config.FilePath()
}

func showConfig(ctx context.Context, app *App, rootFlags *rootFlagValues) error {
	s, err := app.loadSettings(ctx, rootFlags)
	if err != nil {
		return err
	}
	cfg := s.cfg

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	line := func(key string, value any) {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render(key), valueStyle.Render(fmt.Sprint(value)))
	}
	source := func(path string) string {
		if path == "" {
			return SubtitleStyle.Render("(none)")
		}
		return path
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), source(cfg.Sources.File))
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Project file"), source(cfg.Sources.Project))
	fmt.Fprintln(app.stdout)

	line("separator", fmt.Sprintf("%q", s.sep))
	line("package_manager", cfg.PackageManager)
	line("runtime", cfg.Runtime)
	line("npm_workspaces", cfg.NpmWorkspaces)

	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("workspaces"))
	if len(cfg.Workspaces) == 0 {
		fmt.Fprintf(app.stdout, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, ws := range cfg.Workspaces {
		fmt.Fprintf(app.stdout, "  - %s\n", valueStyle.Render(string(ws)))
	}

	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("watch"))
	fmt.Fprintf(app.stdout, "  debounce: %s\n", valueStyle.Render(cfg.Watch.Debounce.String()))
	if len(cfg.Watch.Ignore) > 0 {
		fmt.Fprintf(app.stdout, "  ignore: %s\n", valueStyle.Render(strings.Join(cfg.Watch.Ignore, ", ")))
	}

	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(app.stdout, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(app.stdout, "  verbose: %s\n", valueStyle.Render(fmt.Sprint(cfg.UI.Verbose)))
	fmt.Fprintf(app.stdout, "  expand_all: %s\n", valueStyle.Render(fmt.Sprint(cfg.UI.ExpandAll)))
	return nil
}

func initConfig(app *App, rootFlags *rootFlagValues) error {
	path, err := configFilePath(rootFlags)
	if err != nil {
		return err
	}

	created, err := config.CreateDefaultConfig(app.Fs, path)
	if err != nil {
		return err
	}
	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
