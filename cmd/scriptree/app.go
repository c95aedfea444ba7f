// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"scriptree-cli/internal/config"
	"scriptree-cli/internal/issue"
	"scriptree-cli/internal/refresh"
	"scriptree-cli/internal/runner"
	"scriptree-cli/internal/workspace"
	"scriptree-cli/pkg/scripttree"
)

type (
	// App wires CLI services and shared dependencies. All Cobra command
	// handlers receive an App reference.
	App struct {
		Config   config.Provider
		Fs       afero.Fs
		Runtimes *runner.Registry
		Sessions *runner.Sessions
		// Environ returns the environment scripts inherit.
		Environ func() []string

		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   config.Provider
		Fs       afero.Fs
		Runtimes *runner.Registry
		Sessions *runner.Sessions
		Environ  func() []string
		Stdin    io.Reader
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// rootFlagValues holds the persistent flags of one invocation.
	rootFlagValues struct {
		verbose    bool
		configPath string
		dir        string
		separator  string

		// separatorSet is true when --separator was given, even as "".
		separatorSet bool
	}

	// settings is the resolved configuration for one invocation.
	settings struct {
		cfg     *config.Config
		root    string
		sep     scripttree.Separator
		verbose bool
		logger  *log.Logger
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Runtimes == nil {
		deps.Runtimes = runner.NewRegistry()
	}
	if deps.Sessions == nil {
		deps.Sessions = runner.NewSessions(nil)
	}
	if deps.Environ == nil {
		deps.Environ = os.Environ
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}

	return &App{
		Config:   deps.Config,
		Fs:       deps.Fs,
		Runtimes: deps.Runtimes,
		Sessions: deps.Sessions,
		Environ:  deps.Environ,
		stdin:    deps.Stdin,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}
}

// loadSettings resolves the project root, loads configuration for it and
// applies the --separator flag on top.
func (app *App) loadSettings(ctx context.Context, flags *rootFlagValues) (*settings, error) {
	dir := flags.dir
	if dir == "" {
		dir = "."
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("resolve project directory").
			WithResource(dir).
			Wrap(err).
			BuildError()
	}

	cfg, err := app.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: flags.configPath,
		ProjectDir:     root,
		Fs:             app.Fs,
	})
	if err != nil {
		return nil, err
	}

	sep := cfg.Separator
	if flags.separatorSet || flags.separator != "" {
		sep = scripttree.Separator(flags.separator)
	}
	if valid, errs := sep.IsValid(); !valid {
		return nil, issue.NewErrorContext().
			WithOperation("apply separator").
			WithIssue(issue.InvalidSeparatorId).
			WithSuggestion("Pass a non-empty value to --separator, e.g. --separator ':'").
			Wrap(errs[0]).
			BuildError()
	}

	verbose := flags.verbose || cfg.UI.Verbose
	return &settings{
		cfg:     cfg,
		root:    root,
		sep:     sep,
		verbose: verbose,
		logger:  newLogger(app.stderr, verbose),
	}, nil
}

// workspaceOptions returns the folder discovery options. Without all, only
// the project root is listed.
func (s *settings) workspaceOptions(all bool) workspace.Options {
	opts := workspace.Options{Root: s.root}
	if !all {
		return opts
	}
	for _, ws := range s.cfg.Workspaces {
		opts.Extra = append(opts.Extra, string(ws))
	}
	opts.ExpandNpmWorkspaces = s.cfg.NpmWorkspaces
	return opts
}

// loadProjects discovers and loads folders once.
func (app *App) loadProjects(s *settings, all bool) ([]workspace.Project, error) {
	folders, err := workspace.Discover(app.Fs, s.workspaceOptions(all))
	if err != nil {
		return nil, issue.WrapWithOperation(err, "discover workspace folders")
	}
	return workspace.LoadAll(app.Fs, folders, s.sep), nil
}

// newPublisher builds a refresh publisher that reloads settings on every
// refresh, so edits to .scriptree.toml take effect without a restart.
func (app *App) newPublisher(flags *rootFlagValues, logger *log.Logger) *refresh.Publisher {
	loader := refresh.WorkspaceLoader{
		Fs: app.Fs,
		Options: func(ctx context.Context) (workspace.Options, scripttree.Separator, error) {
			s, err := app.loadSettings(ctx, flags)
			if err != nil {
				return workspace.Options{}, "", err
			}
			return s.workspaceOptions(true), s.sep, nil
		},
	}
	return refresh.NewPublisher(loader, logger)
}
