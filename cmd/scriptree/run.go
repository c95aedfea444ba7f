// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"scriptree-cli/internal/issue"
	"scriptree-cli/internal/runner"
	"scriptree-cli/internal/tui"
	"scriptree-cli/internal/workspace"
	"scriptree-cli/pkg/scripttree"
)

type (
	runFlagValues struct {
		runtime        string
		packageManager string
		workspace      string
		direct         bool
		dryRun         bool
	}

	// preparedRun is a script ready to execute.
	preparedRun struct {
		session string
		runtime runner.Runtime
		inv     runner.Invocation
	}
)

func newRunCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &runFlagValues{}
	runCmd := &cobra.Command{
		Use:   "run [script] [-- args...]",
		Short: "Run a script",
		Long: `Run a script by its full name.

By default the script runs through the package manager ("npm run <script>").
With --direct the raw command runs in the project folder with
node_modules/.bin on PATH. Arguments after "--" are passed to the script.

Without a script name an interactive picker is shown.`,
		Args:              cobra.ArbitraryArgs,
		ValidArgsFunction: completeScripts(app, rootFlags, flags),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, app, rootFlags, flags, args)
		},
	}

	runCmd.Flags().StringVar(&flags.runtime, "runtime", "", "shell runtime (native, virtual); defaults to config")
	runCmd.Flags().StringVarP(&flags.packageManager, "package-manager", "p", "", "package manager (npm, pnpm, yarn, bun, auto); defaults to config")
	runCmd.Flags().StringVarP(&flags.workspace, "workspace", "w", "", "workspace folder name to run in (default: project root)")
	runCmd.Flags().BoolVar(&flags.direct, "direct", false, "run the raw command instead of '<pm> run <script>'")
	runCmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "print the command line without running it")

	_ = runCmd.RegisterFlagCompletionFunc("runtime", cobra.FixedCompletions(
		[]string{string(runner.RuntimeNative), string(runner.RuntimeVirtual)}, cobra.ShellCompDirectiveNoFileComp))
	_ = runCmd.RegisterFlagCompletionFunc("package-manager", cobra.FixedCompletions(
		[]string{"npm", "pnpm", "yarn", "bun", "auto"}, cobra.ShellCompDirectiveNoFileComp))

	return runCmd
}

func runScript(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *runFlagValues, args []string) error {
	ctx := cmd.Context()
	s, err := app.loadSettings(ctx, rootFlags)
	if err != nil {
		return err
	}

	project, err := app.findProject(s, flags.workspace)
	if err != nil {
		return err
	}

	var name string
	var extra []string
	if len(args) > 0 {
		name, extra = args[0], args[1:]
	} else {
		if !tui.IsInteractive() {
			return errors.New("no script given; pass a script name or run in a terminal to pick one")
		}
		name, err = tui.PickScript(ctx, project.Tree, tui.PickOptions{Title: "Run script in " + project.Folder.Name})
		if err != nil {
			return err
		}
	}

	leaf, err := findLeaf(project, name)
	if err != nil {
		return err
	}

	prep, err := app.prepareRun(s, project.Folder, leaf, flags, extra)
	if err != nil {
		return err
	}

	if flags.dryRun {
		fmt.Fprintln(app.stdout, prep.inv.Line)
		return nil
	}

	finish, err := app.Sessions.Begin(prep.session)
	if err != nil {
		return err
	}

	s.logger.Debug("running script", "session", prep.session, "runtime", prep.runtime.Name(), "line", prep.inv.Line)
	res := runner.Execute(ctx, prep.runtime, prep.inv, runner.IO{Stdin: app.stdin, Stdout: app.stdout, Stderr: app.stderr})
	finish(res)

	if res.Error != nil {
		ec := issue.NewErrorContext().
			WithOperation("run script").
			WithResource(prep.session).
			Wrap(res.Error)
		if id := issueFor(res.Error); id != 0 {
			ec = ec.WithIssue(id)
		} else {
			ec = ec.WithIssue(issue.ScriptExecutionFailedId)
		}
		return ec.BuildError()
	}
	if !res.ExitCode.IsSuccess() {
		s.logger.Debug("script failed", "session", prep.session, "exit", res.ExitCode)
		return &ExitError{Code: res.ExitCode}
	}
	return nil
}

// findProject returns the project root, or the workspace folder called name.
func (app *App) findProject(s *settings, name string) (workspace.Project, error) {
	projects, err := app.loadProjects(s, name != "")
	if err != nil {
		return workspace.Project{}, err
	}

	project := projects[0]
	if name != "" {
		found := false
		for _, p := range projects {
			if p.Folder.Name == name {
				project, found = p, true
				break
			}
		}
		if !found {
			return workspace.Project{}, fmt.Errorf("workspace folder %q not found", name)
		}
	}

	if project.Err != nil {
		return workspace.Project{}, issue.NewErrorContext().
			WithOperation("load scripts").
			WithResource(project.Folder.Dir).
			WithIssue(issueFor(project.Err)).
			Wrap(project.Err).
			BuildError()
	}
	return project, nil
}

// findLeaf looks up a script by full name and suggests close names when
// there is no exact match.
func findLeaf(project workspace.Project, name string) (*scripttree.Leaf, error) {
	if leaf, ok := project.Tree.Find(name); ok {
		return leaf, nil
	}

	leaves := project.Tree.Leaves()
	names := make([]string, len(leaves))
	for i, l := range leaves {
		names[i] = l.FullName
	}

	ec := issue.NewErrorContext().
		WithOperation("find script").
		WithResource(name).
		WithIssue(issue.ScriptNotFoundId).
		Wrap(fmt.Errorf("%q in %s: %w", name, project.Folder.Name, errScriptNotFound))
	for i, m := range fuzzy.Find(name, names) {
		if i == 3 {
			break
		}
		ec = ec.WithSuggestion("Did you mean '" + m.Str + "'?")
	}
	return nil, ec.BuildError()
}

// prepareRun resolves the package manager and runtime for leaf and builds
// the invocation. The script is not started.
func (app *App) prepareRun(s *settings, folder workspace.Folder, leaf *scripttree.Leaf, flags *runFlagValues, args []string) (*preparedRun, error) {
	pmName := runner.PackageManager(s.cfg.PackageManager)
	if flags.packageManager != "" {
		pmName = runner.PackageManager(flags.packageManager)
	}
	if valid, errs := pmName.IsValid(); !valid {
		return nil, errs[0]
	}
	pm := runner.Resolve(app.Fs, folder.Dir, pmName)

	rtName := runner.RuntimeName(s.cfg.Runtime)
	if flags.runtime != "" {
		rtName = runner.RuntimeName(flags.runtime)
	}
	rt, err := app.Runtimes.Get(rtName)
	if err != nil {
		if errors.Is(err, runner.ErrRuntimeNotAvailable) && rtName == runner.RuntimeNative {
			err = fmt.Errorf("%w: %w", err, runner.ErrShellNotFound)
		}
		return nil, err
	}

	req := runner.Request{
		Script:         leaf.FullName,
		Command:        leaf.Command,
		Dir:            folder.Dir,
		Args:           args,
		PackageManager: pm,
		Direct:         flags.direct,
	}
	inv, err := req.Invocation(app.Environ())
	if err != nil {
		return nil, err
	}

	if !flags.direct && !flags.dryRun {
		if _, err := pm.LookPath(); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("run script").
				WithResource(leaf.FullName).
				WithIssue(issue.PackageManagerNotFoundId).
				WithSuggestion("Install " + pm.String() + " or pass --direct to run the command without it").
				Wrap(err).
				BuildError()
		}
	}

	s.logger.Debug("prepared script", "pm", pm, "runtime", rtName, "dir", folder.Dir)
	return &preparedRun{
		session: runner.SessionName(folder.Name, leaf.FullName),
		runtime: rt,
		inv:     inv,
	}, nil
}

// completeScripts completes script names of the project root.
func completeScripts(app *App, rootFlags *rootFlagValues, flags *runFlagValues) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveDefault
		}
		s, err := app.loadSettings(cmd.Context(), rootFlags)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		project, err := app.findProject(s, flags.workspace)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var out []cobra.Completion
		for _, leaf := range project.Tree.Leaves() {
			out = append(out, cobra.CompletionWithDesc(leaf.FullName, leaf.Command))
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
