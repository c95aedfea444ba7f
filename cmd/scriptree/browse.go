// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"scriptree-cli/internal/refresh"
	"scriptree-cli/internal/runner"
	"scriptree-cli/internal/tui"
	"scriptree-cli/internal/workspace"
	"scriptree-cli/pkg/scripttree"
)

type browseFlagValues struct {
	watch bool
}

func newBrowseCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &browseFlagValues{}
	browseCmd := &cobra.Command{
		Use:     "browse",
		Aliases: []string{"ui"},
		Short:   "Browse and run scripts interactively",
		Long: `Open an interactive tree of the scripts in every workspace folder.

Keys: arrows or h/j/k/l to move and fold, enter to run a script or toggle a
group, / to filter by name, r to reload, q to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, app, rootFlags, flags)
		},
	}

	browseCmd.Flags().BoolVar(&flags.watch, "watch", false, "reload when a manifest changes")
	return browseCmd
}

func runBrowse(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *browseFlagValues) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	s, err := app.loadSettings(ctx, rootFlags)
	if err != nil {
		return err
	}
	if !tui.IsInteractive() {
		return errors.New("browse needs an interactive terminal; use 'scriptree list' instead")
	}

	// The alternate screen owns the terminal; diagnostics would corrupt it.
	quiet := log.New(io.Discard)
	pub := app.newPublisher(rootFlags, quiet)
	snap, err := pub.Refresh(ctx)
	if err != nil {
		return err
	}

	var program *tea.Program
	browser := tui.NewBrowser(tui.BrowserOptions{
		Title:     "scriptree",
		ExpandAll: s.cfg.UI.ExpandAll,
		Styles:    tui.NewStyles(tui.ColorScheme(s.cfg.UI.ColorScheme)),
		Snapshot:  snap,
		Run:       app.browserRunFunc(ctx, rootFlags, quiet),
		Refresh: func() tea.Cmd {
			return func() tea.Msg {
				if _, err := pub.Refresh(ctx); err != nil {
					return tui.StatusMsg{Text: "Reload failed: " + firstLine(err.Error()), Err: true}
				}
				return tui.StatusMsg{Text: "Reloaded"}
			}
		},
	})
	program = tea.NewProgram(browser, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := pub.Subscribe(func(snap *refresh.Snapshot) {
		program.Send(tui.SnapshotMsg{Snapshot: snap})
	})
	defer unsubscribe()

	if flags.watch {
		w, err := newManifestWatcher(s, pub, quiet, func(err error) {
			program.Send(tui.StatusMsg{Text: "Reload failed: " + firstLine(err.Error()), Err: true})
		})
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				program.Send(tui.StatusMsg{Text: "Watching stopped: " + err.Error(), Err: true})
			}
		}()
	}

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("browse: %w", err)
	}
	writeSessionSummary(app.stdout, app.Sessions.List())
	return nil
}

// browserRunFunc runs scripts from the browser. The terminal is handed to
// the script with tea.Exec and returned when it exits.
func (app *App) browserRunFunc(ctx context.Context, rootFlags *rootFlagValues, logger *log.Logger) tui.RunFunc {
	status := func(text string, isErr bool) tea.Cmd {
		return func() tea.Msg { return tui.StatusMsg{Text: text, Err: isErr} }
	}

	return func(folder workspace.Folder, leaf *scripttree.Leaf) tea.Cmd {
		s, err := app.loadSettings(ctx, rootFlags)
		if err != nil {
			return status(firstLine(err.Error()), true)
		}
		s.logger = logger

		prep, err := app.prepareRun(s, folder, leaf, &runFlagValues{}, nil)
		if err != nil {
			return status(firstLine(err.Error()), true)
		}
		finish, err := app.Sessions.Begin(prep.session)
		if err != nil {
			return status(err.Error(), true)
		}
		proc, err := prep.runtime.Prepare(ctx, prep.inv)
		if err != nil {
			finish(runner.Result{ExitCode: 1, Error: err})
			return status(firstLine(err.Error()), true)
		}

		return tea.Exec(proc, func(err error) tea.Msg {
			code, err := runner.ExitCodeOf(err)
			finish(runner.Result{ExitCode: code, Error: err})
			sess, _ := app.Sessions.Get(prep.session)
			return sessionStatus(sess)
		})
	}
}

// sessionStatus describes the last finished run of sess for the status line.
func sessionStatus(sess runner.Session) tui.StatusMsg {
	run := ""
	if sess.Runs > 1 {
		run = fmt.Sprintf(" (run %d)", sess.Runs)
	}
	switch {
	case sess.LastError != nil:
		return tui.StatusMsg{Text: fmt.Sprintf("%s failed%s: %v", sess.Name, run, sess.LastError), Err: true}
	case !sess.LastExit.IsSuccess():
		return tui.StatusMsg{Text: fmt.Sprintf("%s exited with code %d%s", sess.Name, sess.LastExit, run), Err: true}
	default:
		elapsed := sess.FinishedAt.Sub(sess.StartedAt).Round(time.Millisecond)
		return tui.StatusMsg{Text: fmt.Sprintf("%s finished in %s%s", sess.Name, elapsed, run)}
	}
}

// writeSessionSummary lists the scripts started from the browser, once the
// alternate screen is gone.
func writeSessionSummary(w io.Writer, sessions []runner.Session) {
	if len(sessions) == 0 {
		return
	}
	fmt.Fprintln(w, TitleStyle.Render("Scripts run"))
	for _, sess := range sessions {
		mark := SuccessStyle.Render("✓")
		if sess.LastError != nil || !sess.LastExit.IsSuccess() {
			mark = ErrorStyle.Render("✗")
		}
		detail := fmt.Sprintf("%d run(s), last exit %d", sess.Runs, sess.LastExit)
		fmt.Fprintf(w, "  %s %s  %s\n", mark, sess.Name, SubtitleStyle.Render(detail))
	}
}
