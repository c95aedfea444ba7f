// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"scriptree-cli/pkg/scripttree"
)

// ErrPickCanceled is returned when the user aborts the script picker.
var ErrPickCanceled = errors.New("no script selected")

// PickOptions configures PickScript.
type PickOptions struct {
	Title string
	// Accessible renders the prompt line by line for screen readers and
	// non-terminal input.
	Accessible bool
	Input      io.Reader
	Output     io.Writer
}

// IsInteractive reports whether stdin and stdout are terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// PickScript asks the user to choose one of the leaves of tree and returns
// its full name.
func PickScript(ctx context.Context, tree scripttree.Tree, opts PickOptions) (string, error) {
	leaves := tree.Leaves()
	if len(leaves) == 0 {
		return "", ErrPickCanceled
	}

	options := make([]huh.Option[string], len(leaves))
	for i, leaf := range leaves {
		options[i] = huh.NewOption(fmt.Sprintf("%s  %s", leaf.FullName, leaf.Command), leaf.FullName)
	}

	title := opts.Title
	if title == "" {
		title = "Run script"
	}

	var choice string
	sel := huh.NewSelect[string]().
		Title(title).
		Options(options...).
		Height(min(len(options)+2, 15)).
		Value(&choice)

	form := huh.NewForm(huh.NewGroup(sel)).
		WithTheme(huh.ThemeCharm()).
		WithAccessible(opts.Accessible)
	if opts.Input != nil {
		form = form.WithInput(opts.Input)
	}
	if opts.Output != nil {
		form = form.WithOutput(opts.Output)
	}

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrPickCanceled
		}
		return "", err
	}
	return choice, nil
}
