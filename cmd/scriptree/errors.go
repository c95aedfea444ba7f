// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/fang"

	"scriptree-cli/internal/config"
	"scriptree-cli/internal/issue"
	"scriptree-cli/internal/runner"
	"scriptree-cli/internal/tui"
	"scriptree-cli/pkg/manifest"
	"scriptree-cli/pkg/scripttree"
)

// errScriptNotFound is returned when no leaf carries the requested name.
var errScriptNotFound = errors.New("script not found")

// issueFor returns the guide explaining err, or 0 when there is none.
func issueFor(err error) issue.Id {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		return ae.Issue
	}

	switch {
	case errors.Is(err, manifest.ErrManifestNotFound):
		return issue.ManifestNotFoundId
	case errors.Is(err, manifest.ErrInvalidManifest), errors.Is(err, manifest.ErrMalformedEntry):
		return issue.ManifestParseErrorId
	case errors.Is(err, scripttree.ErrInvalidSeparator):
		return issue.InvalidSeparatorId
	case errors.Is(err, scripttree.ErrDuplicateScript):
		return issue.DuplicateScriptId
	case errors.Is(err, config.ErrInvalidConfig):
		return issue.ConfigLoadFailedId
	case errors.Is(err, errScriptNotFound):
		return issue.ScriptNotFoundId
	case errors.Is(err, runner.ErrShellNotFound):
		return issue.ShellNotFoundId
	case errors.Is(err, runner.ErrPackageManagerNotFound):
		return issue.PackageManagerNotFoundId
	case errors.Is(err, runner.ErrSessionBusy):
		return issue.SessionBusyId
	default:
		return 0
	}
}

// guideStyle picks the glamour style for issue guides.
func guideStyle(scheme config.ColorScheme) string {
	if !tui.IsInteractive() {
		return "notty"
	}
	switch scheme {
	case config.ColorSchemeDark, config.ColorSchemeLight:
		return string(scheme)
	default:
		return "auto"
	}
}

// renderGuide writes the guide for id to w. Rendering failures are ignored;
// the error itself is always printed by the caller.
func renderGuide(w io.Writer, id issue.Id, scheme config.ColorScheme) {
	guide := issue.Get(id)
	if guide == nil {
		return
	}
	rendered, err := guide.Render(guideStyle(scheme))
	if err != nil {
		return
	}
	fmt.Fprint(w, rendered)
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// print their context and suggestions; verbose mode adds the error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// newErrorHandler returns the fang error handler. Script exit codes are not
// reported; the script already wrote its own output.
func newErrorHandler(flags *rootFlagValues) fang.ErrorHandler {
	return func(w io.Writer, _ fang.Styles, err error) {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Err == nil {
			return
		}

		fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, flags.verbose))
		if id := issueFor(err); id != 0 && id != issue.ScriptExecutionFailedId {
			fmt.Fprintln(w)
			renderGuide(w, id, config.ColorSchemeAuto)
		}
	}
}
