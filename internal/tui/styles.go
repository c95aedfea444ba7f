// SPDX-License-Identifier: MPL-2.0

package tui

import "github.com/charmbracelet/lipgloss"

const (
	// ColorSchemeAuto follows the terminal background.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces colours tuned for dark terminals.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces colours tuned for light terminals.
	ColorSchemeLight ColorScheme = "light"
)

type (
	// ColorScheme selects the palette variant.
	ColorScheme string

	// Styles holds the lipgloss styles used by the browser.
	Styles struct {
		Title    lipgloss.Style
		Folder   lipgloss.Style
		Group    lipgloss.Style
		Script   lipgloss.Style
		Message  lipgloss.Style
		Selected lipgloss.Style
		Tooltip  lipgloss.Style
		Status   lipgloss.Style
		Error    lipgloss.Style
		Match    lipgloss.Style
	}
)

// NewStyles returns the browser styles for scheme.
func NewStyles(scheme ColorScheme) Styles {
	pick := func(c lipgloss.AdaptiveColor) lipgloss.TerminalColor {
		switch scheme {
		case ColorSchemeDark:
			return lipgloss.Color(c.Dark)
		case ColorSchemeLight:
			return lipgloss.Color(c.Light)
		default:
			return c
		}
	}

	var (
		primary   = pick(lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#7C3AED"})
		muted     = pick(lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#6B7280"})
		success   = pick(lipgloss.AdaptiveColor{Light: "#047857", Dark: "#10B981"})
		errColor  = pick(lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#EF4444"})
		highlight = pick(lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#3B82F6"})
		warning   = pick(lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"})
	)

	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(primary),
		Folder:   lipgloss.NewStyle().Bold(true).Foreground(highlight),
		Group:    lipgloss.NewStyle().Foreground(primary),
		Script:   lipgloss.NewStyle(),
		Message:  lipgloss.NewStyle().Italic(true).Foreground(muted),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(success),
		Tooltip:  lipgloss.NewStyle().Foreground(muted),
		Status:   lipgloss.NewStyle().Foreground(warning),
		Error:    lipgloss.NewStyle().Foreground(errColor),
		Match:    lipgloss.NewStyle().Underline(true),
	}
}
