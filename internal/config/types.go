// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"scriptree-cli/pkg/scripttree"
)

const (
	// PackageManagerNpm runs scripts with "npm run".
	PackageManagerNpm PackageManager = "npm"
	// PackageManagerPnpm runs scripts with "pnpm run".
	PackageManagerPnpm PackageManager = "pnpm"
	// PackageManagerYarn runs scripts with "yarn run".
	PackageManagerYarn PackageManager = "yarn"
	// PackageManagerBun runs scripts with "bun run".
	PackageManagerBun PackageManager = "bun"
	// PackageManagerAuto picks the package manager from the project's lock file.
	PackageManagerAuto PackageManager = "auto"

	// RuntimeNative runs scripts in the host system shell.
	// Defined locally to avoid coupling config to internal/runner.
	RuntimeNative RuntimeMode = "native"
	// RuntimeVirtual runs scripts in the embedded mvdan/sh interpreter.
	RuntimeVirtual RuntimeMode = "virtual"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultDebounce is the default quiet period before a manifest change
	// triggers a refresh.
	DefaultDebounce = 300 * time.Millisecond
)

var (
	// ErrInvalidPackageManager is returned when a PackageManager value is not recognized.
	ErrInvalidPackageManager = errors.New("invalid package manager")
	// ErrInvalidConfigRuntimeMode is returned when a config RuntimeMode value is not recognized.
	ErrInvalidConfigRuntimeMode = errors.New("invalid runtime mode")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidWorkspacePath is the sentinel error wrapped by InvalidWorkspacePathError.
	ErrInvalidWorkspacePath = errors.New("invalid workspace path")
	// ErrInvalidWatchConfig is the sentinel error wrapped by InvalidWatchConfigError.
	ErrInvalidWatchConfig = errors.New("invalid watch config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// PackageManager names the tool used to run package scripts.
	// Defined locally to avoid coupling config to internal/runner;
	// callers cast to runner.PackageManager at the boundary.
	PackageManager string

	// InvalidPackageManagerError is returned when a PackageManager value is not recognized.
	// It wraps ErrInvalidPackageManager for errors.Is() compatibility.
	InvalidPackageManagerError struct {
		Value PackageManager
	}

	// RuntimeMode specifies where scripts are executed.
	RuntimeMode string

	// InvalidConfigRuntimeModeError is returned when a config RuntimeMode value is not recognized.
	// It wraps ErrInvalidConfigRuntimeMode for errors.Is() compatibility.
	InvalidConfigRuntimeModeError struct {
		Value RuntimeMode
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// WorkspacePath is an extra folder scanned for a manifest.
	// A valid path must be non-empty and not whitespace-only.
	WorkspacePath string

	// InvalidWorkspacePathError is returned when a WorkspacePath is blank.
	InvalidWorkspacePathError struct {
		Value WorkspacePath
	}

	// InvalidWatchConfigError is returned when a WatchConfig has invalid fields.
	InvalidWatchConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Separator splits script names into groups.
		Separator scripttree.Separator `json:"separator" mapstructure:"separator"`
		// PackageManager runs scripts ("npm", "pnpm", "yarn", "bun" or "auto").
		PackageManager PackageManager `json:"package_manager" mapstructure:"package_manager"`
		// Runtime selects the shell used for direct execution.
		Runtime RuntimeMode `json:"runtime" mapstructure:"runtime"`
		// Workspaces lists extra folders shown next to the project root.
		Workspaces []WorkspacePath `json:"workspaces" mapstructure:"workspaces"`
		// NpmWorkspaces expands the root manifest's "workspaces" globs.
		NpmWorkspaces bool `json:"npm_workspaces" mapstructure:"npm_workspaces"`
		// Watch configures manifest change notification.
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`

		// Sources records where the values came from. Not part of the file format.
		Sources Sources `json:"-" mapstructure:"-"`
	}

	// WatchConfig configures manifest watching.
	WatchConfig struct {
		// Debounce is the quiet period before a change triggers a refresh.
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
		// Ignore lists extra glob patterns excluded from watching.
		Ignore []string `json:"ignore" mapstructure:"ignore"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// ExpandAll opens every group when the browser starts.
		ExpandAll bool `json:"expand_all" mapstructure:"expand_all"`
	}

	// Sources lists the files that contributed to a loaded Config.
	Sources struct {
		// File is the user config file, empty when defaults were used.
		File string
		// Project is the .scriptree.toml override, empty when absent.
		Project string
	}
)

// String returns the string representation of the PackageManager.
func (pm PackageManager) String() string { return string(pm) }

// IsValid returns whether the PackageManager is one of the supported tools,
// and a list of validation errors if it is not.
func (pm PackageManager) IsValid() (bool, []error) {
	switch pm {
	case PackageManagerNpm, PackageManagerPnpm, PackageManagerYarn, PackageManagerBun, PackageManagerAuto:
		return true, nil
	default:
		return false, []error{&InvalidPackageManagerError{Value: pm}}
	}
}

// Error implements the error interface for InvalidPackageManagerError.
func (e *InvalidPackageManagerError) Error() string {
	return fmt.Sprintf("invalid package manager %q (valid: npm, pnpm, yarn, bun, auto)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidPackageManagerError) Unwrap() error { return ErrInvalidPackageManager }

// String returns the string representation of the config RuntimeMode.
func (m RuntimeMode) String() string { return string(m) }

// IsValid returns whether the config RuntimeMode is one of the defined runtime modes,
// and a list of validation errors if it is not.
func (m RuntimeMode) IsValid() (bool, []error) {
	switch m {
	case RuntimeNative, RuntimeVirtual:
		return true, nil
	default:
		return false, []error{&InvalidConfigRuntimeModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidConfigRuntimeModeError.
func (e *InvalidConfigRuntimeModeError) Error() string {
	return fmt.Sprintf("invalid runtime mode %q (valid: native, virtual)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidConfigRuntimeModeError) Unwrap() error { return ErrInvalidConfigRuntimeMode }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the WorkspacePath.
func (p WorkspacePath) String() string { return string(p) }

// IsValid returns whether the WorkspacePath is non-blank.
func (p WorkspacePath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidWorkspacePathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidWorkspacePathError.
func (e *InvalidWorkspacePathError) Error() string {
	return fmt.Sprintf("invalid workspace path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidWorkspacePath for errors.Is() compatibility.
func (e *InvalidWorkspacePathError) Unwrap() error { return ErrInvalidWorkspacePath }

// IsValid returns whether the WatchConfig has a non-negative debounce.
func (c WatchConfig) IsValid() (bool, []error) {
	if c.Debounce < 0 {
		return false, []error{&InvalidWatchConfigError{
			FieldErrors: []error{fmt.Errorf("debounce %s must not be negative", c.Debounce)},
		}}
	}
	return true, nil
}

// Error implements the error interface for InvalidWatchConfigError.
func (e *InvalidWatchConfigError) Error() string {
	return fmt.Sprintf("invalid watch config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidWatchConfig for errors.Is() compatibility.
func (e *InvalidWatchConfigError) Unwrap() error { return ErrInvalidWatchConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to each typed field's IsValid(); bool fields need no validation.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Separator.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.PackageManager.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Runtime.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, ws := range c.Workspaces {
		if valid, fieldErrs := ws.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.Watch.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return "invalid config: " + e.FieldErrors[0].Error()
	}
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so errors.Is()
// matches both the config sentinel and the sentinel of each failing field.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Separator:      scripttree.DefaultSeparator,
		PackageManager: PackageManagerNpm,
		Runtime:        RuntimeNative,
		Workspaces:     []WorkspacePath{},
		NpmWorkspaces:  false,
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
			Ignore:   []string{},
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
			ExpandAll:   false,
		},
	}
}
