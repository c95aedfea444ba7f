// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"scriptree-cli/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "scriptree"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides (SCRIPTREE_SEPARATOR, ...).
	EnvPrefix = "SCRIPTREE"

	maxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the scriptree configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// FilePath returns the default user config file path.
func FilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions layers defaults, the user CUE file, the project TOML file
// and SCRIPTREE_* environment variables, then validates the result.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var sources Sources

	userPath := opts.ConfigFilePath
	if userPath != "" {
		if !fileExists(fsys, userPath) {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(userPath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'scriptree config show' to see the default configuration").
				Wrap(fmt.Errorf("config file not found: %s", userPath)).
				BuildError()
		}
	} else {
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, err
		}
		userPath = filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
		if !fileExists(fsys, userPath) {
			userPath = ""
		}
	}

	if userPath != "" {
		if err := loadCUEIntoViper(fsys, v, userPath); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(userPath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				Wrap(err).
				BuildError()
		}
		sources.File = userPath
	}

	if opts.ProjectDir != "" {
		projectPath, err := loadProjectIntoViper(fsys, v, opts.ProjectDir)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load project configuration").
				WithResource(filepath.Join(opts.ProjectDir, ProjectFileName)).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Only separator, package_manager and runtime may be set per project").
				Wrap(err).
				BuildError()
		}
		sources.Project = projectPath
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Sources = sources

	if valid, errs := cfg.IsValid(); !valid {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Check SCRIPTREE_* environment variables and config files").
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("separator", defaults.Separator.String())
	v.SetDefault("package_manager", defaults.PackageManager.String())
	v.SetDefault("runtime", defaults.Runtime.String())
	v.SetDefault("workspaces", defaults.Workspaces)
	v.SetDefault("npm_workspaces", defaults.NpmWorkspaces)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("watch.ignore", defaults.Watch.Ignore)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme.String())
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.expand_all", defaults.UI.ExpandAll)
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
func loadCUEIntoViper(fsys afero.Fs, v *viper.Viper, path string) error {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxConfigFileSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", path, len(data), maxConfigFileSize)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(fsys afero.Fs, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes a default config file at path unless one
// already exists. It reports whether a file was written.
func CreateDefaultConfig(fsys afero.Fs, path string) (bool, error) {
	if fileExists(fsys, path) {
		return false, nil
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(fsys, path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// scriptree configuration file\n\n")

	fmt.Fprintf(&sb, "separator:       %q\n", cfg.Separator)
	fmt.Fprintf(&sb, "package_manager: %q\n", cfg.PackageManager)
	fmt.Fprintf(&sb, "runtime:         %q\n", cfg.Runtime)
	fmt.Fprintf(&sb, "npm_workspaces:  %v\n", cfg.NpmWorkspaces)

	if len(cfg.Workspaces) > 0 {
		sb.WriteString("\nworkspaces: [\n")
		for _, ws := range cfg.Workspaces {
			fmt.Fprintf(&sb, "\t%q,\n", ws)
		}
		sb.WriteString("]\n")
	}

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce.String())
	if len(cfg.Watch.Ignore) > 0 {
		sb.WriteString("\tignore: [\n")
		for _, pattern := range cfg.Watch.Ignore {
			fmt.Fprintf(&sb, "\t\t%q,\n", pattern)
		}
		sb.WriteString("\t]\n")
	}
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\texpand_all:   %v\n", cfg.UI.ExpandAll)
	sb.WriteString("}\n")

	return sb.String()
}
