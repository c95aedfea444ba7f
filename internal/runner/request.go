// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// ErrEmptyCommand is returned when a direct request has nothing to run.
var ErrEmptyCommand = errors.New("script has no command")

type (
	// Request describes one script run.
	Request struct {
		// Script is the full script name as declared in the manifest.
		Script string
		// Command is the raw command string of the script.
		Command string
		// Dir is the folder holding the manifest; scripts run there.
		Dir string
		// Args are extra arguments appended to the script.
		Args []string
		// PackageManager runs the script unless Direct is set. It must
		// already be resolved (not PackageManagerAuto).
		PackageManager PackageManager
		// Direct runs Command itself instead of "<pm> run <script>".
		Direct bool
	}

	// Invocation is a resolved Request: a shell line plus where and with
	// which environment to run it.
	Invocation struct {
		Line string
		Dir  string
		Env  []string
	}
)

// CommandLine returns the shell line that runs the request. Arguments are
// quoted for a POSIX shell.
func (r Request) CommandLine() (string, error) {
	var parts []string
	if r.Direct {
		if strings.TrimSpace(r.Command) == "" {
			return "", fmt.Errorf("%s: %w", r.Script, ErrEmptyCommand)
		}
		parts = append(parts, r.Command)
	} else {
		if r.PackageManager == PackageManagerAuto || r.PackageManager == "" {
			return "", fmt.Errorf("package manager for %q is not resolved", r.Script)
		}
		if valid, errs := r.PackageManager.IsValid(); !valid {
			return "", errs[0]
		}
		name, err := quote(r.Script)
		if err != nil {
			return "", err
		}
		parts = append(parts, r.PackageManager.String(), "run", name)
		if len(r.Args) > 0 && r.PackageManager != PackageManagerYarn {
			parts = append(parts, "--")
		}
	}

	for _, arg := range r.Args {
		quoted, err := quote(arg)
		if err != nil {
			return "", err
		}
		parts = append(parts, quoted)
	}
	return strings.Join(parts, " "), nil
}

// Invocation resolves the request against environ (typically os.Environ()).
// Direct requests get <Dir>/node_modules/.bin prepended to PATH, as package
// managers do.
func (r Request) Invocation(environ []string) (Invocation, error) {
	line, err := r.CommandLine()
	if err != nil {
		return Invocation{}, err
	}
	env := append([]string(nil), environ...)
	if r.Direct {
		env = prependPath(env, filepath.Join(r.Dir, "node_modules", ".bin"))
	}
	return Invocation{Line: line, Dir: r.Dir, Env: env}, nil
}

func quote(s string) (string, error) {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return "", fmt.Errorf("cannot quote argument %q: %w", s, err)
	}
	return q, nil
}

// prependPath puts dir in front of the PATH entry of env, adding PATH when
// it is missing. The variable name is matched case-insensitively on Windows.
func prependPath(env []string, dir string) []string {
	for i, kv := range env {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !isPathVar(name) {
			continue
		}
		if value == "" {
			env[i] = name + "=" + dir
		} else {
			env[i] = name + "=" + dir + string(os.PathListSeparator) + value
		}
		return env
	}
	return append(env, "PATH="+dir)
}
