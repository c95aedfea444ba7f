// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
)

// ErrShellNotFound is returned when no usable host shell exists.
var ErrShellNotFound = errors.New("no shell found")

type (
	// NativeRuntime runs scripts with the host shell.
	NativeRuntime struct {
		// Shell overrides shell detection when set.
		Shell string
		// ShellArgs overrides the arguments placed before the script line.
		ShellArgs []string

		goos     string
		getenv   func(string) string
		lookPath func(string) (string, error)
	}

	nativeProcess struct {
		cmd *exec.Cmd
	}
)

// NewNativeRuntime creates a native runtime for the current platform.
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{
		goos:     goruntime.GOOS,
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
	}
}

// Name returns the runtime name.
func (r *NativeRuntime) Name() RuntimeName { return RuntimeNative }

// Available reports whether a shell can be found.
func (r *NativeRuntime) Available() bool {
	_, err := r.shell()
	return err == nil
}

// Prepare builds the shell command for inv. The command is bound to ctx.
func (r *NativeRuntime) Prepare(ctx context.Context, inv Invocation) (Process, error) {
	shell, err := r.shell()
	if err != nil {
		return nil, err
	}

	args := append(r.shellArgs(shell), inv.Line)
	cmd := exec.CommandContext(ctx, shell, args...)
	cmd.Dir = inv.Dir
	cmd.Env = inv.Env
	return &nativeProcess{cmd: cmd}, nil
}

// shell picks SHELL, bash or sh on Unix and pwsh, powershell or cmd on Windows.
func (r *NativeRuntime) shell() (string, error) {
	if r.Shell != "" {
		return r.Shell, nil
	}

	if r.goos == "windows" {
		for _, name := range []string{"pwsh", "powershell", "cmd"} {
			if path, err := r.lookPath(name); err == nil {
				return path, nil
			}
		}
		return "", ErrShellNotFound
	}

	if shell := r.getenv("SHELL"); shell != "" {
		return shell, nil
	}
	for _, name := range []string{"bash", "sh"} {
		if path, err := r.lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrShellNotFound
}

func (r *NativeRuntime) shellArgs(shell string) []string {
	if len(r.ShellArgs) > 0 {
		return append([]string(nil), r.ShellArgs...)
	}

	base := filepath.Base(shell)
	if i := strings.LastIndex(base, "\\"); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(strings.ToLower(base), ".exe")

	switch base {
	case "cmd":
		return []string{"/C"}
	case "powershell", "pwsh":
		return []string{"-NoProfile", "-Command"}
	default:
		return []string{"-c"}
	}
}

func (p *nativeProcess) Run() error {
	if err := p.cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return err
		}
		return fmt.Errorf("start %s: %w", p.cmd.Path, err)
	}
	return nil
}

func (p *nativeProcess) SetStdin(r io.Reader)  { p.cmd.Stdin = r }
func (p *nativeProcess) SetStdout(w io.Writer) { p.cmd.Stdout = w }
func (p *nativeProcess) SetStderr(w io.Writer) { p.cmd.Stderr = w }
