// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"runtime"
	"strings"
	"testing"
)

func fakeNative(goos string, env map[string]string, onPath ...string) *NativeRuntime {
	return &NativeRuntime{
		goos:   goos,
		getenv: func(k string) string { return env[k] },
		lookPath: func(name string) (string, error) {
			for _, p := range onPath {
				if p == name {
					return "/bin/" + name, nil
				}
			}
			return "", errors.New("not found")
		},
	}
}

func TestNativeRuntime_Shell(t *testing.T) {
	tests := []struct {
		name    string
		rt      *NativeRuntime
		want    string
		wantErr bool
	}{
		{"SHELL wins", fakeNative("linux", map[string]string{"SHELL": "/usr/bin/zsh"}, "bash"), "/usr/bin/zsh", false},
		{"bash before sh", fakeNative("linux", nil, "sh", "bash"), "/bin/bash", false},
		{"sh fallback", fakeNative("darwin", nil, "sh"), "/bin/sh", false},
		{"no shell", fakeNative("linux", nil), "", true},
		{"pwsh first on windows", fakeNative("windows", nil, "cmd", "pwsh"), "/bin/pwsh", false},
		{"cmd fallback on windows", fakeNative("windows", nil, "cmd"), "/bin/cmd", false},
		{"override", &NativeRuntime{Shell: "/opt/fish"}, "/opt/fish", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.rt.shell()
			if tt.wantErr {
				if !errors.Is(err, ErrShellNotFound) {
					t.Fatalf("shell() error = %v, want ErrShellNotFound", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("shell() = %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func TestNativeRuntime_ShellArgs(t *testing.T) {
	rt := NewNativeRuntime()
	tests := map[string]string{
		"/bin/bash":                   "-c",
		"/usr/bin/zsh":                "-c",
		`C:\Windows\System32\cmd.exe`: "/C",
		`C:\Program Files\pwsh.exe`:   "-NoProfile -Command",
		"powershell":                  "-NoProfile -Command",
	}
	for shell, want := range tests {
		if got := strings.Join(rt.shellArgs(shell), " "); got != want {
			t.Errorf("shellArgs(%q) = %q, want %q", shell, got, want)
		}
	}

	rt.ShellArgs = []string{"-e", "-c"}
	if got := strings.Join(rt.shellArgs("/bin/sh"), " "); got != "-e -c" {
		t.Errorf("shellArgs() override = %q", got)
	}
}

func TestNativeRuntime_Execute(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell script")
	}
	rt := NewNativeRuntime()
	if !rt.Available() {
		t.Skip("no shell available")
	}

	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	inv := Invocation{
		Line: `echo "hello $GREETING"; pwd; echo oops >&2; exit 3`,
		Dir:  dir,
		Env:  append(os.Environ(), "GREETING=world"),
	}

	res := Execute(context.Background(), rt, inv, IO{Stdout: &stdout, Stderr: &stderr})
	if res.Error != nil {
		t.Fatalf("Execute() error = %v", res.Error)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if !strings.HasPrefix(stdout.String(), "hello world\n") {
		t.Errorf("stdout = %q", stdout.String())
	}
	if strings.TrimSpace(stderr.String()) != "oops" {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestNativeRuntime_PrepareWithoutShell(t *testing.T) {
	rt := fakeNative("linux", nil)
	res := Execute(context.Background(), rt, Invocation{Line: "true"}, IO{})
	if !errors.Is(res.Error, ErrShellNotFound) || res.ExitCode != 1 {
		t.Errorf("Execute() = %+v, want ErrShellNotFound with exit 1", res)
	}
}
