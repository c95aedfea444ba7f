// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestVirtualRuntime_Execute(t *testing.T) {
	rt := NewVirtualRuntime()
	dir := t.TempDir()

	tests := []struct {
		name     string
		line     string
		env      []string
		wantOut  string
		wantCode ExitCode
	}{
		{"echo", "echo hello", nil, "hello\n", 0},
		{"environment", `echo "$NAME"`, []string{"NAME=scriptree"}, "scriptree\n", 0},
		{"exit status", "echo partial; exit 4", nil, "partial\n", 4},
		{"and list stops", "false && echo no", nil, "", 1},
		{"working directory", "pwd", nil, dir + "\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			res := Execute(context.Background(), rt, Invocation{Line: tt.line, Dir: dir, Env: tt.env}, IO{Stdout: &stdout})
			if res.Error != nil {
				t.Fatalf("Execute() error = %v", res.Error)
			}
			if res.ExitCode != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", res.ExitCode, tt.wantCode)
			}
			if stdout.String() != tt.wantOut {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantOut)
			}
		})
	}
}

func TestVirtualRuntime_SyntaxError(t *testing.T) {
	_, err := NewVirtualRuntime().Prepare(context.Background(), Invocation{Line: "echo ("})
	if err == nil || !strings.Contains(err.Error(), "syntax error") {
		t.Errorf("Prepare() error = %v, want syntax error", err)
	}
}

func TestVirtualRuntime_Stdin(t *testing.T) {
	var stdout bytes.Buffer
	res := Execute(context.Background(), NewVirtualRuntime(),
		Invocation{Line: "read x; echo got $x", Dir: t.TempDir()},
		IO{Stdin: strings.NewReader("input\n"), Stdout: &stdout})
	if !res.Success() {
		t.Fatalf("Execute() = %+v", res)
	}
	if stdout.String() != "got input\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	if names := reg.Names(); len(names) != 2 || names[0] != RuntimeNative || names[1] != RuntimeVirtual {
		t.Errorf("Names() = %v", names)
	}
	if rt, err := reg.Get(RuntimeVirtual); err != nil || rt.Name() != RuntimeVirtual {
		t.Errorf("Get(virtual) = %v, %v", rt, err)
	}
	if _, err := reg.Get("container"); err == nil {
		t.Error("Get(container) should fail")
	}
}
