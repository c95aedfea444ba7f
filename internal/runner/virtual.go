// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

type (
	// VirtualRuntime runs scripts with the mvdan/sh interpreter. External
	// commands still resolve through PATH.
	VirtualRuntime struct{}

	virtualProcess struct {
		ctx  context.Context
		prog *syntax.File
		inv  Invocation

		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer
	}
)

// NewVirtualRuntime creates a virtual runtime.
func NewVirtualRuntime() *VirtualRuntime { return &VirtualRuntime{} }

// Name returns the runtime name.
func (r *VirtualRuntime) Name() RuntimeName { return RuntimeVirtual }

// Available always returns true; the interpreter is built in.
func (r *VirtualRuntime) Available() bool { return true }

// Prepare parses the script line. Syntax errors are reported here, before
// anything runs.
func (r *VirtualRuntime) Prepare(ctx context.Context, inv Invocation) (Process, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(inv.Line), "script")
	if err != nil {
		return nil, fmt.Errorf("script syntax error: %w", err)
	}
	return &virtualProcess{ctx: ctx, prog: prog, inv: inv}, nil
}

func (p *virtualProcess) Run() error {
	runner, err := interp.New(
		interp.Dir(p.inv.Dir),
		interp.Env(expand.ListEnviron(p.inv.Env...)),
		interp.StdIO(p.stdin, p.stdout, p.stderr),
	)
	if err != nil {
		return fmt.Errorf("failed to create interpreter: %w", err)
	}
	return runner.Run(p.ctx, p.prog)
}

func (p *virtualProcess) SetStdin(r io.Reader)  { p.stdin = r }
func (p *virtualProcess) SetStdout(w io.Writer) { p.stdout = w }
func (p *virtualProcess) SetStderr(w io.Writer) { p.stderr = w }
