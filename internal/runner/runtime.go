// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
)

const (
	// RuntimeNative runs scripts with the host shell.
	RuntimeNative RuntimeName = "native"
	// RuntimeVirtual runs scripts with the embedded POSIX shell interpreter.
	RuntimeVirtual RuntimeName = "virtual"
)

// ErrRuntimeNotAvailable is returned when the requested runtime is not registered.
var ErrRuntimeNotAvailable = errors.New("runtime not available")

type (
	// RuntimeName identifies a Runtime.
	RuntimeName string

	// Process is a prepared script run. Its method set matches
	// tea.ExecCommand so a Process can be handed to tea.Exec unchanged.
	Process interface {
		Run() error
		SetStdin(io.Reader)
		SetStdout(io.Writer)
		SetStderr(io.Writer)
	}

	// Runtime turns an Invocation into a Process.
	Runtime interface {
		Name() RuntimeName
		// Available reports whether the runtime can run scripts on this host.
		Available() bool
		// Prepare parses or resolves everything needed to run inv. Errors
		// here mean the script never started.
		Prepare(ctx context.Context, inv Invocation) (Process, error)
	}

	// IO holds the standard streams for a run.
	IO struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Result is the outcome of Execute.
	Result struct {
		ExitCode ExitCode
		// Error is set when the script could not be run or its status
		// could not be determined.
		Error error
	}

	// Registry holds the runtimes available to the CLI.
	Registry struct {
		runtimes map[RuntimeName]Runtime
	}
)

// String returns the string representation of the RuntimeName.
func (n RuntimeName) String() string { return string(n) }

// Success returns true if the script ran and exited zero.
func (r Result) Success() bool { return r.Error == nil && r.ExitCode.IsSuccess() }

// NewRegistry returns a registry with the native and virtual runtimes.
func NewRegistry() *Registry {
	r := &Registry{runtimes: make(map[RuntimeName]Runtime)}
	r.Register(NewNativeRuntime())
	r.Register(NewVirtualRuntime())
	return r
}

// Register adds rt, replacing any runtime with the same name.
func (r *Registry) Register(rt Runtime) {
	r.runtimes[rt.Name()] = rt
}

// Get returns the runtime called name.
func (r *Registry) Get(name RuntimeName) (Runtime, error) {
	rt, ok := r.runtimes[name]
	if !ok || !rt.Available() {
		return nil, fmt.Errorf("%s: %w", name, ErrRuntimeNotAvailable)
	}
	return rt, nil
}

// Names returns the registered runtime names, sorted.
func (r *Registry) Names() []RuntimeName {
	names := make([]RuntimeName, 0, len(r.runtimes))
	for name := range r.runtimes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Execute prepares inv with rt, attaches stdio and runs it to completion.
func Execute(ctx context.Context, rt Runtime, inv Invocation, stdio IO) Result {
	proc, err := rt.Prepare(ctx, inv)
	if err != nil {
		return Result{ExitCode: 1, Error: err}
	}
	proc.SetStdin(stdio.Stdin)
	proc.SetStdout(stdio.Stdout)
	proc.SetStderr(stdio.Stderr)

	code, err := ExitCodeOf(proc.Run())
	return Result{ExitCode: code, Error: err}
}
