// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load manifest"},
			expected: "failed to load manifest",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "load manifest", Resource: "./package.json"},
			expected: "failed to load manifest: ./package.json",
		},
		{
			name:     "operation with cause",
			err:      &ActionableError{Operation: "parse config", Cause: errors.New("syntax error at line 5")},
			expected: "failed to parse config: syntax error at line 5",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "run script",
				Resource:  "build:watch",
				Cause:     errors.New("exit status 2"),
			},
			expected: "failed to run script: build:watch: exit status 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	cause := errors.New("specific error")
	wrapped := &ActionableError{Operation: "test", Cause: cause}

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if (&ActionableError{Operation: "test"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name:     "simple error non-verbose",
			err:      &ActionableError{Operation: "load config"},
			contains: []string{"failed to load config"},
		},
		{
			name: "error with suggestions",
			err: &ActionableError{
				Operation:   "load manifest",
				Resource:    "./package.json",
				Suggestions: []string{"Run 'npm init -y'", "Check file permissions"},
			},
			contains: []string{
				"failed to load manifest",
				"./package.json",
				"• Run 'npm init -y'",
				"• Check file permissions",
			},
		},
		{
			name:     "no error chain in non-verbose",
			err:      &ActionableError{Operation: "parse config", Cause: errors.New("syntax error")},
			contains: []string{"failed to parse config: syntax error"},
			excludes: []string{"Error chain:"},
		},
		{
			name: "nested error chain verbose",
			err: &ActionableError{
				Operation: "run script",
				Cause: &ActionableError{
					Operation: "start shell",
					Cause:     errors.New("not found"),
				},
			},
			verbose: true,
			contains: []string{
				"Error chain:",
				"1. failed to start shell: not found",
				"2. not found",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Format(tt.verbose)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Format() missing %q\ngot:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Format() should not contain %q\ngot:\n%s", s, got)
				}
			}
		})
	}
}

func TestErrorContext_Build(t *testing.T) {
	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("run script").
		WithResource("test").
		WithIssue(ScriptExecutionFailedId).
		WithSuggestion("first").
		WithSuggestion("second").
		Wrap(cause).
		Build()

	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if ae.Operation != "run script" || ae.Resource != "test" {
		t.Errorf("unexpected context: %+v", ae)
	}
	if len(ae.Suggestions) != 2 {
		t.Errorf("Suggestions = %v, want 2 entries", ae.Suggestions)
	}
	if !errors.Is(ae, cause) {
		t.Error("Build() lost the cause")
	}
	if g := ae.Guide(); g == nil || g.Id() != ScriptExecutionFailedId {
		t.Errorf("Guide() = %v, want ScriptExecutionFailed", g)
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should return nil")
	}
	if (&ActionableError{Operation: "x"}).Guide() != nil {
		t.Error("Guide() without issue should return nil")
	}
}

func TestWrapWithOperation(t *testing.T) {
	if WrapWithOperation(nil, "x") != nil {
		t.Error("WrapWithOperation(nil) should return nil")
	}
	cause := errors.New("cause")
	if err := WrapWithOperation(cause, "watch manifests"); !errors.Is(err, cause) || err.Operation != "watch manifests" {
		t.Errorf("WrapWithOperation() = %+v", err)
	}
}
