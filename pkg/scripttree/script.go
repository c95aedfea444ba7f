// SPDX-License-Identifier: MPL-2.0

package scripttree

import (
	"errors"
	"fmt"
)

// DefaultSeparator is the separator used when none is configured.
const DefaultSeparator Separator = ":"

var (
	// ErrInvalidSeparator is the sentinel error wrapped by InvalidSeparatorError.
	ErrInvalidSeparator = errors.New("invalid separator")
	// ErrDuplicateScript is the sentinel error wrapped by DuplicateScriptError.
	ErrDuplicateScript = errors.New("duplicate script name")
)

type (
	// Script is one named command as declared in a manifest.
	Script struct {
		// Name is the declared script key (e.g. "build:watch").
		Name string
		// Command is the raw command string. It is never parsed.
		Command string
	}

	// Separator is the delimiter that splits script names into group segments.
	// A valid separator is non-empty.
	Separator string

	// InvalidSeparatorError is returned when a Separator value is empty.
	// It wraps ErrInvalidSeparator for errors.Is() compatibility.
	InvalidSeparatorError struct {
		Value Separator
	}

	// DuplicateScriptError is returned when the same script name is declared
	// more than once. Positions are zero-based indexes into the input list.
	DuplicateScriptError struct {
		Name   string
		First  int
		Second int
	}
)

// String returns the string representation of the Separator.
func (s Separator) String() string { return string(s) }

// IsValid returns whether the Separator can be used for grouping,
// and a list of validation errors if it cannot.
func (s Separator) IsValid() (bool, []error) {
	if s == "" {
		return false, []error{&InvalidSeparatorError{Value: s}}
	}
	return true, nil
}

// Error implements the error interface for InvalidSeparatorError.
func (e *InvalidSeparatorError) Error() string {
	return fmt.Sprintf("invalid separator %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidSeparator for errors.Is() compatibility.
func (e *InvalidSeparatorError) Unwrap() error { return ErrInvalidSeparator }

// Error implements the error interface for DuplicateScriptError.
func (e *DuplicateScriptError) Error() string {
	return fmt.Sprintf("duplicate script name %q (entries %d and %d)", e.Name, e.First, e.Second)
}

// Unwrap returns ErrDuplicateScript for errors.Is() compatibility.
func (e *DuplicateScriptError) Unwrap() error { return ErrDuplicateScript }

// CheckUnique reports the first script name declared twice.
func CheckUnique(scripts []Script) error {
	seen := make(map[string]int, len(scripts))
	for i, s := range scripts {
		if first, ok := seen[s.Name]; ok {
			return &DuplicateScriptError{Name: s.Name, First: first, Second: i}
		}
		seen[s.Name] = i
	}
	return nil
}
