// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"mvdan.cc/sh/v3/interp"
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode is a script's exit status. The zero value means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside 0-255.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// IsValid returns whether the ExitCode is in the valid range (0-255),
// and a list of validation errors if it is not.
func (c ExitCode) IsValid() (bool, []error) {
	if c < 0 || c > 255 {
		return false, []error{&InvalidExitCodeError{Value: c}}
	}
	return true, nil
}

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }

// ExitCodeOf classifies the error returned by Process.Run. A script that ran
// and exited non-zero yields its status and a nil error; a failure to start
// or an out-of-range status yields exit code 1 and the error.
func ExitCodeOf(err error) (ExitCode, error) {
	if err == nil {
		return 0, nil
	}

	var status interp.ExitStatus
	if errors.As(err, &status) {
		return ExitCode(status), nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := ExitCode(exitErr.ExitCode())
		if valid, errs := code.IsValid(); !valid {
			return 1, errs[0]
		}
		return code, nil
	}

	return 1, err
}
