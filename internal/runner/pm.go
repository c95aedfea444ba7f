// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	// PackageManagerNpm runs scripts with npm.
	PackageManagerNpm PackageManager = "npm"
	// PackageManagerPnpm runs scripts with pnpm.
	PackageManagerPnpm PackageManager = "pnpm"
	// PackageManagerYarn runs scripts with yarn.
	PackageManagerYarn PackageManager = "yarn"
	// PackageManagerBun runs scripts with bun.
	PackageManagerBun PackageManager = "bun"
	// PackageManagerAuto is resolved from the lock file in the project folder.
	PackageManagerAuto PackageManager = "auto"
)

var (
	// ErrInvalidPackageManager is returned when a PackageManager value is not recognized.
	ErrInvalidPackageManager = errors.New("invalid package manager")
	// ErrPackageManagerNotFound is returned when the package manager binary is not on PATH.
	ErrPackageManagerNotFound = errors.New("package manager not found")

	// lockFiles maps lock files to their package manager, in lookup order.
	lockFiles = []struct {
		name string
		pm   PackageManager
	}{
		{"package-lock.json", PackageManagerNpm},
		{"pnpm-lock.yaml", PackageManagerPnpm},
		{"yarn.lock", PackageManagerYarn},
		{"bun.lockb", PackageManagerBun},
		{"bun.lock", PackageManagerBun},
	}

	lookPath = exec.LookPath
)

type (
	// PackageManager names the tool used to run package scripts.
	PackageManager string

	// InvalidPackageManagerError is returned when a PackageManager value is not recognized.
	// It wraps ErrInvalidPackageManager for errors.Is() compatibility.
	InvalidPackageManagerError struct {
		Value PackageManager
	}
)

// String returns the string representation of the PackageManager.
func (pm PackageManager) String() string { return string(pm) }

// IsValid returns whether the PackageManager is supported,
// and a list of validation errors if it is not.
func (pm PackageManager) IsValid() (bool, []error) {
	switch pm {
	case PackageManagerNpm, PackageManagerPnpm, PackageManagerYarn, PackageManagerBun, PackageManagerAuto:
		return true, nil
	default:
		return false, []error{&InvalidPackageManagerError{Value: pm}}
	}
}

// Error implements the error interface for InvalidPackageManagerError.
func (e *InvalidPackageManagerError) Error() string {
	return fmt.Sprintf("invalid package manager %q (valid: npm, pnpm, yarn, bun, auto)", e.Value)
}

// Unwrap returns ErrInvalidPackageManager for errors.Is() compatibility.
func (e *InvalidPackageManagerError) Unwrap() error { return ErrInvalidPackageManager }

// Resolve returns pm unless it is PackageManagerAuto, in which case the lock
// file present in dir decides. Without a lock file npm is used.
func Resolve(fsys afero.Fs, dir string, pm PackageManager) PackageManager {
	if pm != PackageManagerAuto {
		return pm
	}
	for _, lf := range lockFiles {
		if _, err := fsys.Stat(filepath.Join(dir, lf.name)); err == nil {
			return lf.pm
		}
	}
	return PackageManagerNpm
}

// LookPath reports the path of the package manager binary.
func (pm PackageManager) LookPath() (string, error) {
	path, err := lookPath(pm.String())
	if err != nil {
		return "", fmt.Errorf("%s: %w", pm, ErrPackageManagerNotFound)
	}
	return path, nil
}
