// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"scriptree-cli/pkg/scripttree"
)

// FileName is the manifest file looked up in a project directory.
const FileName = "package.json"

var (
	// ErrManifestNotFound is returned when a directory has no manifest.
	// Callers treat it as an empty script set rather than a failure.
	ErrManifestNotFound = errors.New("manifest not found")
	// ErrInvalidManifest is the sentinel error wrapped by InvalidManifestError.
	ErrInvalidManifest = errors.New("invalid manifest")
	// ErrMalformedEntry is the sentinel error wrapped by MalformedEntryError.
	ErrMalformedEntry = errors.New("malformed script entry")
)

type (
	// Manifest is the parsed subset of a package.json file.
	Manifest struct {
		// Path is the manifest file path as given to Parse.
		Path string
		// Dir is the directory holding the manifest.
		Dir string
		// Name is the package name, empty when undeclared.
		Name string
		// Scripts are the declared scripts in declaration order.
		Scripts []scripttree.Script
		// Workspaces are the npm/yarn workspace globs declared by the package.
		Workspaces []string
	}

	// InvalidManifestError is returned when a manifest is not valid JSON or
	// its scripts section has the wrong shape.
	InvalidManifestError struct {
		Path   string
		Reason string
	}

	// MalformedEntryError is returned when a script value is not a string.
	MalformedEntryError struct {
		Path string
		Name string
		// Kind describes the JSON type found instead (e.g. "number", "object").
		Kind string
	}
)

// Error implements the error interface for InvalidManifestError.
func (e *InvalidManifestError) Error() string {
	return fmt.Sprintf("invalid manifest %s: %s", e.Path, e.Reason)
}

// Unwrap returns ErrInvalidManifest for errors.Is() compatibility.
func (e *InvalidManifestError) Unwrap() error { return ErrInvalidManifest }

// Error implements the error interface for MalformedEntryError.
func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("%s: script %q must be a string, got %s", e.Path, e.Name, e.Kind)
}

// Unwrap returns ErrMalformedEntry for errors.Is() compatibility.
func (e *MalformedEntryError) Unwrap() error { return ErrMalformedEntry }

// Load reads and parses the manifest in dir.
func Load(fsys afero.Fs, dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrManifestNotFound)
		}
		return nil, fmt.Errorf("failed to stat manifest %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, &InvalidManifestError{Path: path, Reason: "is a directory"}
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return Parse(path, data)
}

// Exists reports whether dir holds a manifest file.
func Exists(fsys afero.Fs, dir string) bool {
	info, err := fsys.Stat(filepath.Join(dir, FileName))
	return err == nil && !info.IsDir()
}

// Tree groups the manifest's scripts using sep.
func (m *Manifest) Tree(sep scripttree.Separator) (scripttree.Tree, error) {
	return scripttree.Build(m.Scripts, sep)
}

// Script returns the declared script called name.
func (m *Manifest) Script(name string) (scripttree.Script, bool) {
	for _, s := range m.Scripts {
		if s.Name == name {
			return s, true
		}
	}
	return scripttree.Script{}, false
}
