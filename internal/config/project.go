// SPDX-License-Identifier: MPL-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// ProjectFileName is the per-project override file read next to the manifest.
const ProjectFileName = ".scriptree.toml"

// ProjectFile is the subset of settings a project may pin for everyone
// working on it.
type ProjectFile struct {
	Separator      *string `toml:"separator"`
	PackageManager *string `toml:"package_manager"`
	Runtime        *string `toml:"runtime"`
}

// LoadProjectFile reads the project override in dir. A missing file yields
// (nil, nil). Unknown keys are rejected.
func LoadProjectFile(fsys afero.Fs, dir string) (*ProjectFile, error) {
	data, err := afero.ReadFile(fsys, filepath.Join(dir, ProjectFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var pf ProjectFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&pf); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%s: %s", ProjectFileName, strict.String())
		}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, fmt.Errorf("%s:%d:%d: %w", ProjectFileName, row, col, err)
		}
		return nil, fmt.Errorf("%s: %w", ProjectFileName, err)
	}
	return &pf, nil
}

// values returns the keys set in the file, in viper's key space.
func (pf *ProjectFile) values() map[string]any {
	out := map[string]any{}
	if pf.Separator != nil {
		out["separator"] = *pf.Separator
	}
	if pf.PackageManager != nil {
		out["package_manager"] = *pf.PackageManager
	}
	if pf.Runtime != nil {
		out["runtime"] = *pf.Runtime
	}
	return out
}

// loadProjectIntoViper merges the project override in dir, if any, and
// returns its path.
func loadProjectIntoViper(fsys afero.Fs, v *viper.Viper, dir string) (string, error) {
	pf, err := LoadProjectFile(fsys, dir)
	if err != nil || pf == nil {
		return "", err
	}
	if err := v.MergeConfigMap(pf.values()); err != nil {
		return "", fmt.Errorf("failed to merge project config: %w", err)
	}
	return filepath.Join(dir, ProjectFileName), nil
}
