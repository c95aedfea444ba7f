// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"scriptree-cli/pkg/manifest"
	"scriptree-cli/pkg/scripttree"
)

type (
	// Folder is a directory holding a manifest.
	Folder struct {
		// Name is the base name of Dir, used as the display label.
		Name string
		// Dir is the cleaned absolute folder path.
		Dir string
	}

	// Options controls folder discovery.
	Options struct {
		// Root is the project root. Relative paths are resolved against the
		// working directory.
		Root string
		// Extra lists configured folders, relative to Root unless absolute.
		Extra []string
		// ExpandNpmWorkspaces adds the folders matched by the root manifest's
		// "workspaces" globs.
		ExpandNpmWorkspaces bool
	}

	// Project is a loaded folder.
	Project struct {
		Folder   Folder
		Manifest *manifest.Manifest
		// Tree is empty, never nil, when the manifest is missing or invalid.
		Tree scripttree.Tree
		// Err is the load failure, if any. manifest.ErrManifestNotFound means
		// the folder currently has nothing to show.
		Err error
	}
)

// NewFolder builds a Folder for dir.
func NewFolder(dir string) (Folder, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Folder{}, fmt.Errorf("resolve %q: %w", dir, err)
	}
	return Folder{Name: filepath.Base(abs), Dir: abs}, nil
}

// Discover returns the folders holding a manifest: the root first, then the
// configured extra folders in order, then the expanded npm workspaces sorted
// by path. A folder listed twice is kept at its first position.
//
// The root is always returned, even without a manifest, so that callers can
// show the "nothing to show" state for it.
func Discover(fsys afero.Fs, opts Options) ([]Folder, error) {
	root, err := NewFolder(opts.Root)
	if err != nil {
		return nil, err
	}

	folders := []Folder{root}
	seen := map[string]bool{root.Dir: true}
	add := func(dir string) error {
		f, err := NewFolder(dir)
		if err != nil {
			return err
		}
		if seen[f.Dir] || !manifest.Exists(fsys, f.Dir) {
			return nil
		}
		seen[f.Dir] = true
		folders = append(folders, f)
		return nil
	}

	for _, extra := range opts.Extra {
		if !filepath.IsAbs(extra) {
			extra = filepath.Join(root.Dir, extra)
		}
		if err := add(extra); err != nil {
			return nil, err
		}
	}

	if opts.ExpandNpmWorkspaces {
		dirs, err := expandWorkspaces(fsys, root.Dir)
		if err != nil {
			return nil, err
		}
		for _, dir := range dirs {
			if err := add(dir); err != nil {
				return nil, err
			}
		}
	}

	return folders, nil
}

// expandWorkspaces resolves the root manifest's workspace globs to candidate
// folders. Matches without a manifest are filtered out by the caller. A
// missing or unreadable root manifest expands to nothing.
func expandWorkspaces(fsys afero.Fs, rootDir string) ([]string, error) {
	m, err := manifest.Load(fsys, rootDir)
	if err != nil {
		return nil, nil //nolint:nilerr // the root itself reports its load error
	}

	rootFS := afero.NewIOFS(afero.NewBasePathFs(fsys, rootDir))
	var dirs []string
	for _, pattern := range m.Workspaces {
		pattern = strings.TrimPrefix(path.Clean(filepath.ToSlash(pattern)), "./")
		matches, err := doublestar.Glob(rootFS, pattern)
		if err != nil {
			return nil, fmt.Errorf("expand workspace pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			if strings.Contains("/"+match+"/", "/node_modules/") {
				continue
			}
			dirs = append(dirs, filepath.Join(rootDir, filepath.FromSlash(match)))
		}
	}
	slices.Sort(dirs)
	return slices.Compact(dirs), nil
}

// Load reads the manifest of f and builds its tree with sep. Load never
// fails; problems are recorded in Project.Err.
func Load(fsys afero.Fs, f Folder, sep scripttree.Separator) Project {
	p := Project{Folder: f, Tree: scripttree.Tree{}}

	m, err := manifest.Load(fsys, f.Dir)
	if err != nil {
		p.Err = err
		return p
	}
	p.Manifest = m

	tree, err := m.Tree(sep)
	if err != nil {
		p.Err = err
		return p
	}
	p.Tree = tree
	return p
}

// LoadAll loads every folder in order.
func LoadAll(fsys afero.Fs, folders []Folder, sep scripttree.Separator) []Project {
	projects := make([]Project, len(folders))
	for i, f := range folders {
		projects[i] = Load(fsys, f, sep)
	}
	return projects
}

// Missing reports whether p has no manifest.
func (p Project) Missing() bool {
	return errors.Is(p.Err, manifest.ErrManifestNotFound)
}

// Dirs returns the folder paths of folders, in order.
func Dirs(folders []Folder) []string {
	out := make([]string, len(folders))
	for i, f := range folders {
		out[i] = f.Dir
	}
	return out
}
