// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"

	"scriptree-cli/pkg/scripttree"
)

// Parse decodes manifest data read from path.
//
// A missing scripts section yields an empty script list. Every script value
// must be a string; anything else is reported as a *MalformedEntryError.
// A name declared twice is reported as a *scripttree.DuplicateScriptError.
func Parse(path string, data []byte) (*Manifest, error) {
	data = jsonc.ToJSON(data)
	if !gjson.ValidBytes(data) {
		return nil, &InvalidManifestError{Path: path, Reason: "not valid JSON"}
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &InvalidManifestError{Path: path, Reason: "top level must be an object"}
	}

	m := &Manifest{
		Path: path,
		Dir:  filepath.Dir(path),
	}
	if name := root.Get("name"); name.Type == gjson.String {
		m.Name = name.String()
	}

	scripts, err := parseScripts(path, root.Get("scripts"))
	if err != nil {
		return nil, err
	}
	m.Scripts = scripts
	m.Workspaces = parseWorkspaces(root.Get("workspaces"))

	if err := scripttree.CheckUnique(m.Scripts); err != nil {
		return nil, err
	}
	return m, nil
}

func parseScripts(path string, section gjson.Result) ([]scripttree.Script, error) {
	if !section.Exists() || section.Type == gjson.Null {
		return []scripttree.Script{}, nil
	}
	if !section.IsObject() {
		return nil, &InvalidManifestError{Path: path, Reason: `"scripts" must be an object, got ` + kindOf(section)}
	}

	var (
		scripts []scripttree.Script
		err     error
	)
	// ForEach walks the raw object, so declaration order and repeated keys
	// are both preserved.
	section.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			err = &MalformedEntryError{Path: path, Name: key.String(), Kind: kindOf(value)}
			return false
		}
		scripts = append(scripts, scripttree.Script{Name: key.String(), Command: value.String()})
		return true
	})
	if err != nil {
		return nil, err
	}
	if scripts == nil {
		scripts = []scripttree.Script{}
	}
	return scripts, nil
}

// parseWorkspaces accepts both the array form and the yarn object form
// ({"packages": [...]}).
func parseWorkspaces(v gjson.Result) []string {
	if v.IsObject() {
		v = v.Get("packages")
	}
	if !v.IsArray() {
		return nil
	}
	var globs []string
	for _, g := range v.Array() {
		if g.Type == gjson.String && g.String() != "" {
			globs = append(globs, g.String())
		}
	}
	return globs
}

func kindOf(v gjson.Result) string {
	switch {
	case v.IsObject():
		return "object"
	case v.IsArray():
		return "array"
	case v.Type == gjson.Number:
		return "number"
	case v.Type == gjson.True, v.Type == gjson.False:
		return "boolean"
	case v.Type == gjson.Null:
		return "null"
	default:
		return "string"
	}
}
