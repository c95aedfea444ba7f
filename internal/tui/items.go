// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"errors"
	"fmt"
	"strings"

	"scriptree-cli/internal/workspace"
	"scriptree-cli/pkg/manifest"
	"scriptree-cli/pkg/scripttree"
)

const (
	// RowFolder is a workspace folder heading.
	RowFolder RowKind = iota
	// RowGroup is a group of scripts sharing a name segment.
	RowGroup
	// RowScript is a runnable script.
	RowScript
	// RowMessage is an informational line such as "nothing to show".
	RowMessage
)

const keySep = "\x00"

type (
	// RowKind classifies a Row.
	RowKind int

	// Row is one visible line of the tree.
	Row struct {
		Kind  RowKind
		Label string
		Depth int
		// Tooltip describes the row on the status line.
		Tooltip string
		Icon    string
		// Expanded is meaningful for folders and groups.
		Expanded bool
		// Key identifies folders and groups across refreshes.
		Key string
		// Leaf is set for RowScript.
		Leaf   *scripttree.Leaf
		Folder workspace.Folder
	}

	// ItemsOptions controls Items.
	ItemsOptions struct {
		// ExpandAll makes groups start expanded.
		ExpandAll bool
		// Expanded overrides the default state of folders and groups by Key.
		Expanded map[string]bool
	}
)

// Expandable reports whether the row can be toggled.
func (r Row) Expandable() bool { return r.Kind == RowFolder || r.Kind == RowGroup }

// Items flattens projects into visible rows. A single project is shown
// without a folder heading.
func Items(projects []workspace.Project, opts ItemsOptions) []Row {
	var rows []Row
	multi := len(projects) > 1

	for _, p := range projects {
		depth := 0
		if multi {
			key := p.Folder.Dir
			expanded := isExpanded(opts, key, true)
			rows = append(rows, Row{
				Kind:     RowFolder,
				Label:    p.Folder.Name,
				Tooltip:  fmt.Sprintf("%s Workspace Folder", p.Folder.Name),
				Icon:     folderIcon(expanded),
				Expanded: expanded,
				Key:      key,
				Folder:   p.Folder,
			})
			if !expanded {
				continue
			}
			depth = 1
		}

		if msg := projectMessage(p); msg != "" {
			rows = append(rows, Row{Kind: RowMessage, Label: msg, Tooltip: msg, Depth: depth, Folder: p.Folder})
			continue
		}
		rows = appendNodes(rows, p.Tree, p.Folder, p.Folder.Dir, depth, opts)
	}
	return rows
}

func appendNodes(rows []Row, nodes []scripttree.Node, folder workspace.Folder, parentKey string, depth int, opts ItemsOptions) []Row {
	for _, n := range nodes {
		switch v := n.(type) {
		case *scripttree.Leaf:
			rows = append(rows, Row{
				Kind:    RowScript,
				Label:   v.Label,
				Depth:   depth,
				Tooltip: fmt.Sprintf("[%s] %s", v.FullName, v.Command),
				Icon:    "•",
				Leaf:    v,
				Folder:  folder,
			})
		case *scripttree.Group:
			key := parentKey + keySep + v.Label
			expanded := isExpanded(opts, key, opts.ExpandAll)
			rows = append(rows, Row{
				Kind:     RowGroup,
				Label:    v.Label,
				Depth:    depth,
				Tooltip:  fmt.Sprintf("%s Scripts", v.Label),
				Icon:     folderIcon(expanded),
				Expanded: expanded,
				Key:      key,
				Folder:   folder,
			})
			if expanded {
				rows = appendNodes(rows, v.Children, folder, key, depth+1, opts)
			}
		}
	}
	return rows
}

func isExpanded(opts ItemsOptions, key string, def bool) bool {
	if v, ok := opts.Expanded[key]; ok {
		return v
	}
	return def
}

func folderIcon(expanded bool) string {
	if expanded {
		return "▾"
	}
	return "▸"
}

func projectMessage(p workspace.Project) string {
	switch {
	case p.Err == nil && len(p.Tree) == 0:
		return "No scripts"
	case p.Err == nil:
		return ""
	case errors.Is(p.Err, manifest.ErrManifestNotFound):
		return "Nothing to show: no package.json"
	default:
		return "Error: " + firstLine(p.Err.Error())
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
