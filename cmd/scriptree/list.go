// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"scriptree-cli/internal/config"
	"scriptree-cli/internal/issue"
	"scriptree-cli/internal/workspace"
	"scriptree-cli/pkg/scripttree"
)

const (
	formatTree = "tree"
	formatJSON = "json"
	formatFlat = "flat"
)

type (
	listFlagValues struct {
		format        string
		allWorkspaces bool
	}

	jsonProject struct {
		Folder string     `json:"folder"`
		Dir    string     `json:"dir"`
		Name   string     `json:"name,omitempty"`
		Error  string     `json:"error,omitempty"`
		Tree   []jsonNode `json:"tree"`
	}

	jsonNode struct {
		Type     string     `json:"type"`
		Label    string     `json:"label"`
		Name     string     `json:"name,omitempty"`
		Command  *string    `json:"command,omitempty"`
		Children []jsonNode `json:"children,omitempty"`
	}
)

func newListCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &listFlagValues{}
	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print the script tree",
		Long: `Print the scripts of package.json grouped by name segment.

Formats:
  tree   nested tree with commands (default)
  json   machine readable tree
  flat   one "<name><TAB><command>" line per script`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, app, rootFlags, flags)
		},
	}

	listCmd.Flags().StringVarP(&flags.format, "format", "f", formatTree, "output format (tree, json, flat)")
	listCmd.Flags().BoolVarP(&flags.allWorkspaces, "all-workspaces", "a", false, "include configured and npm workspace folders")
	_ = listCmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{formatTree, formatJSON, formatFlat}, cobra.ShellCompDirectiveNoFileComp))

	return listCmd
}

func runList(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *listFlagValues) error {
	if err := validateFormat(flags.format); err != nil {
		return err
	}

	s, err := app.loadSettings(cmd.Context(), rootFlags)
	if err != nil {
		return err
	}
	projects, err := app.loadProjects(s, flags.allWorkspaces)
	if err != nil {
		return err
	}

	// The root folder is always first. A broken root manifest is an error;
	// a missing one is the "nothing to show" state.
	rootProject := projects[0]
	if rootProject.Err != nil && !rootProject.Missing() {
		return issue.NewErrorContext().
			WithOperation("load scripts").
			WithResource(rootProject.Folder.Dir).
			Wrap(rootProject.Err).
			BuildError()
	}

	return writeProjects(app.stdout, projects, flags.format, s.cfg.UI.ColorScheme)
}

func validateFormat(format string) error {
	switch format {
	case formatTree, formatJSON, formatFlat:
		return nil
	default:
		return fmt.Errorf("unknown format %q (valid: tree, json, flat)", format)
	}
}

// writeProjects renders projects in format. A lone project without a
// manifest shows the "nothing to show" guide in tree format.
func writeProjects(w io.Writer, projects []workspace.Project, format string, scheme config.ColorScheme) error {
	switch format {
	case formatJSON:
		return writeJSON(w, projects)
	case formatFlat:
		writeFlat(w, projects)
		return nil
	}

	if len(projects) == 1 && projects[0].Missing() {
		renderGuide(w, issue.ManifestNotFoundId, scheme)
		return nil
	}
	writeTree(w, projects)
	return nil
}

// writeTree renders every project as a lipgloss tree rooted at its folder.
func writeTree(w io.Writer, projects []workspace.Project) {
	for i, p := range projects {
		if i > 0 {
			fmt.Fprintln(w)
		}
		t := tree.Root(TitleStyle.Render(p.Folder.Name)).
			Enumerator(tree.RoundedEnumerator).
			EnumeratorStyle(enumeratorStyle)

		switch {
		case p.Missing():
			t.Child(SubtitleStyle.Render("(nothing to show: no package.json)"))
		case p.Err != nil:
			t.Child(ErrorStyle.Render("error: ") + firstLine(p.Err.Error()))
		case len(p.Tree) == 0:
			t.Child(SubtitleStyle.Render("(no scripts)"))
		default:
			addTreeChildren(t, p.Tree)
		}
		fmt.Fprintln(w, t.String())
	}
}

func addTreeChildren(t *tree.Tree, nodes []scripttree.Node) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *scripttree.Leaf:
			t.Child(CmdStyle.Render(v.Label) + "  " + SubtitleStyle.Render(v.Command))
		case *scripttree.Group:
			sub := tree.Root(GroupStyle.Render(v.Label)).
				Enumerator(tree.RoundedEnumerator).
				EnumeratorStyle(enumeratorStyle)
			addTreeChildren(sub, v.Children)
			t.Child(sub)
		}
	}
}

// writeFlat prints one line per script. With several folders each line is
// prefixed by the folder name.
func writeFlat(w io.Writer, projects []workspace.Project) {
	multi := len(projects) > 1
	for _, p := range projects {
		for _, leaf := range p.Tree.Leaves() {
			if multi {
				fmt.Fprintf(w, "%s/", p.Folder.Name)
			}
			fmt.Fprintf(w, "%s\t%s\n", leaf.FullName, leaf.Command)
		}
	}
}

func writeJSON(w io.Writer, projects []workspace.Project) error {
	out := make([]jsonProject, len(projects))
	for i, p := range projects {
		jp := jsonProject{
			Folder: p.Folder.Name,
			Dir:    p.Folder.Dir,
			Tree:   toJSONNodes(p.Tree),
		}
		if p.Manifest != nil {
			jp.Name = p.Manifest.Name
		}
		if p.Err != nil {
			jp.Error = p.Err.Error()
		}
		out[i] = jp
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	return nil
}

func toJSONNodes(nodes []scripttree.Node) []jsonNode {
	out := make([]jsonNode, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case *scripttree.Leaf:
			// Always present on scripts, even when empty.
			out = append(out, jsonNode{Type: "script", Label: v.Label, Name: v.FullName, Command: &v.Command})
		case *scripttree.Group:
			out = append(out, jsonNode{Type: "group", Label: v.Label, Children: toJSONNodes(v.Children)})
		}
	}
	return out
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
