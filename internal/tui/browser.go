// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"scriptree-cli/internal/refresh"
	"scriptree-cli/internal/runner"
	"scriptree-cli/internal/workspace"
	"scriptree-cli/pkg/scripttree"
)

type (
	// SnapshotMsg delivers a newly published snapshot to the browser.
	SnapshotMsg struct {
		Snapshot *refresh.Snapshot
	}

	// StatusMsg replaces the status line.
	StatusMsg struct {
		Text string
		Err  bool
	}

	// RunFunc starts leaf from folder. The returned command typically wraps
	// tea.Exec and reports back with a StatusMsg.
	RunFunc func(folder workspace.Folder, leaf *scripttree.Leaf) tea.Cmd

	// RefreshFunc requests a new snapshot. The result arrives as a SnapshotMsg.
	RefreshFunc func() tea.Cmd

	// BrowserOptions configures a Browser.
	BrowserOptions struct {
		Title     string
		ExpandAll bool
		Styles    Styles
		Run       RunFunc
		Refresh   RefreshFunc
		// Snapshot is shown until the first SnapshotMsg arrives.
		Snapshot *refresh.Snapshot
	}

	// Browser is the interactive script tree.
	Browser struct {
		opts   BrowserOptions
		keys   keyMap
		help   help.Model
		filter textinput.Model

		projects []workspace.Project
		seq      uint64
		expanded map[string]bool

		rows    []Row
		matched map[int][]int
		cursor  int
		offset  int
		width   int
		height  int

		status    string
		statusErr bool
	}

	leafSource []Row
)

func (s leafSource) String(i int) string { return s[i].Leaf.FullName }
func (s leafSource) Len() int            { return len(s) }

// NewBrowser creates a browser showing opts.Snapshot.
func NewBrowser(opts BrowserOptions) *Browser {
	if opts.Title == "" {
		opts.Title = "Scripts"
	}
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter scripts"

	b := &Browser{
		opts:     opts,
		keys:     defaultKeyMap(),
		help:     help.New(),
		filter:   ti,
		expanded: make(map[string]bool),
	}
	if opts.Snapshot != nil {
		b.projects = opts.Snapshot.Projects
		b.seq = opts.Snapshot.Seq
	}
	b.rebuild()
	return b
}

// Init implements tea.Model.
func (b *Browser) Init() tea.Cmd { return nil }

// Rows returns the visible rows.
func (b *Browser) Rows() []Row { return b.rows }

// Selected returns the row under the cursor.
func (b *Browser) Selected() (Row, bool) {
	if b.cursor < 0 || b.cursor >= len(b.rows) {
		return Row{}, false
	}
	return b.rows[b.cursor], true
}

// Update implements tea.Model.
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		b.help.Width = msg.Width
		b.scroll()
		return b, nil

	case SnapshotMsg:
		if msg.Snapshot == nil || msg.Snapshot.Seq < b.seq {
			return b, nil
		}
		b.seq = msg.Snapshot.Seq
		b.projects = msg.Snapshot.Projects
		b.rebuildKeepingSelection()
		return b, nil

	case StatusMsg:
		b.status, b.statusErr = msg.Text, msg.Err
		return b, nil

	case tea.KeyMsg:
		if b.filter.Focused() {
			return b.updateFilter(msg)
		}
		return b.updateKeys(msg)
	}
	return b, nil
}

func (b *Browser) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, b.keys.Quit):
		return b, tea.Quit
	case key.Matches(msg, b.keys.Up):
		b.move(-1)
	case key.Matches(msg, b.keys.Down):
		b.move(1)
	case key.Matches(msg, b.keys.Expand):
		b.expand()
	case key.Matches(msg, b.keys.Collapse):
		b.collapse()
	case key.Matches(msg, b.keys.Run):
		return b, b.activate()
	case key.Matches(msg, b.keys.Filter):
		b.filter.Focus()
		return b, textinput.Blink
	case key.Matches(msg, b.keys.Clear):
		if b.filter.Value() != "" {
			b.filter.SetValue("")
			b.rebuild()
		}
	case key.Matches(msg, b.keys.Refresh):
		if b.opts.Refresh != nil {
			b.status, b.statusErr = "Refreshing…", false
			return b, b.opts.Refresh()
		}
	case key.Matches(msg, b.keys.Help):
		b.help.ShowAll = !b.help.ShowAll
	}
	return b, nil
}

func (b *Browser) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		b.filter.Blur()
		b.filter.SetValue("")
		b.rebuild()
		return b, nil
	case tea.KeyEnter:
		b.filter.Blur()
		return b, nil
	case tea.KeyUp:
		b.move(-1)
		return b, nil
	case tea.KeyDown:
		b.move(1)
		return b, nil
	case tea.KeyCtrlC:
		return b, tea.Quit
	}

	var cmd tea.Cmd
	before := b.filter.Value()
	b.filter, cmd = b.filter.Update(msg)
	if b.filter.Value() != before {
		b.cursor, b.offset = 0, 0
		b.rebuild()
	}
	return b, cmd
}

func (b *Browser) activate() tea.Cmd {
	row, ok := b.Selected()
	if !ok {
		return nil
	}
	if row.Expandable() {
		b.toggle(row, !row.Expanded)
		return nil
	}
	if row.Kind != RowScript || b.opts.Run == nil {
		return nil
	}
	b.status = "Running " + runner.SessionName(row.Folder.Name, row.Leaf.FullName)
	b.statusErr = false
	return b.opts.Run(row.Folder, row.Leaf)
}

func (b *Browser) expand() {
	row, ok := b.Selected()
	if !ok || !row.Expandable() {
		return
	}
	if !row.Expanded {
		b.toggle(row, true)
		return
	}
	if b.cursor+1 < len(b.rows) && b.rows[b.cursor+1].Depth > row.Depth {
		b.move(1)
	}
}

func (b *Browser) collapse() {
	row, ok := b.Selected()
	if !ok {
		return
	}
	if row.Expandable() && row.Expanded {
		b.toggle(row, false)
		return
	}
	for i := b.cursor - 1; i >= 0; i-- {
		if b.rows[i].Depth < row.Depth && b.rows[i].Expandable() {
			b.cursor = i
			b.scroll()
			return
		}
	}
}

func (b *Browser) toggle(row Row, expanded bool) {
	b.expanded[row.Key] = expanded
	b.rebuildKeepingSelection()
}

func (b *Browser) move(delta int) {
	if len(b.rows) == 0 {
		return
	}
	b.cursor = max(0, min(len(b.rows)-1, b.cursor+delta))
	b.status = ""
	b.scroll()
}

func (b *Browser) visibleRows() int {
	if b.height <= 0 {
		return len(b.rows)
	}
	reserved := 4 + lipgloss.Height(b.help.View(b.keys))
	return max(1, b.height-reserved)
}

func (b *Browser) scroll() {
	n := b.visibleRows()
	if b.cursor < b.offset {
		b.offset = b.cursor
	}
	if b.cursor >= b.offset+n {
		b.offset = b.cursor - n + 1
	}
	b.offset = max(0, b.offset)
}

func (b *Browser) rebuild() {
	query := b.filter.Value()
	if query == "" {
		b.matched = nil
		b.rows = Items(b.projects, ItemsOptions{ExpandAll: b.opts.ExpandAll, Expanded: b.expanded})
	} else {
		b.rows, b.matched = b.filtered(query)
	}
	b.cursor = max(0, min(b.cursor, len(b.rows)-1))
	b.scroll()
}

// rebuildKeepingSelection rebuilds the rows and moves the cursor back to the
// row it was on, matched by group key or script name.
func (b *Browser) rebuildKeepingSelection() {
	prev, ok := b.Selected()
	b.rebuild()
	if !ok {
		return
	}
	for i, r := range b.rows {
		if sameRow(prev, r) {
			b.cursor = i
			b.scroll()
			return
		}
	}
}

func sameRow(a, b Row) bool {
	if a.Kind != b.Kind || a.Folder.Dir != b.Folder.Dir {
		return false
	}
	if a.Kind == RowScript {
		return a.Leaf.FullName == b.Leaf.FullName
	}
	return a.Key == b.Key && a.Label == b.Label
}

func (b *Browser) filtered(query string) ([]Row, map[int][]int) {
	var leaves leafSource
	for _, p := range b.projects {
		for _, leaf := range p.Tree.Leaves() {
			leaves = append(leaves, Row{
				Kind:    RowScript,
				Label:   leaf.FullName,
				Tooltip: fmt.Sprintf("[%s] %s", leaf.FullName, leaf.Command),
				Icon:    "•",
				Leaf:    leaf,
				Folder:  p.Folder,
			})
		}
	}

	matches := fuzzy.FindFrom(query, leaves)
	rows := make([]Row, 0, len(matches))
	matched := make(map[int][]int, len(matches))
	for i, m := range matches {
		rows = append(rows, leaves[m.Index])
		matched[i] = m.MatchedIndexes
	}
	return rows, matched
}

// View implements tea.Model.
func (b *Browser) View() string {
	s := b.opts.Styles
	var sb strings.Builder

	sb.WriteString(s.Title.Render(b.opts.Title))
	sb.WriteByte('\n')
	if b.filter.Focused() || b.filter.Value() != "" {
		sb.WriteString(b.filter.View())
		sb.WriteByte('\n')
	}

	if len(b.rows) == 0 {
		sb.WriteString(s.Message.Render("  No matching scripts"))
		sb.WriteByte('\n')
	}
	end := min(len(b.rows), b.offset+b.visibleRows())
	multi := len(b.projects) > 1
	for i := b.offset; i < end; i++ {
		sb.WriteString(b.renderRow(i, multi))
		sb.WriteByte('\n')
	}

	sb.WriteByte('\n')
	sb.WriteString(b.statusLine())
	sb.WriteByte('\n')
	sb.WriteString(b.help.View(b.keys))
	return sb.String()
}

func (b *Browser) renderRow(i int, multi bool) string {
	s := b.opts.Styles
	row := b.rows[i]
	selected := i == b.cursor

	base := s.Script
	switch row.Kind {
	case RowFolder:
		base = s.Folder
	case RowGroup:
		base = s.Group
	case RowMessage:
		base = s.Message
	}
	if selected {
		base = s.Selected
	}

	label := base.Render(row.Label)
	if idx, ok := b.matched[i]; ok && len(idx) > 0 {
		label = lipgloss.StyleRunes(row.Label, idx, base.Inherit(s.Match), base)
	}
	if b.matched != nil && multi {
		label += " " + s.Tooltip.Render("("+row.Folder.Name+")")
	}

	cursor := "  "
	if selected {
		cursor = s.Selected.Render("> ")
	}
	icon := row.Icon
	if icon != "" {
		icon += " "
	}
	return cursor + strings.Repeat("  ", row.Depth) + icon + label
}

func (b *Browser) statusLine() string {
	s := b.opts.Styles
	if b.status != "" {
		if b.statusErr {
			return s.Error.Render(b.status)
		}
		return s.Status.Render(b.status)
	}
	if row, ok := b.Selected(); ok {
		return s.Tooltip.Render(row.Tooltip)
	}
	return ""
}
