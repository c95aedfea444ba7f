// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"scriptree-cli/internal/refresh"
	"scriptree-cli/internal/workspace"
	"scriptree-cli/pkg/scripttree"
)

type ranMsg struct {
	folder string
	script string
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, b *Browser, msgs ...tea.Msg) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = b.Update(msg)
	}
	return cmd
}

func newTestBrowser(t *testing.T, projects ...workspace.Project) *Browser {
	t.Helper()
	return NewBrowser(BrowserOptions{
		Styles:   NewStyles(ColorSchemeDark),
		Snapshot: &refresh.Snapshot{Seq: 1, Projects: projects},
		Run: func(f workspace.Folder, leaf *scripttree.Leaf) tea.Cmd {
			return func() tea.Msg { return ranMsg{folder: f.Name, script: leaf.FullName} }
		},
	})
}

func selectedLabel(b *Browser) string {
	row, _ := b.Selected()
	return row.Label
}

func TestBrowser_ExpandCollapseAndRun(t *testing.T) {
	b := newTestBrowser(t, project(t, "web", "build:dev", "tsc", "build:watch", "tsc -w", "lint", "eslint"))

	if got := render(b.Rows()); got != "▸ build\n• lint\n" {
		t.Fatalf("initial rows:\n%s", got)
	}

	send(t, b, keyMsg("right"))
	if got := render(b.Rows()); got != "▾ build\n  • dev\n  • watch\n• lint\n" {
		t.Fatalf("after expand:\n%s", got)
	}

	send(t, b, keyMsg("right"), keyMsg("down"))
	if selectedLabel(b) != "watch" {
		t.Fatalf("selected = %q, want watch", selectedLabel(b))
	}

	cmd := send(t, b, keyMsg("enter"))
	if cmd == nil {
		t.Fatal("enter on a script should return a command")
	}
	if got := cmd(); got != (ranMsg{folder: "web", script: "build:watch"}) {
		t.Errorf("run message = %+v", got)
	}
	if !strings.Contains(b.View(), "Running web - build:watch") {
		t.Errorf("status line missing session name:\n%s", b.View())
	}

	send(t, b, keyMsg("left"))
	if selectedLabel(b) != "build" {
		t.Fatalf("left on a leaf should select its group, got %q", selectedLabel(b))
	}
	send(t, b, keyMsg("left"))
	if got := render(b.Rows()); got != "▸ build\n• lint\n" {
		t.Errorf("after collapse:\n%s", got)
	}
}

func TestBrowser_EnterTogglesGroup(t *testing.T) {
	b := newTestBrowser(t, project(t, "web", "a:x", "1", "a:y", "2"))

	if cmd := send(t, b, keyMsg("enter")); cmd != nil {
		t.Error("enter on a group should not return a command")
	}
	if len(b.Rows()) != 3 {
		t.Errorf("rows after toggle = %d, want 3", len(b.Rows()))
	}
	send(t, b, keyMsg("enter"))
	if len(b.Rows()) != 1 {
		t.Errorf("rows after second toggle = %d, want 1", len(b.Rows()))
	}
}

func TestBrowser_SnapshotKeepsExpansionAndSelection(t *testing.T) {
	b := newTestBrowser(t, project(t, "web", "test:unit", "jest u", "test:e2e", "pw", "lint", "eslint"))
	send(t, b, keyMsg("right"), keyMsg("down"))
	if selectedLabel(b) != "unit" {
		t.Fatalf("selected = %q, want unit", selectedLabel(b))
	}

	next := project(t, "web", "format", "prettier", "test:unit", "jest u", "test:e2e", "pw", "test:smoke", "s", "lint", "eslint")
	send(t, b, SnapshotMsg{Snapshot: &refresh.Snapshot{Seq: 2, Projects: []workspace.Project{next}}})

	want := "• format\n▾ test\n  • unit\n  • e2e\n  • smoke\n• lint\n"
	if got := render(b.Rows()); got != want {
		t.Errorf("rows after snapshot:\n%s\nwant:\n%s", got, want)
	}
	if selectedLabel(b) != "unit" {
		t.Errorf("selection after snapshot = %q, want unit", selectedLabel(b))
	}

	stale := project(t, "web", "only", "x")
	send(t, b, SnapshotMsg{Snapshot: &refresh.Snapshot{Seq: 1, Projects: []workspace.Project{stale}}})
	if render(b.Rows()) != want {
		t.Error("a stale snapshot replaced the rows")
	}
}

func TestBrowser_Filter(t *testing.T) {
	b := newTestBrowser(t,
		project(t, "web", "build", "tsc", "build:watch", "tsc -w", "lint", "eslint"),
		project(t, "api", "build:docker", "docker build ."),
	)

	send(t, b, keyMsg("/"), keyMsg("b"), keyMsg("w"))
	var names []string
	for _, r := range b.Rows() {
		names = append(names, r.Leaf.FullName)
	}
	if strings.Join(names, ",") != "build:watch" {
		t.Errorf("filtered = %v, want [build:watch]", names)
	}

	send(t, b, keyMsg("enter"))
	cmd := send(t, b, keyMsg("enter"))
	if cmd == nil {
		t.Fatal("enter on a filtered script should run it")
	}
	if got := cmd(); got != (ranMsg{folder: "web", script: "build:watch"}) {
		t.Errorf("run message = %+v", got)
	}

	send(t, b, keyMsg("esc"))
	if got := b.Rows()[0]; got.Kind != RowFolder {
		t.Errorf("esc should restore the tree, first row = %+v", got)
	}
}

func TestBrowser_RefreshAndQuit(t *testing.T) {
	refreshed := false
	b := NewBrowser(BrowserOptions{
		Styles: NewStyles(ColorSchemeLight),
		Refresh: func() tea.Cmd {
			refreshed = true
			return nil
		},
	})

	send(t, b, keyMsg("r"))
	if !refreshed {
		t.Error("r should call the refresh func")
	}
	if !strings.Contains(b.View(), "No matching scripts") {
		t.Errorf("empty browser view:\n%s", b.View())
	}

	cmd := send(t, b, keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestBrowser_Scrolling(t *testing.T) {
	var pairs []string
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		pairs = append(pairs, name, "echo "+name)
	}
	b := newTestBrowser(t, project(t, "web", pairs...))
	send(t, b, tea.WindowSizeMsg{Width: 80, Height: 8})

	for range 9 {
		send(t, b, keyMsg("down"))
	}
	view := b.View()
	if !strings.Contains(view, "• j") {
		t.Errorf("last row should be visible after scrolling:\n%s", view)
	}
	if strings.Contains(view, "• a\n") {
		t.Errorf("first row should have scrolled away:\n%s", view)
	}
}

func TestBrowser_StatusMsg(t *testing.T) {
	b := newTestBrowser(t, project(t, "web", "build", "tsc"))
	send(t, b, StatusMsg{Text: "web - build exited with code 2", Err: true})
	if !strings.Contains(b.View(), "exited with code 2") {
		t.Errorf("status not shown:\n%s", b.View())
	}
	send(t, b, keyMsg("down"))
	if !strings.Contains(b.View(), "[build] tsc") {
		t.Errorf("tooltip should replace the status after moving:\n%s", b.View())
	}
}
