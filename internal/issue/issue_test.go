// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

// stubRender replaces the glamour renderer with an identity function for the
// duration of the test.
func stubRender(t *testing.T) {
	t.Helper()
	original := render
	t.Cleanup(func() { render = original })
	render = func(in string, _ string) (string, error) { return in, nil }
}

func allIds() []Id {
	return []Id{
		ManifestNotFoundId,
		ManifestParseErrorId,
		InvalidSeparatorId,
		DuplicateScriptId,
		ConfigLoadFailedId,
		ScriptNotFoundId,
		ScriptExecutionFailedId,
		ShellNotFoundId,
		PackageManagerNotFoundId,
		SessionBusyId,
	}
}

func TestId_Constants(t *testing.T) {
	seen := make(map[Id]bool)
	for _, id := range allIds() {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}

	if ManifestNotFoundId != 1 {
		t.Errorf("ManifestNotFoundId = %d, want 1", ManifestNotFoundId)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{ManifestNotFoundId, false, "Nothing to show"},
		{ManifestParseErrorId, false, "Failed to read package.json"},
		{InvalidSeparatorId, false, "Invalid separator"},
		{DuplicateScriptId, false, "Duplicate script name"},
		{ConfigLoadFailedId, false, "Failed to load configuration"},
		{ScriptNotFoundId, false, "Script not found"},
		{ScriptExecutionFailedId, false, "Script execution failed"},
		{ShellNotFoundId, false, "Shell not found"},
		{PackageManagerNotFoundId, false, "Package manager not found"},
		{SessionBusyId, false, "already running"},
		{Id(9999), true, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			issue := Get(tt.id)

			if tt.wantNil {
				if issue != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}

			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if issue.Id() != tt.id {
				t.Errorf("Get(%d).Id() = %d", tt.id, issue.Id())
			}
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain %q", tt.id, tt.contains)
			}
		})
	}
}

func TestValues(t *testing.T) {
	values := Values()

	if len(values) != len(allIds()) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), len(allIds()))
	}
	for i, issue := range values {
		if issue.Id() != allIds()[i] {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, issue.Id(), allIds()[i])
		}
		if issue.MarkdownMsg() == "" {
			t.Errorf("Issue %d has empty MarkdownMsg", issue.Id())
		}
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	issue := Get(ManifestNotFoundId)

	links := issue.ExtLinks()
	if len(links) == 0 {
		t.Fatal("ManifestNotFound should carry an external link")
	}
	original := links[0]
	links[0] = "modified"
	if issue.ExtLinks()[0] != original {
		t.Error("ExtLinks() should return a clone")
	}
	if issue.DocLinks() != nil {
		t.Errorf("DocLinks() = %v, want nil", issue.DocLinks())
	}
}

func TestIssue_Render(t *testing.T) {
	stubRender(t)

	rendered, err := Get(ManifestNotFoundId).Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(rendered, "package.json") {
		t.Error("Render() output should mention package.json")
	}
	if !strings.Contains(rendered, "See also") {
		t.Error("Render() with links should contain 'See also'")
	}
}

func TestIssue_Render_NoLinks(t *testing.T) {
	stubRender(t)

	testIssue := &Issue{
		id:    Id(9998),
		mdMsg: "# Test Issue\n\nNo links here.",
	}

	rendered, err := testIssue.Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if strings.Contains(rendered, "See also") {
		t.Error("Render() without links should not contain 'See also'")
	}
}

func TestAllIssuesAreRenderable(t *testing.T) {
	for _, issue := range Values() {
		rendered, err := issue.Render("notty")
		if err != nil {
			t.Errorf("Issue %d failed to render: %v", issue.Id(), err)
		}
		if strings.TrimSpace(rendered) == "" {
			t.Errorf("Issue %d rendered to empty string", issue.Id())
		}
	}
}
