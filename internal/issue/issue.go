// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

// Id identifies a catalogued issue.
type Id int

const (
	ManifestNotFoundId Id = iota + 1
	ManifestParseErrorId
	InvalidSeparatorId
	DuplicateScriptId
	ConfigLoadFailedId
	ScriptNotFoundId
	ScriptExecutionFailedId
	ShellNotFoundId
	PackageManagerNotFoundId
	SessionBusyId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue guide as terminal Markdown using the glamour
// style at stylePath (e.g. "dark", "light", "notty").
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# Nothing to show

No package.json was found in the project directory, so there are no scripts to group.

## Things you can try:
- Run scriptree from the directory holding your package.json
- Point it at another directory:
~~~
$ scriptree list -C ./frontend
~~~

- Create a manifest:
~~~
$ npm init -y
~~~`,
		extLinks: []HttpLink{"https://docs.npmjs.com/cli/configuring-npm/package-json#scripts"},
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Failed to read package.json!

The manifest could not be parsed.

## Common causes:
- Invalid JSON (comments and trailing commas are tolerated)
- A script whose value is not a string
- "scripts" declared as something other than an object

## Example:
~~~json
{
  "scripts": {
    "build": "tsc",
    "build:watch": "tsc -w"
  }
}
~~~`,
	}

	invalidSeparatorIssue = &Issue{
		id: InvalidSeparatorId,
		mdMsg: `
# Invalid separator!

The separator used to split script names into groups must be a non-empty string.

## Things you can try:
- Set it in your config file:
~~~cue
separator: ":"
~~~

- Or per project in .scriptree.toml:
~~~toml
separator = "/"
~~~

- Or on the command line:
~~~
$ scriptree list --separator /
~~~`,
	}

	duplicateScriptIssue = &Issue{
		id: DuplicateScriptId,
		mdMsg: `
# Duplicate script name!

The same key appears twice in the "scripts" section. JSON parsers silently keep only
one of them, so the tree refuses to guess which one you meant.

## Things you can try:
- Remove or rename one of the entries in package.json`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be loaded.

## Things you can try:
- Check the file for CUE syntax errors
- Show where scriptree looks for it:
~~~
$ scriptree config path
~~~

- Regenerate a default file:
~~~
$ scriptree config init
~~~`,
	}

	scriptNotFoundIssue = &Issue{
		id: ScriptNotFoundId,
		mdMsg: `
# Script not found!

No script with that name is declared in package.json.

## Things you can try:
- List the available scripts:
~~~
$ scriptree list --format flat
~~~

- Use the full name, including the group prefix (e.g. "build:watch", not "watch")`,
	}

	scriptExecutionFailedIssue = &Issue{
		id: ScriptExecutionFailedId,
		mdMsg: `
# Script execution failed!

The script could not be started or exited with an error.

## Things you can try:
- Print the exact command line without running it:
~~~
$ scriptree run build --dry-run
~~~

- Run the raw command instead of going through the package manager:
~~~
$ scriptree run build --direct
~~~

- Try the built-in shell:
~~~
$ scriptree run build --runtime virtual
~~~`,
	}

	shellNotFoundIssue = &Issue{
		id: ShellNotFoundId,
		mdMsg: `
# Shell not found!

The native runtime could not find a shell to run the script with.

## Things you can try:
- Set the SHELL environment variable
- Install bash or sh and make sure it is in your PATH
- Use the built-in shell:
~~~cue
runtime: "virtual"
~~~`,
	}

	packageManagerNotFoundIssue = &Issue{
		id: PackageManagerNotFoundId,
		mdMsg: `
# Package manager not found!

The configured package manager is not installed or not in your PATH.

## Things you can try:
- Install it (npm ships with Node.js)
- Pick another one:
~~~
$ scriptree run build --package-manager pnpm
~~~

- Let scriptree pick it from the lock file:
~~~cue
package_manager: "auto"
~~~

- Bypass the package manager:
~~~
$ scriptree run build --direct
~~~`,
	}

	sessionBusyIssue = &Issue{
		id: SessionBusyId,
		mdMsg: `
# Script already running!

The same script in the same workspace folder is still running. Wait for it to
finish before starting it again.`,
	}

	issues = map[Id]*Issue{
		manifestNotFoundIssue.Id():       manifestNotFoundIssue,
		manifestParseErrorIssue.Id():     manifestParseErrorIssue,
		invalidSeparatorIssue.Id():       invalidSeparatorIssue,
		duplicateScriptIssue.Id():        duplicateScriptIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		scriptNotFoundIssue.Id():         scriptNotFoundIssue,
		scriptExecutionFailedIssue.Id():  scriptExecutionFailedIssue,
		shellNotFoundIssue.Id():          shellNotFoundIssue,
		packageManagerNotFoundIssue.Id(): packageManagerNotFoundIssue,
		sessionBusyIssue.Id():            sessionBusyIssue,
	}
)

// Values returns every catalogued issue ordered by Id.
func Values() []*Issue {
	out := slices.Collect(maps.Values(issues))
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
