// SPDX-License-Identifier: MPL-2.0

// Package runner executes package scripts.
//
// A Request names a script and how to run it: through the package manager
// ("npm run build") or directly as the raw command with node_modules/.bin on
// PATH. The resulting command line is executed by a Runtime: the host shell
// (native) or the embedded mvdan/sh interpreter (virtual). Both produce a
// Process that can run on the caller's terminal or be handed to a bubbletea
// program with tea.Exec.
package runner
