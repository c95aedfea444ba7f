// SPDX-License-Identifier: MPL-2.0

// Package testutil holds small helpers shared by tests: environment overrides
// that restore themselves and a manually advanced clock.
package testutil
