// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries an operation, a resource and remediation hints; the
// catalogue in this package holds Markdown guides rendered with glamour for the
// failures a user can fix themselves (missing manifest, bad separator, ...).
package issue
