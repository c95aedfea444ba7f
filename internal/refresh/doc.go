// SPDX-License-Identifier: MPL-2.0

// Package refresh publishes freshly built script trees to interested views.
//
// A Publisher owns the latest Snapshot. Each Refresh rebuilds everything via
// the Loader and replaces the snapshot wholesale; subscribers are then called
// synchronously in registration order.
package refresh
