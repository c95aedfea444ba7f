// SPDX-License-Identifier: MPL-2.0

// Package tui renders script trees for the terminal.
//
// Items flattens the grouped scripts of one or more workspace folders into
// display rows, honouring which groups are expanded. Browser is a bubbletea
// model over those rows: it moves a cursor, expands and collapses groups,
// fuzzy-filters scripts by full name and hands the selected script to a
// RunFunc. New snapshots from the refresh publisher arrive as SnapshotMsg and
// replace the rows while keeping expansion state.
package tui
