// SPDX-License-Identifier: MPL-2.0

// Package scripttree groups a flat, ordered list of named scripts into a tree.
//
// Script names are split on a separator (":" by default). Scripts that share a
// leading segment are nested under a Group labelled with that segment, while a
// segment shared by only one script collapses into a single Leaf whose label
// keeps the full remaining name (e.g. "build:watch" stays a root leaf when it is
// the only script under "build").
//
// Build is pure: it never mutates its input, performs no I/O and returns a fresh
// tree on every call, so it is safe for concurrent use. All validation (empty
// separator, duplicate names) happens before grouping starts; the grouping pass
// itself cannot fail.
package scripttree
