// SPDX-License-Identifier: MPL-2.0

// Package watch notifies about manifest changes in a set of project folders.
//
// Each folder is watched non-recursively; only files whose base name matches
// one of the configured patterns (package.json and .scriptree.toml by default)
// are reported. Events inside the debounce window are coalesced so the
// callback fires once with the full set of changed paths.
package watch
