// SPDX-License-Identifier: MPL-2.0

// Package workspace finds the project folders whose manifests are shown side
// by side, and loads each of them into a script tree.
package workspace
