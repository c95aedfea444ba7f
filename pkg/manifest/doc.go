// SPDX-License-Identifier: MPL-2.0

// Package manifest reads the scripts section of a package.json file.
//
// Manifests are parsed leniently: comments and trailing commas are accepted.
// Script declaration order is preserved, because it drives the order of the
// grouped tree built by package scripttree.
package manifest
