// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Values are layered, lowest precedence first: built-in defaults, the user file
// (config.cue in the platform config directory, validated against the embedded
// config_schema.cue), the project's .scriptree.toml, then SCRIPTREE_* environment
// variables. Command-line flags are applied by the caller on top of the result.
package config
