// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the scriptree CLI commands.
//
// Every command is built by a newXxxCommand constructor that receives the
// App, the composition root holding configuration, filesystem, runtimes and
// standard streams. Commands load settings per invocation so flags, the user
// config file and the project's .scriptree.toml are applied consistently.
package cmd
