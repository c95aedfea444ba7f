// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package runner

func isPathVar(name string) bool { return name == "PATH" }
