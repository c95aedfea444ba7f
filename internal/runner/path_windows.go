// SPDX-License-Identifier: MPL-2.0

//go:build windows

package runner

import "strings"

func isPathVar(name string) bool { return strings.EqualFold(name, "PATH") }
