// SPDX-License-Identifier: MPL-2.0

package main

import "scriptree-cli/cmd/scriptree"

func main() {
	cmd.Execute()
}
