// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/brpub/brpub/cmd/brpub"

func main() {
	cmd.Execute()
}
