// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/bartekus/sddlite/cmd/sdd-lite/commands"
	"github.com/bartekus/sddlite/cmd/sdd-lite/internal/clierr"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sdd-lite:", err)
		os.Exit(clierr.ExitCodeOf(err))
	}
}
