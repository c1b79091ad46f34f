// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/bartekus/sddlite/cmd/sdd-lite/internal/clierr"
)

func newAddModuleCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-module <modulePath>",
		Short: "Create the __sdd__ helpers, mocks and scenarios skeleton of a module",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				return clierr.InvalidInput("module path is required")
			}
			e, err := a.resolve()
			if err != nil {
				return err
			}
			h, rep, err := a.harness(e, "add-module", e.lang(cmd))
			if err != nil {
				return err
			}
			_, err = h.AddModule(args[0])
			return a.finish(cmd, rep, "add-module", err)
		},
	}
	addLangFlags(cmd)
	return cmd
}
