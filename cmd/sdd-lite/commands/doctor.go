// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"github.com/spf13/cobra"

	"github.com/bartekus/sddlite/cmd/sdd-lite/internal/clierr"
	"github.com/bartekus/sddlite/internal/doctor"
)

func newDoctorCommand(a *app) *cobra.Command {
	var scopeFlag string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the harness of a project without changing anything",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := doctor.ParseScope(scopeFlag)
			if err != nil {
				return clierr.Wrap(clierr.CodeInvalidInput, "doctor", err)
			}
			e, err := a.resolve()
			if err != nil {
				return err
			}

			res, err := doctor.New(e.root, a.log).WithMpRoot(e.mpRoot()).Run(scope)
			if err != nil {
				return clierr.Failure("doctor", err)
			}

			if a.json {
				err = res.RenderJSON(cmd.OutOrStdout())
			} else {
				err = res.RenderText(cmd.OutOrStdout())
			}
			if err != nil {
				return clierr.Failure("printing checks", err)
			}
			if res.Failed() {
				return clierr.New(clierr.CodeFailure, "doctor: some checks failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scopeFlag, "type", "auto", "harness to check: auto, web or mp-wechat")

	return cmd
}
