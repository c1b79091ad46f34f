// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"github.com/spf13/cobra"

	"github.com/bartekus/sddlite/cmd/sdd-lite/internal/clierr"
	"github.com/bartekus/sddlite/internal/project"
)

func newInitCommand(a *app) *cobra.Command {
	var (
		projectType string
		entry       string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold the harness and patch the host entry or app.json",
		Long: `Creates the __sdd__ scaffold for a web (vue2, vue3) or mini-program
(mp-wechat) project. Existing files are never overwritten. For web projects the
entry file gets a dev-only boot import; for mini-programs the debug page is
registered in app.json and the scenario manifest is generated.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.resolve()
			if err != nil {
				return err
			}

			raw := projectType
			if raw == "" {
				raw = e.cfg.Type
			}
			if raw == "" {
				if !a.interactive(cmd.InOrStdin()) {
					return clierr.InvalidInput("missing --type (vue2, vue3 or mp-wechat)")
				}
				options := make([]string, 0, 3)
				for _, t := range project.Types() {
					options = append(options, string(t))
				}
				raw, err = newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).selectOne("Select project type", options)
				if err != nil {
					return clierr.Wrap(clierr.CodeInvalidInput, "init", err)
				}
			}
			typ, err := project.ParseType(raw)
			if err != nil {
				return clierr.Wrap(clierr.CodeInvalidInput, "init", err)
			}

			h, rep, err := a.harness(e, "init", e.lang(cmd))
			if err != nil {
				return err
			}

			if typ.IsMiniProgram() {
				mpRoot := e.configuredMpRoot()
				if mpRoot == "" {
					mpRoot = project.MpRootForInit(e.root)
				}
				return a.finish(cmd, rep, "init", h.InitMiniProgram(mpRoot))
			}

			if entry == "" {
				entry = e.cfg.Entry
			}
			return a.finish(cmd, rep, "init", h.InitWeb(entry))
		},
	}

	cmd.Flags().StringVar(&projectType, "type", "", "project type: vue2, vue3 or mp-wechat")
	cmd.Flags().StringVar(&entry, "entry", "", "entry file to patch, relative to the project root")
	addLangFlags(cmd)

	return cmd
}
