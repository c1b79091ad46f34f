// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bartekus/sddlite/cmd/sdd-lite/internal/clierr"
	"github.com/bartekus/sddlite/internal/harness"
)

func newAddScenarioCommand(a *app) *cobra.Command {
	var sc harness.Scenario

	cmd := &cobra.Command{
		Use:   "add-scenario <modulePath>",
		Short: "Add a scenario to a module and refresh the mini-program manifest",
		Long: `Writes <modulePath>/__sdd__/scenarios/<id>.scenario.<ext> from the basic or
api-variants template. An existing scenario file is left alone. Missing --id,
--title and --template values are asked for when stdin is a terminal.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			modulePath := args[0]
			if strings.TrimSpace(modulePath) == "" {
				return clierr.InvalidInput("module path is required")
			}
			e, err := a.resolve()
			if err != nil {
				return err
			}

			if err := a.completeScenario(cmd, &sc); err != nil {
				return err
			}
			if err := harness.ValidateScenarioID(sc.ID); err != nil {
				return clierr.Wrap(clierr.CodeInvalidInput, "add-scenario", err)
			}
			if !slices.Contains(harness.ScenarioTemplates(), sc.Template) {
				return clierr.InvalidInput("unknown --template %q (want %s)", sc.Template, strings.Join(harness.ScenarioTemplates(), " or "))
			}

			h, rep, err := a.harness(e, "add-scenario", e.lang(cmd))
			if err != nil {
				return err
			}
			return a.finish(cmd, rep, "add-scenario", h.AddScenario(modulePath, sc))
		},
	}

	cmd.Flags().StringVar(&sc.ID, "id", "", "scenario id, also the file name")
	cmd.Flags().StringVar(&sc.Title, "title", "", "scenario title (default: the id)")
	cmd.Flags().StringVar(&sc.Template, "template", "", "scenario template: basic or api-variants (default: basic)")
	addLangFlags(cmd)

	return cmd
}

// completeScenario prompts for the values the flags left empty. Without a
// terminal only the id is required; title and template take their defaults.
func (a *app) completeScenario(cmd *cobra.Command, sc *harness.Scenario) error {
	interactive := a.interactive(cmd.InOrStdin())
	if !interactive {
		if sc.ID == "" {
			return clierr.InvalidInput("missing --id")
		}
		if sc.Title == "" {
			sc.Title = sc.ID
		}
		if sc.Template == "" {
			sc.Template = harness.TemplateBasic
		}
		return nil
	}

	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	var err error
	if sc.ID == "" {
		if sc.ID, err = p.text("Scenario id", ""); err != nil {
			return clierr.Wrap(clierr.CodeInvalidInput, "add-scenario", err)
		}
		if sc.ID == "" {
			return clierr.InvalidInput("scenario id required")
		}
	}
	if sc.Title == "" {
		if sc.Title, err = p.text("Scenario title", sc.ID); err != nil {
			return clierr.Wrap(clierr.CodeInvalidInput, "add-scenario", err)
		}
	}
	if sc.Template == "" {
		if sc.Template, err = p.selectOne("Select template", harness.ScenarioTemplates()); err != nil {
			return clierr.Wrap(clierr.CodeInvalidInput, "add-scenario", err)
		}
	}
	return nil
}
