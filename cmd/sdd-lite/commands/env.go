// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bartekus/sddlite/cmd/sdd-lite/internal/clierr"
	"github.com/bartekus/sddlite/internal/filegen"
	"github.com/bartekus/sddlite/internal/harness"
	"github.com/bartekus/sddlite/internal/project"
	"github.com/bartekus/sddlite/internal/report"
)

// env is the resolved project a command operates on.
type env struct {
	root string
	cfg  project.Config
}

// resolve finds the project root and loads its configuration.
func (a *app) resolve() (*env, error) {
	root := a.dir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, clierr.Failure("resolving working directory", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, clierr.InvalidInput("invalid --dir %q: %v", a.dir, err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, clierr.InvalidInput("project root %s is not a directory", root)
	}

	cfg, err := project.LoadConfig(root)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInvalidInput, "invalid configuration", err)
	}
	return &env{root: root, cfg: cfg}, nil
}

// lang picks the source extension: --ts/--js, then the config file, then
// detection.
func (e *env) lang(cmd *cobra.Command) string {
	explicit := e.cfg.Lang
	if ts, _ := cmd.Flags().GetBool("ts"); ts {
		explicit = "ts"
	} else if js, _ := cmd.Flags().GetBool("js"); js {
		explicit = "js"
	}
	return project.DetectLang(e.root, explicit)
}

// mpRoot returns the mini-program root from sdd-lite.yaml, falling back to
// detection. It is "" when the project has no mini-program.
func (e *env) mpRoot() string {
	if dir := e.configuredMpRoot(); dir != "" {
		return dir
	}
	return project.DetectMpRoot(e.root)
}

// configuredMpRoot returns the mpRoot of sdd-lite.yaml, or "" when unset.
func (e *env) configuredMpRoot() string {
	if e.cfg.MpRoot == "" {
		return ""
	}
	if filepath.IsAbs(e.cfg.MpRoot) {
		return e.cfg.MpRoot
	}
	return filepath.Join(e.root, filepath.FromSlash(e.cfg.MpRoot))
}

// harness builds a report, its writer and a Harness for one command run.
func (a *app) harness(e *env, title, ext string) (*harness.Harness, *report.Report, error) {
	rep := report.New(title, e.root)
	h, err := harness.New(e.root, ext, filegen.NewWriter(rep, a.log), a.log)
	if err != nil {
		return nil, rep, clierr.Wrap(clierr.CodeInvalidInput, title, err)
	}
	return h.WithMpRoot(e.configuredMpRoot()), rep, nil
}

// finish prints rep, even when the command failed part way, and maps err to
// an exit code.
func (a *app) finish(cmd *cobra.Command, rep *report.Report, title string, err error) error {
	var renderErr error
	if a.json {
		renderErr = rep.RenderJSON(cmd.OutOrStdout())
	} else {
		renderErr = rep.RenderText(cmd.OutOrStdout())
	}
	if err != nil {
		return clierr.Failure(title, err)
	}
	if renderErr != nil {
		return clierr.Failure("printing report", renderErr)
	}
	return nil
}

func addLangFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("ts", false, "generate TypeScript sources")
	cmd.Flags().Bool("js", false, "generate JavaScript sources")
	cmd.MarkFlagsMutuallyExclusive("ts", "js")
}
