// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bartekus/sddlite/cmd/sdd-lite/internal/clierr"
	"github.com/bartekus/sddlite/internal/filegen"
	"github.com/bartekus/sddlite/internal/watch"
)

func newManifestCommand(a *app) *cobra.Command {
	var (
		update   bool
		watching bool
	)

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Regenerate the mini-program scenario manifest",
		Long: `Scans the mini-program root for scenario descriptors and rewrites
__sdd__/manifest.<ext>. A manifest whose generated marker was removed is left
alone. With --watch the manifest is kept in sync until interrupted.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.resolve()
			if err != nil {
				return err
			}
			ext := e.lang(cmd)

			mpRoot := e.mpRoot()

			regenerate := func() error {
				h, rep, err := a.harness(e, "manifest", ext)
				if err != nil {
					return err
				}
				if mpRoot == "" {
					rep.Note("miniprogram/ not found; nothing to regenerate.")
					return a.finish(cmd, rep, "manifest", nil)
				}
				return a.finish(cmd, rep, "manifest", h.RefreshManifest(mpRoot, filegen.SyncOptions{Update: update}))
			}

			if err := regenerate(); err != nil || !watching {
				return err
			}
			if mpRoot == "" {
				return clierr.InvalidInput("--watch needs a mini-program root (app.json)")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.log.Info("watching for scenario changes", zap.String("root", mpRoot))
			return watch.New(mpRoot, a.log).Run(ctx, regenerate)
		},
	}

	cmd.Flags().BoolVar(&update, "update", true, "rewrite an existing tool-owned manifest")
	cmd.Flags().BoolVar(&watching, "watch", false, "keep regenerating while scenarios change")
	addLangFlags(cmd)

	return cmd
}
