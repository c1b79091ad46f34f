// SPDX-License-Identifier: AGPL-3.0-or-later

/*
sdd-lite - scaffolds and keeps in sync a lightweight manual smoke-test harness
inside web and mini-program projects.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bartekus/sddlite/cmd/sdd-lite/internal/clierr"
	"github.com/bartekus/sddlite/internal/logging"
)

// app holds the state shared by every command of one invocation.
type app struct {
	dir     string
	verbose bool
	json    bool

	log *zap.Logger

	// interactive reports whether prompts may read from in.
	interactive func(in io.Reader) bool
}

// NewRootCmd constructs the sdd-lite root Cobra command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{interactive: isTerminal})
}

func newRootCmd(a *app) *cobra.Command {
	version := os.Getenv("SDD_LITE_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:   "sdd-lite",
		Short: "sdd-lite - manual smoke-test harness scaffolding",
		Long: `sdd-lite creates runtime, boot and discovery files, per-module scenario
skeletons and an aggregated manifest inside a host project, and patches the
entry file and app.json without touching anything you own.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(a.verbose)
			if err != nil {
				return clierr.Failure("logger", err)
			}
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().StringVar(&a.dir, "dir", "", "project root (default: current directory)")
	cmd.PersistentFlags().BoolVar(&a.json, "json", false, "print the result as JSON")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeInvalidInput, c.CommandPath(), err)
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of sdd-lite",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sdd-lite version %s\n", version)
		},
	})

	cmd.AddCommand(newInitCommand(a))
	cmd.AddCommand(newAddModuleCommand(a))
	cmd.AddCommand(newAddScenarioCommand(a))
	cmd.AddCommand(newManifestCommand(a))
	cmd.AddCommand(newDoctorCommand(a))

	return cmd
}

// usageArgs turns an argument validation failure into an invalid-input error.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return clierr.Wrap(clierr.CodeInvalidInput, cmd.CommandPath(), err)
		}
		return nil
	}
}
