// SPDX-License-Identifier: AGPL-3.0-or-later
package harness

import (
	"path/filepath"

	"github.com/bartekus/sddlite/internal/filegen"
	"github.com/bartekus/sddlite/internal/project"
	"github.com/bartekus/sddlite/internal/templates"
)

// EnsurePage returns the app.json patch registering target in "pages". The
// page is prepended when absent, so the debug page opens first in a dev build.
func EnsurePage(target string) filegen.JSONPatchFunc {
	return filegen.PrependUnique("pages", target)
}

// InitMiniProgram writes the mini-program scaffold and debug page under
// mpRoot, registers the page in app.json and creates the manifest.
func (h *Harness) InitMiniProgram(mpRoot string) error {
	dir := filepath.Join(mpRoot, project.ScaffoldDir)
	data := h.data()
	data.HarnessDir = h.rel(dir)

	err := h.writeScaffold(data, []file{
		{filepath.Join(dir, "runtime."+h.ext), templates.MpRuntime},
		{filepath.Join(dir, "boot."+h.ext), templates.MpBoot},
		{filepath.Join(dir, "README.md"), templates.MpReadme},
		{filepath.Join(dir, "AGENT_GUIDE.md"), templates.MpAgentGuide},
	})
	if err != nil {
		return err
	}

	pageDir := filepath.Join(mpRoot, "pages", project.ScaffoldDir)
	err = h.writeScaffold(data, []file{
		{filepath.Join(pageDir, "index."+h.ext), templates.MpPage},
		{filepath.Join(pageDir, "index.wxml"), templates.MpPageWxml},
		{filepath.Join(pageDir, "index.wxss"), templates.MpPageWxss},
		{filepath.Join(pageDir, "index.json"), templates.MpPageJSON},
	})
	if err != nil {
		return err
	}

	if err := h.registerDebugPage(mpRoot); err != nil {
		return err
	}

	return h.RefreshManifest(mpRoot, filegen.SyncOptions{})
}

func (h *Harness) registerDebugPage(mpRoot string) error {
	appJSON := project.FindEntry(h.root, []string{
		filepath.Join(mpRoot, "app.json"),
		filepath.Join(h.root, "app.json"),
	})
	if appJSON == "" {
		h.report().Notef("app.json not found. Please add page manually: %s", project.DebugPage)
		return nil
	}

	outcome, err := h.w.PatchJSON(appJSON, EnsurePage(project.DebugPage))
	if err != nil {
		return err
	}
	if outcome != filegen.OutcomePatched && outcome != filegen.OutcomeNoChange {
		h.report().Notef("Failed to patch %s. Please ensure pages includes: %s", h.rel(appJSON), project.DebugPage)
	}
	return nil
}
