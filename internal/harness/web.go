// SPDX-License-Identifier: AGPL-3.0-or-later
package harness

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/bartekus/sddlite/internal/project"
	"github.com/bartekus/sddlite/internal/templates"
)

// WebDir returns the web scaffold directory, src/__sdd__.
func (h *Harness) WebDir() string {
	return filepath.Join(h.root, "src", project.ScaffoldDir)
}

// InitWeb writes the web scaffold and patches the entry file so development
// builds load the boot file. entry overrides the entry candidates when set.
// A missing entry file is not an error: the manual step is noted instead.
func (h *Harness) InitWeb(entry string) error {
	dir := h.WebDir()
	data := h.data()
	data.HarnessDir = h.rel(dir)

	err := h.writeScaffold(data, []file{
		{filepath.Join(dir, "runtime."+h.ext), templates.WebRuntime},
		{filepath.Join(dir, "discover."+h.ext), templates.WebDiscover},
		{filepath.Join(dir, "boot."+h.ext), templates.WebBoot},
		{filepath.Join(dir, "README.md"), templates.WebReadme},
		{filepath.Join(dir, "AGENT_GUIDE.md"), templates.WebAgentGuide},
	})
	if err != nil {
		return err
	}

	candidates := project.EntryCandidates
	if entry != "" {
		candidates = []string{entry}
	}
	path := project.FindEntry(h.root, candidates)
	if path == "" {
		h.report().Note(fmt.Sprintf("Entry not found. Manually add (dev-only) import in your entry file:\n%s\n%s",
			BootMarker, BootSnippet()))
		return nil
	}

	outcome, err := h.w.PatchText(path, PatchEntry)
	if err != nil {
		return err
	}
	h.log.Debug("entry patch", zap.String("entry", path), zap.Stringer("outcome", outcome))
	return nil
}
