// SPDX-License-Identifier: AGPL-3.0-or-later

// Package harness implements the sdd-lite operations on a host project:
// scaffolding the web and mini-program harnesses, module skeletons and
// scenarios, and keeping the mini-program manifest in sync.
//
// Every operation goes through one filegen.Writer, so all outcomes of a
// command land in the same report. Operations are sequential and not
// transactional: a failure leaves earlier writes in place.
package harness

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/bartekus/sddlite/internal/filegen"
	"github.com/bartekus/sddlite/internal/manifest"
	"github.com/bartekus/sddlite/internal/project"
	"github.com/bartekus/sddlite/internal/report"
	"github.com/bartekus/sddlite/internal/templates"
)

// Harness runs operations against one project root.
type Harness struct {
	root   string
	ext    string
	mpRoot string
	w      *filegen.Writer
	log    *zap.Logger
}

// New returns a Harness for root writing ext ("ts" or "js") sources through w.
func New(root, ext string, w *filegen.Writer, log *zap.Logger) (*Harness, error) {
	if ext != "ts" && ext != "js" {
		return nil, fmt.Errorf("unsupported source extension %q (want ts or js)", ext)
	}
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root %s: %w", root, err)
	}
	return &Harness{root: abs, ext: ext, w: w, log: log}, nil
}

// Root returns the absolute project root.
func (h *Harness) Root() string { return h.root }

// WithMpRoot sets the mini-program root, overriding detection.
func (h *Harness) WithMpRoot(dir string) *Harness {
	h.mpRoot = dir
	return h
}

// MpRoot returns the configured mini-program root, or the detected one. It
// is "" when the project has no mini-program.
func (h *Harness) MpRoot() string {
	if h.mpRoot != "" {
		return h.mpRoot
	}
	return project.DetectMpRoot(h.root)
}

// Ext returns the source extension of generated files.
func (h *Harness) Ext() string { return h.ext }

func (h *Harness) report() *report.Report { return h.w.Report() }

func (h *Harness) data() templates.Data {
	return templates.Data{Ext: h.ext, PagePath: project.DebugPage}
}

// file is one templated scaffold file.
type file struct {
	path string
	tmpl string
}

// writeScaffold renders each template and creates its file unless present.
func (h *Harness) writeScaffold(data templates.Data, files []file) error {
	for _, f := range files {
		content, err := templates.Render(f.tmpl, data)
		if err != nil {
			return err
		}
		if err := h.w.WriteIfAbsent(f.path, content); err != nil {
			return err
		}
	}
	return nil
}

// RefreshManifest regenerates <mpRoot>/__sdd__/manifest.<ext> from the
// scenario descriptors under mpRoot.
func (h *Harness) RefreshManifest(mpRoot string, opts filegen.SyncOptions) error {
	kind, err := manifest.ParseKind(h.ext)
	if err != nil {
		return err
	}
	content, err := manifest.Generate(mpRoot, kind, h.log)
	if err != nil {
		return err
	}
	return h.w.WriteGenerated(manifest.Path(mpRoot, kind), []byte(content), opts)
}

func (h *Harness) rel(path string) string {
	return h.report().Rel(path)
}
