// SPDX-License-Identifier: AGPL-3.0-or-later

// Package filegen decides whether sdd-lite may create, skip, overwrite or
// patch a file in a host project, performs the write, and records the outcome.
package filegen

import (
	"bytes"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/bartekus/sddlite/internal/report"
)

// Writer performs idempotent file operations and records each outcome in a
// single report. It is not safe for concurrent use.
type Writer struct {
	report *report.Report
	log    *zap.Logger
}

// NewWriter binds a Writer to the report of the current command.
func NewWriter(rep *report.Report, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{report: rep, log: log}
}

// Report returns the report outcomes are recorded in.
func (w *Writer) Report() *report.Report { return w.report }

// WriteIfAbsent creates path with content unless it already exists.
func (w *Writer) WriteIfAbsent(path string, content []byte) error {
	_, ok, err := exists(path)
	if err != nil {
		return err
	}
	if ok {
		w.log.Debug("exists, skipping", zap.String("path", path))
		w.report.Skip(path)
		return nil
	}

	if err := AtomicWrite(path, content, DefaultFileMode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	w.log.Debug("created", zap.String("path", path))
	w.report.Add(path)
	return nil
}

// SyncOptions controls WriteGenerated.
type SyncOptions struct {
	// Update allows rewriting an existing tool-owned file.
	Update bool
}

// WriteGenerated writes a tool-owned file. An existing file is only rewritten
// when it still carries the generated marker and opts.Update is set; a file
// whose marker was removed belongs to the user and is never touched.
func (w *Writer) WriteGenerated(path string, content []byte, opts SyncOptions) error {
	if !IsGenerated(content) {
		return fmt.Errorf("generated content for %s does not carry the %q marker", path, GeneratedMarker)
	}

	info, ok, err := exists(path)
	if err != nil {
		return err
	}
	if !ok {
		if err := AtomicWrite(path, content, DefaultFileMode); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		w.log.Debug("created generated file", zap.String("path", path))
		w.report.Add(path)
		return nil
	}

	prev, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if !IsGenerated(prev) {
		w.log.Debug("user-owned, skipping", zap.String("path", path))
		w.report.Skip(path)
		w.report.Notef("%s no longer carries the %q marker and was left untouched; merge the regenerated content manually if needed.",
			w.report.Rel(path), GeneratedMarker)
		return nil
	}

	if !opts.Update {
		w.report.Skip(path)
		return nil
	}

	if bytes.Equal(prev, content) {
		w.log.Debug("generated file up to date", zap.String("path", path))
		return nil
	}

	if err := AtomicWrite(path, content, info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	w.log.Debug("regenerated", zap.String("path", path))
	w.report.Modify(path)
	return nil
}
