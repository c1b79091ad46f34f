// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report accumulates the file outcomes of one sdd-lite command.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Category is the outcome class a path is recorded under.
type Category string

const (
	CategoryAdded    Category = "added"
	CategoryModified Category = "modified"
	CategorySkipped  Category = "skipped"
)

// Report is the append-only outcome log of a single command invocation.
// It is a side channel for presentation; nothing in the engine reads it back
// to make decisions.
type Report struct {
	Title    string   `json:"title,omitempty"`
	Added    []string `json:"added"`
	Modified []string `json:"modified"`
	Skipped  []string `json:"skipped"`
	Notes    []string `json:"notes"`

	root string
	seen map[string]Category
}

// New creates an empty report. Paths under root are recorded relative to it.
func New(title, root string) *Report {
	return &Report{
		Title:    title,
		Added:    []string{},
		Modified: []string{},
		Skipped:  []string{},
		Notes:    []string{},
		root:     root,
		seen:     map[string]Category{},
	}
}

// Add records a newly created file.
func (r *Report) Add(path string) { r.record(CategoryAdded, path) }

// Modify records an existing file that was rewritten.
func (r *Report) Modify(path string) { r.record(CategoryModified, path) }

// Skip records a file that was deliberately left untouched.
func (r *Report) Skip(path string) { r.record(CategorySkipped, path) }

// Note appends a free-text note.
func (r *Report) Note(msg string) {
	r.Notes = append(r.Notes, msg)
}

// Notef appends a formatted note.
func (r *Report) Notef(format string, args ...any) {
	r.Note(fmt.Sprintf(format, args...))
}

// CategoryOf returns the category a path was recorded under, if any.
func (r *Report) CategoryOf(path string) (Category, bool) {
	c, ok := r.seen[r.Rel(path)]
	return c, ok
}

// Empty reports whether nothing at all was recorded.
func (r *Report) Empty() bool {
	return len(r.Added)+len(r.Modified)+len(r.Skipped)+len(r.Notes) == 0
}

// Rel converts path to the form stored in the report: relative to the report
// root when it lives under it, always with forward slashes.
func (r *Report) Rel(path string) string {
	if r.root != "" && filepath.IsAbs(path) {
		if rel, err := filepath.Rel(r.root, path); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

// record keeps the first classification of a path; a later outcome for the
// same path within one report is dropped.
func (r *Report) record(c Category, path string) {
	if r.seen == nil {
		r.seen = map[string]Category{}
	}
	p := r.Rel(path)
	if _, dup := r.seen[p]; dup {
		return
	}
	r.seen[p] = c

	switch c {
	case CategoryAdded:
		r.Added = append(r.Added, p)
	case CategoryModified:
		r.Modified = append(r.Modified, p)
	case CategorySkipped:
		r.Skipped = append(r.Skipped, p)
	}
}
