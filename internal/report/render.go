// SPDX-License-Identifier: AGPL-3.0-or-later
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type group struct {
	label string
	color lipgloss.Color
	items []string
}

// RenderText writes the report grouped by category, skipping empty groups.
// Group headers are colored only when w is a terminal.
func (r *Report) RenderText(w io.Writer) error {
	renderer := lipgloss.NewRenderer(w)
	groups := []group{
		{label: "ADD", color: lipgloss.Color("2"), items: r.Added},
		{label: "MOD", color: lipgloss.Color("3"), items: r.Modified},
		{label: "SKIP", color: lipgloss.Color("8"), items: r.Skipped},
		{label: "NOTE", color: lipgloss.Color("6"), items: r.Notes},
	}

	var b strings.Builder
	if r.Title != "" {
		b.WriteString(renderer.NewStyle().Bold(true).Render("[sdd-lite] " + r.Title))
		b.WriteString("\n")
	}
	for _, g := range groups {
		if len(g.items) == 0 {
			continue
		}
		header := fmt.Sprintf("%s (%d)", g.label, len(g.items))
		b.WriteString(renderer.NewStyle().Bold(true).Foreground(g.color).Render(header))
		b.WriteString("\n")
		for _, item := range g.items {
			// Multi-line notes stay aligned under their bullet.
			b.WriteString("  - " + strings.ReplaceAll(item, "\n", "\n    ") + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderJSON writes the report as an indented JSON document.
func (r *Report) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
