// SPDX-License-Identifier: AGPL-3.0-or-later
package doctor

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderText writes one line per check, tagged by level, with the suggested
// fix indented below it.
func (r *Result) RenderText(w io.Writer) error {
	renderer := lipgloss.NewRenderer(w)
	tags := map[Level]string{
		LevelOK:   renderer.NewStyle().Foreground(lipgloss.Color("2")).Render("[OK]"),
		LevelWarn: renderer.NewStyle().Foreground(lipgloss.Color("3")).Render("[WARN]"),
		LevelFail: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("1")).Render("[FAIL]"),
	}

	var b strings.Builder
	for _, c := range r.Checks {
		b.WriteString(tags[c.Level] + " " + c.Message + "\n")
		if c.Fix != "" {
			b.WriteString("      fix: " + c.Fix + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderJSON writes {"checks": [...]} with two-space indentation.
func (r *Result) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
