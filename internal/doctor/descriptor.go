// SPDX-License-Identifier: AGPL-3.0-or-later
package doctor

import (
	"regexp"
	"strconv"
	"strings"
)

// Descriptor is the statically readable shape of a scenario file. Only
// string literal values are recognized; the file is never executed.
type Descriptor struct {
	Path     string `json:"path"`
	ID       string `json:"id,omitempty"`
	Title    string `json:"title,omitempty"`
	Note     string `json:"note,omitempty"`
	HasSetup bool   `json:"hasSetup"`
	Exported bool   `json:"exported"`
}

// Problem names a required part of a descriptor that is missing.
type Problem string

const (
	ProblemNoID     Problem = "id"
	ProblemNoTitle  Problem = "title"
	ProblemNoSetup  Problem = "setup"
	ProblemNoExport Problem = "export"
)

var (
	setupPattern  = regexp.MustCompile(`\bsetup\s*(\(|:\s*(async\s+)?(\(|function\b|[A-Za-z_$][\w$]*\s*=>))`)
	exportPattern = regexp.MustCompile(`\bexport\s+default\b|\bmodule\.exports\s*=`)

	fieldPatterns = map[string]*regexp.Regexp{}
)

func init() {
	for _, f := range []string{"id", "title", "note"} {
		fieldPatterns[f] = regexp.MustCompile(`\b` + f + `\s*:\s*(?:"((?:[^"\\\n]|\\.)*)"|'((?:[^'\\\n]|\\.)*)'|` + "`([^`]*)`" + `)`)
	}
}

// ParseDescriptor extracts the descriptor fields from scenario source text.
func ParseDescriptor(path, src string) Descriptor {
	return Descriptor{
		Path:     path,
		ID:       field(src, "id"),
		Title:    field(src, "title"),
		Note:     field(src, "note"),
		HasSetup: setupPattern.MatchString(src),
		Exported: exportPattern.MatchString(src),
	}
}

// Problems lists what d lacks to be a valid scenario, in a stable order.
func (d Descriptor) Problems() []Problem {
	var out []Problem
	if d.ID == "" {
		out = append(out, ProblemNoID)
	}
	if d.Title == "" {
		out = append(out, ProblemNoTitle)
	}
	if !d.HasSetup {
		out = append(out, ProblemNoSetup)
	}
	if !d.Exported {
		out = append(out, ProblemNoExport)
	}
	return out
}

func field(src, name string) string {
	m := fieldPatterns[name].FindStringSubmatch(src)
	switch {
	case m == nil:
		return ""
	case m[1] != "":
		if s, err := strconv.Unquote(`"` + m[1] + `"`); err == nil {
			return strings.TrimSpace(s)
		}
		return strings.TrimSpace(m[1])
	case m[2] != "":
		return strings.TrimSpace(strings.ReplaceAll(m[2], `\'`, `'`))
	default:
		return strings.TrimSpace(m[3])
	}
}
