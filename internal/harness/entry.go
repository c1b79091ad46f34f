// SPDX-License-Identifier: AGPL-3.0-or-later
package harness

import (
	"regexp"
	"strconv"
	"strings"
)

// BootMarker tags the block inserted into the host entry file.
const BootMarker = "/* sdd-lite:boot */"

// BootImportPath is the entry-relative import of the web boot file.
const BootImportPath = "./__sdd__/boot"

// bootMarkers are every marker any sdd-lite version has written.
var bootMarkers = []string{
	BootMarker,
	"// sdd-lite:boot",
}

// importWindow bounds how many leading lines are searched for imports.
const importWindow = 80

var (
	importLine  = regexp.MustCompile(`^\s*import\s`)
	requireLine = regexp.MustCompile(`^\s*((const|let|var)\s+[\w${}\s,:]+=\s*)?require\(`)
)

// BootSnippet loads the boot file in development builds only: through
// import.meta.env.DEV under Vite, through NODE_ENV for Webpack and others.
func BootSnippet() string {
	q := strconv.Quote(BootImportPath)
	return strings.Join([]string{
		"(() => {",
		"  try {",
		"    // Vite",
		"    if ((import.meta).env?.DEV) { void import(" + q + "); return; }",
		"  } catch {}",
		"  // Webpack/others",
		"  if (typeof process !== 'undefined' && process.env?.NODE_ENV !== 'production') {",
		"    try { require(" + q + "); } catch {}",
		"  }",
		"})();",
	}, "\n")
}

// IsEntryPatched reports whether src already loads the boot file, under any
// marker variant or the bare import written before markers existed.
func IsEntryPatched(src string) bool {
	for _, m := range bootMarkers {
		if strings.Contains(src, m) {
			return true
		}
	}
	return strings.Contains(src, BootImportPath) && strings.Contains(src, "__sdd__")
}

// PatchEntry inserts the marked boot block after the last import or require
// statement in the leading lines of src, or at the top when there is none.
// It is a filegen.TransformFunc and changes nothing when already patched.
// Existing text is kept byte for byte; the block uses the line ending found
// where it is inserted.
func PatchEntry(src string) (string, bool) {
	if IsEntryPatched(src) {
		return src, false
	}

	lines := strings.SplitAfter(src, "\n")
	bare := make([]string, len(lines))
	for i, l := range lines {
		bare[i] = strings.TrimSuffix(strings.TrimSuffix(l, "\n"), "\r")
	}
	at := insertionPoint(bare)

	eol := lineEnding(lines, at)
	var b strings.Builder
	for _, l := range lines[:at] {
		b.WriteString(l)
	}
	if at > 0 && !strings.HasSuffix(lines[at-1], "\n") {
		b.WriteString(eol)
	}
	b.WriteString(BootMarker + eol)
	b.WriteString(strings.ReplaceAll(BootSnippet(), "\n", eol) + eol)
	b.WriteString(eol)
	for _, l := range lines[at:] {
		b.WriteString(l)
	}
	return b.String(), true
}

// lineEnding returns the ending of the line before at, or of the line at it,
// defaulting to LF.
func lineEnding(lines []string, at int) string {
	for _, i := range []int{at - 1, at} {
		if i < 0 || i >= len(lines) || !strings.HasSuffix(lines[i], "\n") {
			continue
		}
		if strings.HasSuffix(lines[i], "\r\n") {
			return "\r\n"
		}
		return "\n"
	}
	return "\n"
}

// insertionPoint returns the index of the line after the last import or
// require statement that starts within the first importWindow lines. An
// import spanning several lines counts as one statement ending at its "from".
func insertionPoint(lines []string) int {
	last := -1
	for i := 0; i < len(lines) && i < importWindow; i++ {
		l := lines[i]
		switch {
		case importLine.MatchString(l):
			end := i
			if strings.Contains(l, "{") && !strings.Contains(l, "}") {
				for end = i + 1; end < len(lines); end++ {
					if strings.Contains(lines[end], "}") {
						break
					}
				}
				if end == len(lines) {
					end = i
				}
			}
			last = end
			i = end
		case requireLine.MatchString(l):
			last = i
		}
	}
	return last + 1
}
