// SPDX-License-Identifier: AGPL-3.0-or-later
package filegen

import (
	"bufio"
	"bytes"
	"strings"
)

// GeneratedMarker is embedded near the top of every tool-owned file. Removing
// it hands the file over to the user; sdd-lite never rewrites it afterwards.
const GeneratedMarker = "@generated by sdd-lite"

// legacyMarkers are markers written by earlier releases; they still count as
// tool ownership.
var legacyMarkers = []string{
	"sdd-lite:generated",
}

// markerWindow is how many leading lines are searched for a marker.
const markerWindow = 5

// MarkerLine returns the marker as a line comment for files with the given
// extension (without the dot).
func MarkerLine(ext string) string {
	text := GeneratedMarker + ". Remove this line to take ownership of the file."
	switch strings.TrimPrefix(ext, ".") {
	case "wxml", "html", "md":
		return "<!-- " + text + " -->"
	case "wxss", "css":
		return "/* " + text + " */"
	default:
		return "// " + text
	}
}

// IsGenerated reports whether content carries the current or a legacy
// ownership marker within its first lines.
func IsGenerated(content []byte) bool {
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for i := 0; i < markerWindow && sc.Scan(); i++ {
		line := sc.Text()
		if strings.Contains(line, GeneratedMarker) {
			return true
		}
		for _, m := range legacyMarkers {
			if strings.Contains(line, m) {
				return true
			}
		}
	}
	return false
}
