package scanner

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ScenarioPattern matches scenario descriptor files by their root-relative,
// forward-slash path.
const ScenarioPattern = "**/__sdd__/scenarios/**/*.scenario.{ts,js}"

// FilterOptions defines criteria for including or excluding files.
type FilterOptions struct {
	// ExcludeDirs is a list of directory names that are never descended into.
	// Matching is segment-aware: "dist" excludes "dist/a" and "pkg/dist/b",
	// but not "distribution/c".
	ExcludeDirs []string

	// Patterns is a list of doublestar patterns; a file must match at least
	// one of them. If empty, all files are included.
	Patterns []string
}

// DefaultExcludeDirs returns the directories skipped when scanning a host project.
func DefaultExcludeDirs() []string {
	return []string{
		"node_modules",
		".git",
		"dist",
		"miniprogram_npm",
		"unpackage",
	}
}

// ScenarioFilter returns the options used to find scenario descriptors.
func ScenarioFilter() FilterOptions {
	return FilterOptions{
		ExcludeDirs: DefaultExcludeDirs(),
		Patterns:    []string{ScenarioPattern},
	}
}

// FilterFiles applies the filter options to a list of forward-slash paths.
// It returns a new slice, sorted byte-wise so the order never depends on locale.
func FilterFiles(paths []string, opts FilterOptions) []string {
	if len(paths) == 0 {
		return nil
	}

	var filtered []string
	for _, path := range paths {
		if shouldExclude(path, opts.ExcludeDirs) {
			continue
		}
		if !matchesPattern(path, opts.Patterns) {
			continue
		}
		filtered = append(filtered, path)
	}

	sort.Strings(filtered)
	return filtered
}

// shouldExclude returns true if any directory segment of path is excluded.
func shouldExclude(path string, excludes []string) bool {
	if len(excludes) == 0 {
		return false
	}
	parts := strings.Split(path, "/")
	for _, part := range parts[:len(parts)-1] {
		if isExcludedDir(part, excludes) {
			return true
		}
	}
	return false
}

func isExcludedDir(name string, excludes []string) bool {
	for _, exclude := range excludes {
		if name == exclude {
			return true
		}
	}
	return false
}

// matchesPattern returns true if patterns is empty OR path matches one of them.
func matchesPattern(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
