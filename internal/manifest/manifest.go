// SPDX-License-Identifier: AGPL-3.0-or-later

// Package manifest renders the generated module that imports every scenario
// descriptor of a project in a fixed order.
package manifest

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/bartekus/sddlite/internal/filegen"
	"github.com/bartekus/sddlite/internal/scanner"
)

// Kind is the source language of the generated manifest.
type Kind string

const (
	KindTS Kind = "ts"
	KindJS Kind = "js"
)

// Typed reports whether the kind carries static type annotations.
func (k Kind) Typed() bool { return k == KindTS }

// ParseKind maps a file extension to a Kind.
func ParseKind(ext string) (Kind, error) {
	switch Kind(strings.TrimPrefix(ext, ".")) {
	case KindTS:
		return KindTS, nil
	case KindJS:
		return KindJS, nil
	default:
		return "", fmt.Errorf("unsupported manifest kind %q (want ts or js)", ext)
	}
}

// ScaffoldDir is the directory, relative to the scan root, that holds the manifest.
const ScaffoldDir = "__sdd__"

// FileName returns the manifest file name for kind.
func FileName(kind Kind) string { return "manifest." + string(kind) }

// Path returns the manifest path for a scan root.
func Path(root string, kind Kind) string {
	return filepath.Join(root, ScaffoldDir, FileName(kind))
}

// Generate scans root for scenario descriptors and renders the manifest that
// lives at Path(root, kind).
func Generate(root string, kind Kind, log *zap.Logger) (string, error) {
	files, err := scanner.ScenarioFiles(root, log)
	if err != nil {
		return "", fmt.Errorf("scanning scenarios under %s: %w", root, err)
	}
	return Render(files, kind), nil
}

// Render builds manifest content from root-relative, forward-slash descriptor
// paths. The output depends only on the sorted set of paths: the input order
// does not matter.
func Render(files []string, kind Kind) string {
	sorted := scanner.FilterFiles(files, scanner.FilterOptions{})

	var b strings.Builder
	b.WriteString(filegen.MarkerLine(string(kind)))
	b.WriteString("\n\n")

	if kind.Typed() {
		b.WriteString(`import type { Runtime } from "./runtime";` + "\n\n")
		b.WriteString("export type Scenario = {\n")
		b.WriteString("  id: string;\n")
		b.WriteString("  title: string;\n")
		b.WriteString("  note?: string;\n")
		b.WriteString("  setup(ctx: { runtime: Runtime; options?: any }): void | Promise<void>;\n")
		b.WriteString("};\n\n")
	}

	names := make([]string, 0, len(sorted))
	for i, file := range sorted {
		name := "s" + strconv.Itoa(i)
		names = append(names, name)
		b.WriteString(fmt.Sprintf("import %s from %s;\n", name, strconv.Quote(ImportPath(file))))
	}
	if len(sorted) > 0 {
		b.WriteString("\n")
	}

	decl := "export const scenarios"
	if kind.Typed() {
		decl += ": Scenario[]"
	}
	b.WriteString(fmt.Sprintf("%s = [%s];\n", decl, strings.Join(names, ", ")))
	return b.String()
}

// ImportPath converts a root-relative descriptor path into an import
// specifier relative to the manifest directory.
func ImportPath(file string) string {
	rel, err := filepath.Rel(filepath.FromSlash(ScaffoldDir), filepath.FromSlash(file))
	if err != nil {
		rel = path.Join("..", file)
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}
