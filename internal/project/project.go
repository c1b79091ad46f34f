// SPDX-License-Identifier: AGPL-3.0-or-later

// Package project resolves the shape of a host project: its type, source
// language, mini-program root and entry file.
package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// Type is the kind of host project.
type Type string

const (
	TypeVue2     Type = "vue2"
	TypeVue3     Type = "vue3"
	TypeMpWechat Type = "mp-wechat"
)

// Types lists the supported project types in prompt order.
func Types() []Type { return []Type{TypeVue2, TypeVue3, TypeMpWechat} }

// IsMiniProgram reports whether t is a mini-program project.
func (t Type) IsMiniProgram() bool { return t == TypeMpWechat }

// ParseType normalizes user input; aliases of the mini-program type are accepted.
func ParseType(s string) (Type, error) {
	switch s {
	case "mp", "wechat", "mp-wechat":
		return TypeMpWechat, nil
	case "vue2":
		return TypeVue2, nil
	case "vue3":
		return TypeVue3, nil
	default:
		return "", fmt.Errorf("unknown project type %q (want vue2, vue3 or mp-wechat)", s)
	}
}

// ScaffoldDir is the fixed name of every harness directory.
const ScaffoldDir = "__sdd__"

// DebugPage is the mini-program debug page registration path.
const DebugPage = "pages/" + ScaffoldDir + "/index"

// EntryCandidates are probed, in order, when no entry file is configured.
var EntryCandidates = []string{
	"src/main.ts",
	"src/main.js",
	"src/index.ts",
	"src/index.js",
}

// DetectLang picks the source extension: explicit wins, then TypeScript
// markers in the project, else "js".
func DetectLang(root, explicit string) string {
	if explicit == "ts" || explicit == "js" {
		return explicit
	}
	for _, marker := range []string{"tsconfig.json", "src/main.ts", "miniprogram/tsconfig.json"} {
		if fileExists(filepath.Join(root, filepath.FromSlash(marker))) {
			return "ts"
		}
	}
	return "js"
}

// DetectMpRoot returns the directory holding the mini-program's app.json:
// root/miniprogram first, then root itself. It returns "" when neither has one.
func DetectMpRoot(root string) string {
	if mp := filepath.Join(root, "miniprogram"); fileExists(filepath.Join(mp, "app.json")) {
		return mp
	}
	if fileExists(filepath.Join(root, "app.json")) {
		return root
	}
	return ""
}

// MpRootForInit returns where the mini-program harness goes during init:
// root/miniprogram when that directory exists, otherwise root.
func MpRootForInit(root string) string {
	if info, err := os.Stat(filepath.Join(root, "miniprogram")); err == nil && info.IsDir() {
		return filepath.Join(root, "miniprogram")
	}
	return root
}

// FindEntry returns the first existing entry candidate, or "".
func FindEntry(root string, candidates []string) string {
	for _, c := range candidates {
		p := c
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, filepath.FromSlash(c))
		}
		if fileExists(p) {
			return p
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
