// SPDX-License-Identifier: AGPL-3.0-or-later

// Package doctor inspects a host project for a healthy sdd-lite harness.
// It only reads: nothing under the project root is created or changed.
package doctor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/bartekus/sddlite/internal/harness"
	"github.com/bartekus/sddlite/internal/project"
	"github.com/bartekus/sddlite/internal/scanner"
)

// Level grades a check.
type Level string

const (
	LevelOK   Level = "ok"
	LevelWarn Level = "warn"
	LevelFail Level = "fail"
)

// Check is one diagnostic.
type Check struct {
	ID      string `json:"id"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
	Fix     string `json:"fix,omitempty"`
}

// Result is the outcome of a doctor run.
type Result struct {
	Checks []Check `json:"checks"`
}

// Failed reports whether any check failed.
func (r *Result) Failed() bool {
	for _, c := range r.Checks {
		if c.Level == LevelFail {
			return true
		}
	}
	return false
}

func (r *Result) ok(id, format string, args ...any) {
	r.Checks = append(r.Checks, Check{ID: id, Level: LevelOK, Message: fmt.Sprintf(format, args...)})
}

func (r *Result) warn(id, fix, format string, args ...any) {
	r.Checks = append(r.Checks, Check{ID: id, Level: LevelWarn, Message: fmt.Sprintf(format, args...), Fix: fix})
}

func (r *Result) fail(id, fix, format string, args ...any) {
	r.Checks = append(r.Checks, Check{ID: id, Level: LevelFail, Message: fmt.Sprintf(format, args...), Fix: fix})
}

// Scope selects which harnesses are checked.
type Scope string

const (
	ScopeAuto Scope = "auto"
	ScopeWeb  Scope = "web"
	ScopeMp   Scope = "mp"
)

// ParseScope maps a --type value to a Scope. Project types are accepted too.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "", "auto":
		return ScopeAuto, nil
	case "web", "vue2", "vue3":
		return ScopeWeb, nil
	}
	if t, err := project.ParseType(s); err == nil && t.IsMiniProgram() {
		return ScopeMp, nil
	}
	return "", fmt.Errorf("unknown doctor type %q (want auto, web or mp-wechat)", s)
}

// Doctor runs the checks of one project.
type Doctor struct {
	root   string
	mpRoot string
	log    *zap.Logger
}

// New returns a Doctor for root.
func New(root string, log *zap.Logger) *Doctor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Doctor{root: root, log: log}
}

// WithMpRoot sets the mini-program root, overriding detection.
func (d *Doctor) WithMpRoot(dir string) *Doctor {
	d.mpRoot = dir
	return d
}

// Run performs the checks selected by scope. An error is returned only when
// the project tree cannot be read.
func (d *Doctor) Run(scope Scope) (*Result, error) {
	res := &Result{Checks: []Check{}}
	if scope == ScopeAuto || scope == ScopeWeb {
		if err := d.web(res); err != nil {
			return res, err
		}
	}
	if scope == ScopeAuto || scope == ScopeMp {
		if err := d.mp(res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (d *Doctor) web(res *Result) error {
	dir := filepath.Join(d.root, "src", project.ScaffoldDir)
	if !isDir(dir) {
		res.warn("web.sddDir", "Run: sdd-lite init --type vue3", "Missing %s", d.rel(dir))
		return nil
	}
	res.ok("web.sddDir", "Found %s", d.rel(dir))

	if project.FindEntry(dir, []string{"boot.ts", "boot.js"}) != "" {
		res.ok("web.boot", "Found web boot file")
	} else {
		res.fail("web.boot", "Re-run: sdd-lite init", "Missing web boot file")
	}

	if entry := project.FindEntry(d.root, project.EntryCandidates); entry == "" {
		res.warn("web.entry", "", "Entry file not found (checked src/main.* and src/index.*).")
	} else {
		src, err := os.ReadFile(entry)
		if err != nil {
			return fmt.Errorf("reading %s: %w", entry, err)
		}
		if harness.IsEntryPatched(string(src)) {
			res.ok("web.entryPatch", "Entry patched: %s", d.rel(entry))
		} else {
			res.warn("web.entryPatch", "Add dev-only import of "+harness.BootImportPath, "Entry not patched: %s", d.rel(entry))
		}
	}

	n, err := d.scenarios(res, "web", filepath.Join(d.root, "src"))
	if err != nil {
		return err
	}
	res.ok("web.scenario.count", "Scenarios found (src): %d", n)
	return nil
}

func (d *Doctor) mp(res *Result) error {
	mpRoot := d.mpRoot
	if mpRoot == "" {
		mpRoot = project.DetectMpRoot(d.root)
	}
	if mpRoot == "" {
		return nil
	}

	dir := filepath.Join(mpRoot, project.ScaffoldDir)
	if !isDir(dir) {
		res.warn("mp.sddDir", "Run: sdd-lite init --type mp-wechat", "Missing %s", d.rel(dir))
		return nil
	}
	res.ok("mp.sddDir", "Found %s", d.rel(dir))

	if project.FindEntry(dir, []string{"manifest.ts", "manifest.js"}) != "" {
		res.ok("mp.manifest", "Found mp manifest")
	} else {
		res.fail("mp.manifest", "Re-run: sdd-lite init --type mp-wechat", "Missing mp manifest")
	}

	if isDir(filepath.Join(mpRoot, "pages", project.ScaffoldDir)) {
		res.ok("mp.page", "Found mp debug page directory")
	} else {
		res.warn("mp.page", "Re-run: sdd-lite init --type mp-wechat", "Missing mp debug page")
	}

	if err := d.appJSON(res, filepath.Join(mpRoot, "app.json")); err != nil {
		return err
	}

	n, err := d.scenarios(res, "mp", mpRoot)
	if err != nil {
		return err
	}
	res.ok("mp.scenario.count", "Scenarios found (mp): %d", n)
	return nil
}

func (d *Doctor) appJSON(res *Result, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		res.warn("mp.appJson", "", "Missing %s (cannot check page registration)", d.rel(path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		res.warn("mp.appJson", "", "Failed to parse %s (cannot check page registration)", d.rel(path))
		return nil
	}

	registered := false
	gjson.GetBytes(data, "pages").ForEach(func(_, page gjson.Result) bool {
		registered = page.Type == gjson.String && page.Str == project.DebugPage
		return !registered
	})
	if registered {
		res.ok("mp.pages", "app.json registered %s", project.DebugPage)
	} else {
		res.warn("mp.pages", fmt.Sprintf("Add %s into pages[]", project.DebugPage), "app.json missing %s", project.DebugPage)
	}
	return nil
}

// scenarios parses every descriptor under dir, reporting malformed files and
// duplicate ids. It returns the number of descriptors found.
func (d *Doctor) scenarios(res *Result, prefix, dir string) (int, error) {
	if !isDir(dir) {
		return 0, nil
	}
	files, err := scanner.ScenarioFiles(dir, d.log)
	if err != nil {
		return 0, err
	}

	seen := map[string]string{}
	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f))
		src, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		rel := d.rel(path)
		desc := ParseDescriptor(rel, string(src))

		for _, p := range desc.Problems() {
			switch p {
			case ProblemNoID:
				res.warn(prefix+".scenario.id", "", "Scenario missing id: %s", rel)
			case ProblemNoTitle:
				res.warn(prefix+".scenario.title", "", "Scenario missing title: %s", rel)
			case ProblemNoSetup:
				res.warn(prefix+".scenario.setup", "", "Scenario missing setup(): %s", rel)
			case ProblemNoExport:
				res.warn(prefix+".scenario.export", "Export the scenario with export default", "Scenario has no default export: %s", rel)
			}
		}

		if desc.ID == "" {
			continue
		}
		if prev, dup := seen[desc.ID]; dup {
			res.fail(prefix+".scenario.dup", prev+" and "+rel, "Duplicate scenario id: %s", desc.ID)
			continue
		}
		seen[desc.ID] = rel
	}
	return len(files), nil
}

func (d *Doctor) rel(path string) string {
	rel, err := filepath.Rel(d.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
