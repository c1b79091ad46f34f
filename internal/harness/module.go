// SPDX-License-Identifier: AGPL-3.0-or-later
package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bartekus/sddlite/internal/filegen"
	"github.com/bartekus/sddlite/internal/project"
	"github.com/bartekus/sddlite/internal/templates"
)

// Scenario templates.
const (
	TemplateBasic       = "basic"
	TemplateAPIVariants = "api-variants"
)

// ScenarioTemplates lists the accepted --template values in prompt order.
func ScenarioTemplates() []string { return []string{TemplateBasic, TemplateAPIVariants} }

// Scenario describes a scenario to add.
type Scenario struct {
	ID       string
	Title    string
	Template string
}

// ModuleDir resolves modulePath against the project root and returns its
// scaffold directory.
func (h *Harness) ModuleDir(modulePath string) string {
	abs := modulePath
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(h.root, filepath.FromSlash(modulePath))
	}
	return filepath.Join(abs, project.ScaffoldDir)
}

// AddModule writes the helpers, mocks and scenarios skeleton of a module.
// It returns the module scaffold directory.
func (h *Harness) AddModule(modulePath string) (string, error) {
	if strings.TrimSpace(modulePath) == "" {
		return "", fmt.Errorf("module path is required")
	}
	dir := h.ModuleDir(modulePath)
	data := h.data()
	data.HarnessDir = h.rel(dir)

	err := h.writeScaffold(data, []file{
		{filepath.Join(dir, "helpers", "sddTools."+h.ext), templates.ModuleSddTools},
		{filepath.Join(dir, "mocks", "index."+h.ext), templates.ModuleMocksIndex},
		{filepath.Join(dir, "scenarios", "README.md"), templates.ModuleScenariosReadme},
	})
	if err != nil {
		return "", err
	}
	return dir, nil
}

// ScenarioPath returns where AddScenario writes the scenario with id.
func (h *Harness) ScenarioPath(modulePath, id string) string {
	return filepath.Join(h.ModuleDir(modulePath), "scenarios", id+".scenario."+h.ext)
}

// AddScenario ensures the module skeleton and writes one scenario file. An
// existing scenario file is left alone. When the module lives inside the
// mini-program root its manifest is regenerated.
func (h *Harness) AddScenario(modulePath string, sc Scenario) error {
	if err := ValidateScenarioID(sc.ID); err != nil {
		return err
	}
	if sc.Title == "" {
		sc.Title = sc.ID
	}
	tmpl := templates.ScenarioBasic
	switch sc.Template {
	case "", TemplateBasic:
	case TemplateAPIVariants:
		tmpl = templates.ScenarioAPIVariants
	default:
		return fmt.Errorf("unknown scenario template %q (want %s)", sc.Template, strings.Join(ScenarioTemplates(), " or "))
	}

	dir, err := h.AddModule(modulePath)
	if err != nil {
		return err
	}

	path := h.ScenarioPath(modulePath, sc.ID)
	if _, err := os.Stat(path); err == nil {
		h.report().Skip(path)
		return nil
	}

	data := h.data()
	data.HarnessDir = h.rel(dir)
	data.ID = sc.ID
	data.Title = sc.Title

	files := []file{{path, tmpl}}
	if tmpl == templates.ScenarioAPIVariants {
		files = append([]file{{filepath.Join(dir, "helpers", "apiPatch."+h.ext), templates.HelperAPIPatch}}, files...)
	}
	if err := h.writeScaffold(data, files); err != nil {
		return err
	}

	return h.refreshManifestFor(path)
}

// refreshManifestFor regenerates the mini-program manifest when path lies
// inside the mini-program root.
func (h *Harness) refreshManifestFor(path string) error {
	mpRoot := h.MpRoot()
	if mpRoot == "" {
		return nil
	}
	rel, err := filepath.Rel(mpRoot, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return h.RefreshManifest(mpRoot, filegen.SyncOptions{Update: true})
}

// ValidateScenarioID rejects ids that cannot name a scenario file.
func ValidateScenarioID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("scenario id is required")
	case strings.ContainsAny(id, `/\`) || id == "." || id == "..":
		return fmt.Errorf("scenario id %q must not contain path separators", id)
	}
	return nil
}
