// SPDX-License-Identifier: AGPL-3.0-or-later

// Package templates holds the file payloads sdd-lite scaffolds into host
// projects. Templates use {% %} delimiters so the mustache syntax of wxml
// passes through untouched.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed assets
var assets embed.FS

// Template names, relative to assets/.
const (
	WebRuntime    = "web/runtime.tmpl"
	WebDiscover   = "web/discover.tmpl"
	WebBoot       = "web/boot.tmpl"
	WebReadme     = "web/readme.tmpl"
	WebAgentGuide = "web/agent_guide.tmpl"

	MpRuntime    = "mp/runtime.tmpl"
	MpBoot       = "mp/boot.tmpl"
	MpReadme     = "mp/readme.tmpl"
	MpAgentGuide = "mp/agent_guide.tmpl"
	MpPage       = "mp/page.tmpl"
	MpPageWxml   = "mp/page_wxml.tmpl"
	MpPageWxss   = "mp/page_wxss.tmpl"
	MpPageJSON   = "mp/page_json.tmpl"

	ModuleSddTools        = "module/sdd_tools.tmpl"
	ModuleMocksIndex      = "module/mocks_index.tmpl"
	ModuleScenariosReadme = "module/scenarios_readme.tmpl"
	ScenarioBasic         = "module/scenario_basic.tmpl"
	ScenarioAPIVariants   = "module/scenario_api_variants.tmpl"
	HelperAPIPatch        = "module/api_patch.tmpl"
)

// Data is the input of every template.
type Data struct {
	// Ext is the source extension of the host project: "ts" or "js".
	Ext string

	// HarnessDir is the project-relative scaffold directory, e.g. "src/__sdd__".
	HarnessDir string
	// PagePath is the mini-program debug page registration path.
	PagePath string

	// ID and Title describe a scenario.
	ID    string
	Title string
}

// TS reports whether the output carries TypeScript annotations.
func (d Data) TS() bool { return d.Ext == "ts" }

// Render executes the named template.
func Render(name string, data Data) ([]byte, error) {
	t, ok := parsed[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// parsed maps "dir/file.tmpl" to its template. Files are parsed one by one:
// several directories share base names.
var parsed = func() map[string]*template.Template {
	m := map[string]*template.Template{}
	err := fs.WalkDir(assets, "assets", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		src, err := assets.ReadFile(p)
		if err != nil {
			return err
		}
		name := strings.TrimPrefix(p, "assets/")
		t, err := template.New(name).Delims("{%", "%}").Funcs(sprig.TxtFuncMap()).Parse(string(src))
		if err != nil {
			return fmt.Errorf("parsing %s: %w", name, err)
		}
		m[name] = t
		return nil
	})
	if err != nil {
		panic(err)
	}
	return m
}()
