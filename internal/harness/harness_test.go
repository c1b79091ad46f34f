// SPDX-License-Identifier: AGPL-3.0-or-later
package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bartekus/sddlite/internal/filegen"
	"github.com/bartekus/sddlite/internal/report"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(b)
}

// newHarness returns a Harness with a fresh report, as one command run would.
func newHarness(t *testing.T, root, ext string) (*Harness, *report.Report) {
	t.Helper()
	rep := report.New("test", root)
	h, err := New(root, ext, filegen.NewWriter(rep, zap.NewNop()), zap.NewNop())
	require.NoError(t, err)
	return h, rep
}

// snapshot maps every file under root to its content.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, p)
		files[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestNew_RejectsUnknownExt(t *testing.T) {
	_, err := New(t.TempDir(), "py", filegen.NewWriter(report.New("", ""), nil), nil)
	require.Error(t, err)
}

func TestInitWeb(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main.ts", "import { createApp } from \"vue\";\ncreateApp({}).mount(\"#app\");\n")

	h, rep := newHarness(t, root, "ts")
	require.NoError(t, h.InitWeb(""))

	assert.Equal(t, []string{
		"src/__sdd__/runtime.ts",
		"src/__sdd__/discover.ts",
		"src/__sdd__/boot.ts",
		"src/__sdd__/README.md",
		"src/__sdd__/AGENT_GUIDE.md",
	}, rep.Added)
	assert.Equal(t, []string{"src/main.ts"}, rep.Modified)
	assert.Empty(t, rep.Notes)

	entry := readFile(t, root, "src/main.ts")
	assert.Equal(t, 1, strings.Count(entry, BootMarker))
	assert.True(t, strings.HasPrefix(entry, "import { createApp } from \"vue\";\n"+BootMarker+"\n"))
}

func TestInitWeb_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main.js", "import Vue from \"vue\";\nnew Vue({});\n")

	first, _ := newHarness(t, root, "js")
	require.NoError(t, first.InitWeb(""))
	before := snapshot(t, root)

	second, rep := newHarness(t, root, "js")
	require.NoError(t, second.InitWeb(""))

	assert.Empty(t, rep.Added)
	assert.Empty(t, rep.Modified)
	assert.Len(t, rep.Skipped, 5)
	assert.Equal(t, before, snapshot(t, root))
}

func TestInitWeb_EntryOverride(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main.js", "run();\n")
	writeFile(t, root, "app/entry.js", "start();\n")

	h, rep := newHarness(t, root, "js")
	require.NoError(t, h.InitWeb("app/entry.js"))

	assert.Equal(t, []string{"app/entry.js"}, rep.Modified)
	assert.Equal(t, "run();\n", readFile(t, root, "src/main.js"))
}

func TestInitWeb_NoEntryNotes(t *testing.T) {
	root := t.TempDir()

	h, rep := newHarness(t, root, "js")
	require.NoError(t, h.InitWeb(""))

	require.Len(t, rep.Notes, 1)
	assert.Contains(t, rep.Notes[0], "Entry not found")
	assert.Contains(t, rep.Notes[0], BootMarker)
	assert.Empty(t, rep.Modified)
}

const appJSON = `{
  "pages": [
    "pages/index/index"
  ],
  "window": {
    "navigationBarTitleText": "Demo"
  }
}
`

func TestInitMiniProgram(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "miniprogram/app.json", appJSON)
	mpRoot := filepath.Join(root, "miniprogram")

	h, rep := newHarness(t, root, "js")
	require.NoError(t, h.InitMiniProgram(mpRoot))

	assert.Equal(t, []string{
		"miniprogram/__sdd__/runtime.js",
		"miniprogram/__sdd__/boot.js",
		"miniprogram/__sdd__/README.md",
		"miniprogram/__sdd__/AGENT_GUIDE.md",
		"miniprogram/pages/__sdd__/index.js",
		"miniprogram/pages/__sdd__/index.wxml",
		"miniprogram/pages/__sdd__/index.wxss",
		"miniprogram/pages/__sdd__/index.json",
		"miniprogram/__sdd__/manifest.js",
	}, rep.Added)
	assert.Equal(t, []string{"miniprogram/app.json"}, rep.Modified)

	assert.Equal(t, `{
  "pages": [
    "pages/__sdd__/index",
    "pages/index/index"
  ],
  "window": {
    "navigationBarTitleText": "Demo"
  }
}
`, readFile(t, root, "miniprogram/app.json"))

	assert.Contains(t, readFile(t, root, "miniprogram/__sdd__/manifest.js"), "export const scenarios = [")
}

func TestInitMiniProgram_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.json", appJSON)

	first, _ := newHarness(t, root, "ts")
	require.NoError(t, first.InitMiniProgram(root))
	before := snapshot(t, root)

	second, rep := newHarness(t, root, "ts")
	require.NoError(t, second.InitMiniProgram(root))

	assert.Empty(t, rep.Added)
	assert.Empty(t, rep.Modified, "app.json already lists the page")
	assert.Empty(t, rep.Notes)
	assert.Equal(t, before, snapshot(t, root))
}

func TestInitMiniProgram_NoAppJSON(t *testing.T) {
	root := t.TempDir()

	h, rep := newHarness(t, root, "js")
	require.NoError(t, h.InitMiniProgram(root))

	require.Len(t, rep.Notes, 1)
	assert.Contains(t, rep.Notes[0], "app.json not found")
}

func TestInitMiniProgram_InvalidAppJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.json", "{ pages: [")

	h, rep := newHarness(t, root, "js")
	require.NoError(t, h.InitMiniProgram(root))

	assert.Equal(t, "{ pages: [", readFile(t, root, "app.json"))
	require.Len(t, rep.Notes, 2)
	assert.Contains(t, rep.Notes[0], "not valid JSON")
	assert.Contains(t, rep.Notes[1], "Failed to patch app.json")
}

func TestAddModule(t *testing.T) {
	root := t.TempDir()

	h, rep := newHarness(t, root, "ts")
	dir, err := h.AddModule("src/pages/cart")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "src", "pages", "cart", "__sdd__"), dir)
	assert.Equal(t, []string{
		"src/pages/cart/__sdd__/helpers/sddTools.ts",
		"src/pages/cart/__sdd__/mocks/index.ts",
		"src/pages/cart/__sdd__/scenarios/README.md",
	}, rep.Added)

	_, err = h.AddModule(" ")
	require.Error(t, err)
}

func TestAddScenario(t *testing.T) {
	root := t.TempDir()

	h, rep := newHarness(t, root, "js")
	require.NoError(t, h.AddScenario("src/cart", Scenario{ID: "cart.empty", Title: "Empty cart"}))

	assert.Contains(t, rep.Added, "src/cart/__sdd__/scenarios/cart.empty.scenario.js")
	content := readFile(t, root, "src/cart/__sdd__/scenarios/cart.empty.scenario.js")
	assert.Contains(t, content, `id: "cart.empty"`)
	assert.Contains(t, content, `title: "Empty cart"`)

	again, rep2 := newHarness(t, root, "js")
	require.NoError(t, again.AddScenario("src/cart", Scenario{ID: "cart.empty", Title: "Changed"}))
	assert.Contains(t, rep2.Skipped, "src/cart/__sdd__/scenarios/cart.empty.scenario.js")
	assert.Empty(t, rep2.Added)
	assert.Equal(t, content, readFile(t, root, "src/cart/__sdd__/scenarios/cart.empty.scenario.js"))
}

func TestAddScenario_APIVariants(t *testing.T) {
	root := t.TempDir()

	h, rep := newHarness(t, root, "ts")
	require.NoError(t, h.AddScenario("src/cart", Scenario{ID: "cart.api", Template: TemplateAPIVariants}))

	assert.Contains(t, rep.Added, "src/cart/__sdd__/helpers/apiPatch.ts")
	assert.Contains(t, rep.Added, "src/cart/__sdd__/scenarios/cart.api.scenario.ts")
	assert.Contains(t, readFile(t, root, "src/cart/__sdd__/scenarios/cart.api.scenario.ts"), `title: "cart.api"`)
}

func TestAddScenario_InvalidInput(t *testing.T) {
	root := t.TempDir()
	h, rep := newHarness(t, root, "js")

	require.Error(t, h.AddScenario("src/cart", Scenario{}))
	require.Error(t, h.AddScenario("src/cart", Scenario{ID: "../escape"}))
	require.Error(t, h.AddScenario("src/cart", Scenario{ID: "x", Template: "fancy"}))
	assert.True(t, rep.Empty(), "invalid input must not touch the tree")
}

func TestAddScenario_RefreshesMiniProgramManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "miniprogram/app.json", appJSON)

	setup, _ := newHarness(t, root, "js")
	require.NoError(t, setup.InitMiniProgram(filepath.Join(root, "miniprogram")))
	assert.NotContains(t, readFile(t, root, "miniprogram/__sdd__/manifest.js"), "import s0")

	h, rep := newHarness(t, root, "js")
	require.NoError(t, h.AddScenario("miniprogram/pkgA", Scenario{ID: "hello"}))

	assert.Contains(t, rep.Modified, "miniprogram/__sdd__/manifest.js")
	assert.Contains(t, readFile(t, root, "miniprogram/__sdd__/manifest.js"),
		`import s0 from "../pkgA/__sdd__/scenarios/hello.scenario.js";`)
}

func TestAddScenario_OutsideMiniProgramRootLeavesManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "miniprogram/app.json", appJSON)

	h, rep := newHarness(t, root, "js")
	require.NoError(t, h.AddScenario("tools/web", Scenario{ID: "hello"}))

	_, err := os.Stat(filepath.Join(root, "miniprogram", "__sdd__", "manifest.js"))
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, rep.Modified)
}

func TestRefreshManifest_RespectsUserOwnership(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.json", appJSON)
	writeFile(t, root, "__sdd__/manifest.js", "export const scenarios = [];\n")
	writeFile(t, root, "pkg/__sdd__/scenarios/a.scenario.js", "export default {};\n")

	h, rep := newHarness(t, root, "js")
	require.NoError(t, h.RefreshManifest(root, filegen.SyncOptions{Update: true}))

	assert.Equal(t, "export const scenarios = [];\n", readFile(t, root, "__sdd__/manifest.js"))
	assert.Equal(t, []string{"__sdd__/manifest.js"}, rep.Skipped)
	require.Len(t, rep.Notes, 1)
	assert.Contains(t, rep.Notes[0], "merge")
}

func TestRefreshManifest_UnchangedIsNoOp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/__sdd__/scenarios/a.scenario.ts", "export default {};\n")

	first, _ := newHarness(t, root, "ts")
	require.NoError(t, first.RefreshManifest(root, filegen.SyncOptions{Update: true}))
	before := readFile(t, root, "__sdd__/manifest.ts")

	second, rep := newHarness(t, root, "ts")
	require.NoError(t, second.RefreshManifest(root, filegen.SyncOptions{Update: true}))

	assert.True(t, rep.Empty())
	assert.Equal(t, before, readFile(t, root, "__sdd__/manifest.ts"))
}

func TestAddScenario_ConfiguredMpRootWinsOverDetection(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.json", appJSON)
	writeFile(t, root, "app/app.json", appJSON)
	mpRoot := filepath.Join(root, "app")

	setup, _ := newHarness(t, root, "js")
	require.NoError(t, setup.WithMpRoot(mpRoot).InitMiniProgram(mpRoot))

	h, rep := newHarness(t, root, "js")
	h.WithMpRoot(mpRoot)
	assert.Equal(t, mpRoot, h.MpRoot())
	require.NoError(t, h.AddScenario("app/pkgA", Scenario{ID: "hello"}))

	assert.Contains(t, rep.Modified, "app/__sdd__/manifest.js")
	assert.Contains(t, readFile(t, root, "app/__sdd__/manifest.js"), `"../pkgA/__sdd__/scenarios/hello.scenario.js"`)
	assert.NoFileExists(t, filepath.Join(root, "__sdd__", "manifest.js"))
}
