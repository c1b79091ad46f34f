// SPDX-License-Identifier: AGPL-3.0-or-later
package doctor

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func levels(res *Result) map[string]Level {
	out := map[string]Level{}
	for _, c := range res.Checks {
		out[c.ID] = c.Level
	}
	return out
}

func TestRun_EmptyProject(t *testing.T) {
	res, err := New(t.TempDir(), zap.NewNop()).Run(ScopeAuto)
	require.NoError(t, err)

	assert.Equal(t, map[string]Level{"web.sddDir": LevelWarn}, levels(res))
	assert.False(t, res.Failed())
}

func TestRun_HealthyWeb(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/__sdd__/boot.ts", "")
	writeFile(t, root, "src/main.ts", "/* sdd-lite:boot */\n")
	writeFile(t, root, "src/cart/__sdd__/scenarios/a.scenario.ts", "export default { id: \"a\", title: \"A\", setup() {} };\n")

	res, err := New(root, nil).Run(ScopeWeb)
	require.NoError(t, err)

	assert.Equal(t, map[string]Level{
		"web.sddDir":         LevelOK,
		"web.boot":           LevelOK,
		"web.entryPatch":     LevelOK,
		"web.scenario.count": LevelOK,
	}, levels(res))
	assert.Equal(t, "Scenarios found (src): 1", res.Checks[len(res.Checks)-1].Message)
}

func TestRun_WebProblems(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/__sdd__/README.md", "")
	writeFile(t, root, "src/main.js", "run();\n")
	writeFile(t, root, "src/a/__sdd__/scenarios/one.scenario.js", "export default { id: \"dup\", title: \"A\", setup() {} };\n")
	writeFile(t, root, "src/b/__sdd__/scenarios/two.scenario.js", "export default { id: \"dup\", title: \"B\", setup() {} };\n")
	writeFile(t, root, "src/c/__sdd__/scenarios/bad.scenario.js", "const x = 1;\n")

	res, err := New(root, nil).Run(ScopeWeb)
	require.NoError(t, err)

	got := levels(res)
	assert.Equal(t, LevelFail, got["web.boot"])
	assert.Equal(t, LevelWarn, got["web.entryPatch"])
	assert.Equal(t, LevelFail, got["web.scenario.dup"])
	assert.Equal(t, LevelWarn, got["web.scenario.id"])
	assert.Equal(t, LevelWarn, got["web.scenario.title"])
	assert.Equal(t, LevelWarn, got["web.scenario.setup"])
	assert.Equal(t, LevelWarn, got["web.scenario.export"])
	assert.True(t, res.Failed())

	for _, c := range res.Checks {
		if c.ID == "web.scenario.dup" {
			assert.Equal(t, "src/a/__sdd__/scenarios/one.scenario.js and src/b/__sdd__/scenarios/two.scenario.js", c.Fix)
		}
	}
}

func TestRun_MiniProgram(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "miniprogram/app.json", `{"pages":["pages/__sdd__/index","pages/index/index"]}`)
	writeFile(t, root, "miniprogram/__sdd__/manifest.js", "")
	writeFile(t, root, "miniprogram/pages/__sdd__/index.js", "")
	writeFile(t, root, "miniprogram/pkgA/__sdd__/scenarios/hello.scenario.js", "export default { id: \"hello\", title: \"Hello\", setup() {} };\n")

	res, err := New(root, nil).Run(ScopeMp)
	require.NoError(t, err)

	assert.Equal(t, map[string]Level{
		"mp.sddDir":         LevelOK,
		"mp.manifest":       LevelOK,
		"mp.page":           LevelOK,
		"mp.pages":          LevelOK,
		"mp.scenario.count": LevelOK,
	}, levels(res))
}

func TestRun_MiniProgramUnregistered(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.json", `{"pages":["pages/index/index"]}`)
	writeFile(t, root, "__sdd__/boot.js", "")

	res, err := New(root, nil).Run(ScopeMp)
	require.NoError(t, err)

	got := levels(res)
	assert.Equal(t, LevelFail, got["mp.manifest"])
	assert.Equal(t, LevelWarn, got["mp.page"])
	assert.Equal(t, LevelWarn, got["mp.pages"])
}

func TestRun_MiniProgramInvalidAppJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.json", `{"pages": [`)
	writeFile(t, root, "__sdd__/manifest.js", "")

	res, err := New(root, nil).Run(ScopeMp)
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, levels(res)["mp.appJson"])
}

func TestRun_IsReadOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.json", `{"pages":[]}`)

	_, err := New(root, nil).Run(ScopeAuto)
	require.NoError(t, err)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestParseScope(t *testing.T) {
	for in, want := range map[string]Scope{
		"":          ScopeAuto,
		"auto":      ScopeAuto,
		"vue3":      ScopeWeb,
		"web":       ScopeWeb,
		"wechat":    ScopeMp,
		"mp-wechat": ScopeMp,
	} {
		got, err := ParseScope(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseScope("react")
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	res := &Result{Checks: []Check{
		{ID: "web.sddDir", Level: LevelOK, Message: "Found src/__sdd__"},
		{ID: "web.boot", Level: LevelFail, Message: "Missing web boot file", Fix: "Re-run: sdd-lite init"},
	}}

	var text bytes.Buffer
	require.NoError(t, res.RenderText(&text))
	assert.Equal(t, "[OK] Found src/__sdd__\n[FAIL] Missing web boot file\n      fix: Re-run: sdd-lite init\n", text.String())

	var out bytes.Buffer
	require.NoError(t, res.RenderJSON(&out))
	var decoded Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, *res, decoded)
}

func TestRun_ConfiguredMpRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.json", `{"pages":[]}`)
	writeFile(t, root, "app/app.json", `{"pages":["pages/__sdd__/index"]}`)
	writeFile(t, root, "app/__sdd__/manifest.js", "")
	writeFile(t, root, "app/pages/__sdd__/index.js", "")

	res, err := New(root, nil).WithMpRoot(filepath.Join(root, "app")).Run(ScopeMp)
	require.NoError(t, err)

	assert.Equal(t, map[string]Level{
		"mp.sddDir":         LevelOK,
		"mp.manifest":       LevelOK,
		"mp.page":           LevelOK,
		"mp.pages":          LevelOK,
		"mp.scenario.count": LevelOK,
	}, levels(res))
	assert.Equal(t, "Found app/__sdd__", res.Checks[0].Message)
}
