// SPDX-License-Identifier: AGPL-3.0-or-later
package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestParseType(t *testing.T) {
	for in, want := range map[string]Type{
		"mp":        TypeMpWechat,
		"wechat":    TypeMpWechat,
		"mp-wechat": TypeMpWechat,
		"vue2":      TypeVue2,
		"vue3":      TypeVue3,
	} {
		got, err := ParseType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseType("react")
	require.Error(t, err)
}

func TestDetectLang(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, "js", DetectLang(root, ""))
	assert.Equal(t, "ts", DetectLang(root, "ts"))

	touch(t, root, "miniprogram/tsconfig.json", "{}")
	assert.Equal(t, "ts", DetectLang(root, ""))
	assert.Equal(t, "js", DetectLang(root, "js"))
}

func TestDetectMpRoot(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, "", DetectMpRoot(root))

	touch(t, root, "app.json", "{}")
	assert.Equal(t, root, DetectMpRoot(root))

	touch(t, root, "miniprogram/app.json", "{}")
	assert.Equal(t, filepath.Join(root, "miniprogram"), DetectMpRoot(root))
}

func TestMpRootForInit(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, root, MpRootForInit(root))

	require.NoError(t, os.Mkdir(filepath.Join(root, "miniprogram"), 0o755))
	assert.Equal(t, filepath.Join(root, "miniprogram"), MpRootForInit(root))
}

func TestFindEntry(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, "", FindEntry(root, EntryCandidates))

	touch(t, root, "src/index.js", "")
	touch(t, root, "src/main.js", "")
	assert.Equal(t, filepath.Join(root, "src", "main.js"), FindEntry(root, EntryCandidates))
}

func TestLoadConfig(t *testing.T) {
	root := t.TempDir()

	cfg, err := LoadConfig(root)
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)

	touch(t, root, ConfigFile, "type: mp\nlang: ts\nentry: src/app.ts\n")
	cfg, err = LoadConfig(root)
	require.NoError(t, err)
	assert.Equal(t, Config{Type: "mp", Lang: "ts", Entry: "src/app.ts"}, cfg)

	touch(t, root, ConfigFile, "lang: python\n")
	_, err = LoadConfig(root)
	require.Error(t, err)

	touch(t, root, ConfigFile, "type: [unclosed\n")
	_, err = LoadConfig(root)
	require.Error(t, err)
}
