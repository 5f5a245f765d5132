package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/watzon/tessera/internal/resolver"
)

func writeManifest(t *testing.T, themesDir, name, content string) {
	t.Helper()

	dir := filepath.Join(themesDir, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	themesDir := t.TempDir()
	writeManifest(t, themesDir, "aurora", `
name: aurora
description: A starter theme
version: 1.2.0
`)

	th, err := Load(themesDir, "aurora")
	require.NoError(t, err)
	require.Equal(t, "aurora", th.Manifest.Name)
	require.Equal(t, "1.2.0", th.Manifest.Version)
	require.Equal(t, filepath.Join(themesDir, "aurora"), th.Dir)
}

func TestLoad_NameDefaultsToDirectory(t *testing.T) {
	themesDir := t.TempDir()
	writeManifest(t, themesDir, "plain", "description: no name field\n")

	th, err := Load(themesDir, "plain")
	require.NoError(t, err)
	require.Equal(t, "plain", th.Manifest.Name)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir(), "ghost")
	require.ErrorIs(t, err, ErrThemeNotFound)
}

func TestLoad_BadYAML(t *testing.T) {
	themesDir := t.TempDir()
	writeManifest(t, themesDir, "broken", "name: [unclosed\n")

	_, err := Load(themesDir, "broken")
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing manifest")
}

func TestChain_ChildFirst(t *testing.T) {
	themesDir := t.TempDir()
	writeManifest(t, themesDir, "base", "name: base\n")
	writeManifest(t, themesDir, "mid", "name: mid\nparent: base\n")
	writeManifest(t, themesDir, "child", "name: child\nparent: mid\n")

	chain, err := Chain(themesDir, "child")
	require.NoError(t, err)
	require.Len(t, chain, 3)
	require.Equal(t, "child", chain[0].Manifest.Name)
	require.Equal(t, "mid", chain[1].Manifest.Name)
	require.Equal(t, "base", chain[2].Manifest.Name)

	roots := Roots(chain)
	require.Equal(t, []string{
		filepath.Join(themesDir, "child"),
		filepath.Join(themesDir, "mid"),
		filepath.Join(themesDir, "base"),
	}, roots)
}

func TestChain_CycleDetected(t *testing.T) {
	themesDir := t.TempDir()
	writeManifest(t, themesDir, "a", "name: a\nparent: b\n")
	writeManifest(t, themesDir, "b", "name: b\nparent: a\n")

	_, err := Chain(themesDir, "a")
	require.ErrorIs(t, err, ErrParentCycle)
}

func TestChain_MissingParent(t *testing.T) {
	themesDir := t.TempDir()
	writeManifest(t, themesDir, "child", "name: child\nparent: ghost\n")

	_, err := Chain(themesDir, "child")
	require.ErrorIs(t, err, ErrThemeNotFound)
}

func TestMergedRules(t *testing.T) {
	themesDir := t.TempDir()
	writeManifest(t, themesDir, "base", `
name: base
rules:
  singular:
    - "base-{type}.html"
  archive:
    - "base-archive.html"
`)
	writeManifest(t, themesDir, "child", `
name: child
parent: base
rules:
  singular:
    - "child-{type}.html"
`)

	chain, err := Chain(themesDir, "child")
	require.NoError(t, err)

	base := resolver.RuleTable{
		"singular": {"default-{type}.html"},
		"index":    {"home.html"},
	}

	merged := MergedRules(base, chain)

	// Child wins for singular, base theme's override applies for
	// archive, untouched kinds keep the defaults.
	require.Equal(t, []string{"child-{type}.html"}, merged["singular"])
	require.Equal(t, []string{"base-archive.html"}, merged["archive"])
	require.Equal(t, []string{"home.html"}, merged["index"])

	// The base table is not mutated.
	require.Equal(t, []string{"default-{type}.html"}, base["singular"])
}
