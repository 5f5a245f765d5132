// Package theme loads theme manifests and derives the override-root
// chain a resolver searches: the active theme first, then its
// ancestors.
package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/watzon/tessera/internal/resolver"
)

// ManifestFile is the manifest name expected in every theme directory.
const ManifestFile = "theme.yaml"

var (
	// ErrThemeNotFound is returned when a theme directory or its
	// manifest is missing.
	ErrThemeNotFound = errors.New("theme not found")

	// ErrParentCycle is returned when the parent chain loops.
	ErrParentCycle = errors.New("theme parent cycle")
)

// Manifest is the parsed theme.yaml.
type Manifest struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Version     string `yaml:"version,omitempty"`
	// Parent names another theme in the same themes directory whose
	// templates are searched after this theme's.
	Parent string `yaml:"parent,omitempty"`
	// Rules overrides candidate patterns per descriptor kind.
	// Child overrides win over ancestors'.
	Rules map[string][]string `yaml:"rules,omitempty"`
}

// Theme is a loaded theme: its directory plus manifest.
type Theme struct {
	Dir      string
	Manifest *Manifest
}

// Load reads one theme from themesDir by name.
func Load(themesDir, name string) (*Theme, error) {
	dir := filepath.Join(themesDir, name)

	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %q in %s", ErrThemeNotFound, name, themesDir)
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest for theme %q: %w", name, err)
	}

	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing manifest for theme %q: %w", name, err)
	}
	if m.Name == "" {
		m.Name = name
	}

	return &Theme{Dir: dir, Manifest: m}, nil
}

// Chain loads the active theme and all its ancestors, child first.
// A theme naming itself or an ancestor as parent is an error.
func Chain(themesDir, name string) ([]*Theme, error) {
	var chain []*Theme
	seen := make(map[string]struct{})

	for name != "" {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrParentCycle, name)
		}
		seen[name] = struct{}{}

		t, err := Load(themesDir, name)
		if err != nil {
			return nil, err
		}
		chain = append(chain, t)
		name = t.Manifest.Parent
	}

	return chain, nil
}

// Roots returns the override roots for a chain, child first, matching
// the resolver's priority order.
func Roots(chain []*Theme) []string {
	roots := make([]string, len(chain))
	for i, t := range chain {
		roots[i] = t.Dir
	}
	return roots
}

// MergedRules folds the chain's rule overrides over a base table.
// Ancestors apply first, so the child's overrides win per kind.
func MergedRules(base resolver.RuleTable, chain []*Theme) resolver.RuleTable {
	merged := make(resolver.RuleTable, len(base))
	for kind, patterns := range base {
		merged[kind] = append([]string(nil), patterns...)
	}

	for i := len(chain) - 1; i >= 0; i-- {
		for kind, patterns := range chain[i].Manifest.Rules {
			merged[kind] = append([]string(nil), patterns...)
		}
	}

	return merged
}
