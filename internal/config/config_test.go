package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	// Run from an empty directory so no stray tessera.yaml is found.
	t.Chdir(t.TempDir())

	cfg, err := LoadWithDefaults()
	require.NoError(t, err)

	require.Equal(t, "themes", cfg.Themes.Dir)
	require.Equal(t, "default", cfg.Themes.Active)
	require.Equal(t, "index.html", cfg.Templates.Fallback)
	require.True(t, cfg.Templates.Cache)
	require.Equal(t, 4141, cfg.Server.Port)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "console", cfg.Logging.Format)
	require.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
	require.NotEmpty(t, cfg.Templates.Rules["singular"])
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tessera.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
themes:
  dir: /srv/themes
  active: aurora
templates:
  fallback: base.html
  cache: false
server:
  port: 8080
logging:
  level: debug
  format: json
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	require.Equal(t, "/srv/themes", cfg.Themes.Dir)
	require.Equal(t, "aurora", cfg.Themes.Active)
	require.Equal(t, "base.html", cfg.Templates.Fallback)
	require.False(t, cfg.Templates.Cache)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)

	// Unset sections keep their defaults.
	require.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TESSERA_THEMES_ACTIVE", "midnight")
	t.Setenv("TESSERA_SERVER_PORT", "9999")

	cfg, err := LoadWithDefaults()
	require.NoError(t, err)

	require.Equal(t, "midnight", cfg.Themes.Active)
	require.Equal(t, 9999, cfg.Server.Port)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tessera.yaml")
	require.NoError(t, os.WriteFile(path, []byte("themes: [broken\n"), 0o644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing themes dir",
			mutate:  func(cfg *Config) { cfg.Themes.Dir = "" },
			wantErr: "themes.dir",
		},
		{
			name: "missing active theme and roots",
			mutate: func(cfg *Config) {
				cfg.Themes.Active = ""
				cfg.Themes.Roots = nil
			},
			wantErr: "themes.active",
		},
		{
			name: "explicit roots allow empty active",
			mutate: func(cfg *Config) {
				cfg.Themes.Active = ""
				cfg.Themes.Roots = []string{"/srv/theme"}
			},
		},
		{
			name:    "missing fallback",
			mutate:  func(cfg *Config) { cfg.Templates.Fallback = "" },
			wantErr: "templates.fallback",
		},
		{
			name:    "empty rule list",
			mutate:  func(cfg *Config) { cfg.Templates.Rules["singular"] = nil },
			wantErr: "templates.rules.singular",
		},
		{
			name:    "blank pattern",
			mutate:  func(cfg *Config) { cfg.Templates.Rules["singular"] = []string{"  "} },
			wantErr: "empty pattern",
		},
		{
			name:    "port out of range",
			mutate:  func(cfg *Config) { cfg.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "unknown log level",
			mutate:  func(cfg *Config) { cfg.Logging.Level = "loud" },
			wantErr: "logging.level",
		},
		{
			name:    "bad log format",
			mutate:  func(cfg *Config) { cfg.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:    "negative debounce",
			mutate:  func(cfg *Config) { cfg.Watch.Debounce = -time.Second },
			wantErr: "watch.debounce",
		},
		{
			name: "s3 without region",
			mutate: func(cfg *Config) {
				cfg.S3.Enabled = true
				cfg.S3.Bucket = "themes"
				cfg.Themes.Roots = []string{"aurora"}
			},
			wantErr: "s3.region",
		},
		{
			name: "s3 without roots",
			mutate: func(cfg *Config) {
				cfg.S3.Enabled = true
				cfg.S3.Region = "us-east-1"
				cfg.S3.Bucket = "themes"
			},
			wantErr: "themes.roots",
		},
		{
			name: "valid s3",
			mutate: func(cfg *Config) {
				cfg.S3.Enabled = true
				cfg.S3.Region = "us-east-1"
				cfg.S3.Bucket = "themes"
				cfg.Themes.Roots = []string{"aurora", "base"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidConfig)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServerConfig_Addr(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 4141}
	require.Equal(t, "127.0.0.1:4141", cfg.Addr())
}
