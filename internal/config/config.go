// Package config holds the engine configuration: where themes live,
// how templates resolve, and how the preview server behaves.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root configuration.
type Config struct {
	Themes    ThemesConfig    `mapstructure:"themes"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Watch     WatchConfig     `mapstructure:"watch"`
	S3        S3Config        `mapstructure:"s3"`
}

// ThemesConfig locates the active theme.
type ThemesConfig struct {
	// Dir is the directory containing theme directories.
	Dir string `mapstructure:"dir"`
	// Active is the theme name to resolve against.
	Active string `mapstructure:"active"`
	// Roots, when set, is used verbatim as the override-root list,
	// highest priority first, instead of walking the active theme's
	// parent chain. Required for S3-backed themes, where manifests
	// are not read.
	Roots []string `mapstructure:"roots"`
}

// TemplatesConfig drives the resolver.
type TemplatesConfig struct {
	// Rules maps descriptor kinds to candidate patterns, most
	// specific first. Empty means the built-in rules.
	Rules map[string][]string `mapstructure:"rules"`
	// Fallback is the ultimate fallback template name.
	Fallback string `mapstructure:"fallback"`
	// Cache enables memoized existence checks.
	Cache bool `mapstructure:"cache"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	// Sanitize registers the built-in HTML sanitizer on the content
	// filter. Off by default: it is meant for themes rendering
	// untrusted fragments, not for full-page templates, whose
	// structural tags it would strip.
	Sanitize bool `mapstructure:"sanitize"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"` // "console" or "json"
	Timestamp bool   `mapstructure:"timestamp"`
}

// WatchConfig configures theme-directory watching.
type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
	// Ignore is a list of glob patterns for paths to skip.
	Ignore []string `mapstructure:"ignore"`
}

// S3Config configures the optional S3-backed template source. Themes
// resolve from object storage when Enabled is set; the local themes
// directory is ignored in that mode.
type S3Config struct {
	Enabled         bool   `mapstructure:"enabled"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	ForcePathStyle  bool   `mapstructure:"force_path_style"`
}

// Addr returns the listen address for the preview server.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
