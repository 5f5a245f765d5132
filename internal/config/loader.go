package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// ConfigFile forces a specific file instead of the search paths.
	ConfigFile string
	// EnvPrefix overrides the environment variable prefix.
	EnvPrefix string
	// Defaults overrides the built-in defaults.
	Defaults *Config
}

// Load reads configuration from file, environment, and defaults, in
// that precedence order. A missing config file is fine; a broken one
// is not.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	defaults := opts.Defaults
	if defaults == nil {
		defaults = Default()
	}
	setViperDefaults(v, defaults)

	if opts.EnvPrefix == "" {
		opts.EnvPrefix = "TESSERA"
	}
	v.SetEnvPrefix(opts.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("tessera")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/tessera")
		v.AddConfigPath("/etc/tessera")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file.
func LoadFromFile(path string) (*Config, error) {
	return Load(LoadOptions{ConfigFile: path})
}

// LoadWithDefaults loads configuration from the default search paths.
func LoadWithDefaults() (*Config, error) {
	return Load(LoadOptions{})
}

func setViperDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("themes.dir", cfg.Themes.Dir)
	v.SetDefault("themes.active", cfg.Themes.Active)
	v.SetDefault("themes.roots", cfg.Themes.Roots)

	v.SetDefault("templates.rules", cfg.Templates.Rules)
	v.SetDefault("templates.fallback", cfg.Templates.Fallback)
	v.SetDefault("templates.cache", cfg.Templates.Cache)

	v.SetDefault("server.host", cfg.Server.Host)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", cfg.Server.IdleTimeout)
	v.SetDefault("server.sanitize", cfg.Server.Sanitize)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.timestamp", cfg.Logging.Timestamp)

	v.SetDefault("watch.enabled", cfg.Watch.Enabled)
	v.SetDefault("watch.debounce", cfg.Watch.Debounce)
	v.SetDefault("watch.ignore", cfg.Watch.Ignore)

	v.SetDefault("s3.enabled", cfg.S3.Enabled)
	v.SetDefault("s3.region", cfg.S3.Region)
	v.SetDefault("s3.bucket", cfg.S3.Bucket)
	v.SetDefault("s3.endpoint", cfg.S3.Endpoint)
	v.SetDefault("s3.force_path_style", cfg.S3.ForcePathStyle)
	// Credentials come from TESSERA_S3_ACCESS_KEY_ID and
	// TESSERA_S3_SECRET_ACCESS_KEY, never from defaults.
}
