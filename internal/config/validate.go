package config

import (
	"fmt"
	"strings"
)

var validLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate rejects configurations the engine cannot run with.
func Validate(cfg *Config) error {
	if !cfg.S3.Enabled {
		if cfg.Themes.Dir == "" {
			return fmt.Errorf("%w: themes.dir is required", ErrInvalidConfig)
		}
	}
	if cfg.Themes.Active == "" && len(cfg.Themes.Roots) == 0 {
		return fmt.Errorf("%w: themes.active or themes.roots is required", ErrInvalidConfig)
	}
	if cfg.S3.Enabled && len(cfg.Themes.Roots) == 0 {
		return fmt.Errorf("%w: themes.roots is required when s3 is enabled", ErrInvalidConfig)
	}

	if cfg.Templates.Fallback == "" {
		return fmt.Errorf("%w: templates.fallback is required", ErrInvalidConfig)
	}
	for kind, patterns := range cfg.Templates.Rules {
		if len(patterns) == 0 {
			return fmt.Errorf("%w: templates.rules.%s has no patterns", ErrInvalidConfig, kind)
		}
		for _, p := range patterns {
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("%w: templates.rules.%s contains an empty pattern", ErrInvalidConfig, kind)
			}
		}
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, cfg.Server.Port)
	}

	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("%w: unknown logging.level %q", ErrInvalidConfig, cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" && cfg.Logging.Format != "json" {
		return fmt.Errorf("%w: logging.format must be console or json, got %q", ErrInvalidConfig, cfg.Logging.Format)
	}

	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("%w: watch.debounce must not be negative", ErrInvalidConfig)
	}

	if cfg.S3.Enabled {
		if cfg.S3.Region == "" {
			return fmt.Errorf("%w: s3.region is required when s3 is enabled", ErrInvalidConfig)
		}
		if cfg.S3.Bucket == "" {
			return fmt.Errorf("%w: s3.bucket is required when s3 is enabled", ErrInvalidConfig)
		}
	}

	return nil
}
