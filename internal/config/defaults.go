package config

import "time"

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Themes: ThemesConfig{
			Dir:    "themes",
			Active: "default",
		},
		Templates: TemplatesConfig{
			Rules: map[string][]string{
				"singular": {
					"{type}-{path_slug}.html",
					"{type}-{type_slug}.html",
					"{type}.html",
					"singular.html",
				},
				"archive": {
					"archive-{type}-{type_slug}.html",
					"archive-{type}.html",
					"archive.html",
				},
				"index": {
					"home.html",
				},
			},
			Fallback: "index.html",
			Cache:    true,
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         4141,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "console",
			Timestamp: true,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 300 * time.Millisecond,
			Ignore:   []string{"**/.git/**", "**/*.swp", "**/*~"},
		},
	}
}
