// Package cli implements the tessera command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/watzon/tessera/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tessera",
	Short: "A template-resolution and hook-dispatch engine for themes",
	Long: `Tessera resolves content descriptors to the most specific template in
a theme hierarchy and dispatches lifecycle hooks around rendering.

Preview the active theme:
  tessera serve

Resolve a URL path against the theme chain:
  tessera resolve /docs/install/linux

Show the candidate list for a path:
  tessera candidates /docs/install/linux`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./tessera.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// loadConfig loads configuration honoring the --config flag.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFromFile(cfgFile)
	}
	return config.LoadWithDefaults()
}

// setupLogging configures zerolog based on verbosity and environment.
func setupLogging() {
	// Pretty console output for development
	output := zerolog.ConsoleWriter{Out: os.Stderr}

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// applyLogging re-applies the loaded configuration's logging settings.
// --verbose wins over the configured level.
func applyLogging(cfg *config.Config) {
	if !verbose {
		if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			zerolog.SetGlobalLevel(level)
		}
	}

	if cfg.Logging.Format == "json" {
		logger := zerolog.New(os.Stderr)
		if cfg.Logging.Timestamp {
			logger = logger.With().Timestamp().Logger()
		}
		log.Logger = logger
	}
}

// Version returns the version string.
func Version() string {
	return fmt.Sprintf("tessera version %s", "0.1.0-dev")
}
