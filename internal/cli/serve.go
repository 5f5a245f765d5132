package cli

import (
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/watzon/tessera/internal/hooks"
	"github.com/watzon/tessera/internal/server"
	"github.com/watzon/tessera/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the theme preview server",
	Long: `Serve renders the active theme over HTTP. Theme directories are
watched for changes; edits invalidate the resolver cache and reload
connected browsers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyLogging(cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		eng, err := buildEngine(ctx, cfg)
		if err != nil {
			return err
		}

		reg, err := buildRegistry(cfg)
		if err != nil {
			return err
		}

		if err := reg.DispatchAction(ctx, hooks.HookAfterSetup); err != nil {
			return err
		}
		if err := reg.DispatchAction(ctx, hooks.HookInit); err != nil {
			return err
		}

		// Startup wiring is complete; only dispatch from here on.
		reg.Freeze()

		hub := server.NewReloadHub()

		if cfg.Watch.Enabled && !cfg.S3.Enabled {
			w, err := watcher.New(
				watcher.WithDebounce(cfg.Watch.Debounce),
				watcher.WithIgnore(cfg.Watch.Ignore...),
			)
			if err != nil {
				return err
			}
			for _, root := range eng.roots {
				if err := w.Add(root); err != nil {
					return err
				}
			}
			w.OnChange(func(ev watcher.Event) {
				eng.resolver.InvalidateCache()
				hub.Broadcast(ev.Path)
			})
			w.Start(ctx)
			defer func() {
				if err := w.Stop(); err != nil {
					log.Warn().Err(err).Msg("Stopping watcher")
				}
			}()

			log.Info().Strs("roots", eng.roots).Msg("Watching theme directories")
		}

		srv := server.New(cfg, reg, eng.resolver, eng.finder, server.WithReloadHub(hub))
		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
