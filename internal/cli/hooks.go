package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/watzon/tessera/internal/config"
	"github.com/watzon/tessera/internal/hooks"
)

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "List lifecycle hooks and their registrations",
	Long: `Hooks prints the canonical lifecycle hook names the engine dispatches
and the callbacks the default wiring registers on them. Host
applications register their own callbacks on top of these.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyLogging(cfg)

		reg, err := buildRegistry(cfg)
		if err != nil {
			return err
		}

		lifecycle := []string{
			hooks.HookAfterSetup,
			hooks.HookInit,
			hooks.HookRegisterWidgets,
			hooks.HookEnqueueAssets,
			hooks.HookBeforeTemplateRender,
			hooks.FilterContent,
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "HOOK\tKIND\tPRIORITY\tID")
		for _, name := range lifecycle {
			regs := reg.Registrations(name)
			if len(regs) == 0 {
				fmt.Fprintf(w, "%s\t-\t-\t-\n", name)
				continue
			}
			for _, r := range regs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.Hook, r.Kind, r.Priority, r.ID)
			}
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(hooksCmd)
}

// buildRegistry wires the registry the engine ships with: render
// tracing on the render action and, when configured, HTML
// sanitization on the content filter. Sanitization runs late so other
// filters see the raw body first.
func buildRegistry(cfg *config.Config) (*hooks.Registry, error) {
	reg := hooks.NewRegistry()

	_, err := reg.AddAction(hooks.HookBeforeTemplateRender, func(ctx context.Context, args ...any) error {
		if len(args) > 0 {
			log.Debug().Interface("descriptor", args[0]).Msg("Rendering template")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cfg.Server.Sanitize {
		_, err = reg.AddFilter(hooks.FilterContent, hooks.SanitizeContent(),
			hooks.WithPriority(100))
		if err != nil {
			return nil, err
		}
	}

	return reg, nil
}
