package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/watzon/tessera/internal/resolver"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <url-path>",
	Short: "Resolve a URL path to a template",
	Long: `Resolve builds a content descriptor for the URL path, expands the
candidate list, and reports the most specific template that exists in
the theme chain.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyLogging(cfg)

		eng, err := buildEngine(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		desc := resolver.DescriptorFromPath(args[0])
		resolved, err := eng.resolver.Resolve(cmd.Context(), desc)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", resolved.Root, resolved.Name)
		return nil
	},
}

var candidatesCmd = &cobra.Command{
	Use:   "candidates <url-path>",
	Short: "Show the candidate list for a URL path",
	Long: `Candidates prints the ordered template candidates a resolution for
the URL path would scan, most specific first, without checking
existence.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyLogging(cfg)

		eng, err := buildEngine(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		desc := resolver.DescriptorFromPath(args[0])
		for _, name := range eng.resolver.Candidates(desc) {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "fallback: %s\n", cfg.Templates.Fallback)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(candidatesCmd)
}
