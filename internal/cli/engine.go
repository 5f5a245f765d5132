package cli

import (
	"context"
	"fmt"

	"github.com/watzon/tessera/internal/config"
	"github.com/watzon/tessera/internal/finder"
	"github.com/watzon/tessera/internal/resolver"
	"github.com/watzon/tessera/internal/theme"
)

// engine bundles the wired-up resolution pipeline shared by the
// resolve, candidates, and serve commands.
type engine struct {
	finder   finder.ReadFinder
	roots    []string
	rules    resolver.RuleTable
	resolver *resolver.Resolver
}

func buildEngine(ctx context.Context, cfg *config.Config) (*engine, error) {
	var (
		f     finder.ReadFinder
		roots []string
		rules = rulesFromConfig(cfg)
		err   error
	)

	if cfg.S3.Enabled {
		f, err = finder.NewS3(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("creating S3 finder: %w", err)
		}
		roots = cfg.Themes.Roots
	} else {
		f = finder.NewOS()
		roots = cfg.Themes.Roots
		if len(roots) == 0 {
			chain, err := theme.Chain(cfg.Themes.Dir, cfg.Themes.Active)
			if err != nil {
				return nil, err
			}
			roots = theme.Roots(chain)
			rules = theme.MergedRules(rules, chain)
		}
	}

	opts := []resolver.Option{resolver.WithFallback(cfg.Templates.Fallback)}
	if cfg.Templates.Cache {
		opts = append(opts, resolver.WithCache())
	}

	return &engine{
		finder:   f,
		roots:    roots,
		rules:    rules,
		resolver: resolver.New(f, rules, roots, opts...),
	}, nil
}

func rulesFromConfig(cfg *config.Config) resolver.RuleTable {
	if len(cfg.Templates.Rules) == 0 {
		return resolver.DefaultRules()
	}
	rules := make(resolver.RuleTable, len(cfg.Templates.Rules))
	for kind, patterns := range cfg.Templates.Rules {
		rules[kind] = append([]string(nil), patterns...)
	}
	return rules
}
