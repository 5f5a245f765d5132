package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/watzon/tessera/internal/finder"
	"github.com/watzon/tessera/internal/metrics"
)

// ErrTemplateNotFound is returned when no candidate exists in any root
// and the fallback template is absent too. Resolution never silently
// returns an empty result.
var ErrTemplateNotFound = errors.New("no matching template")

// DefaultFallback is the ultimate fallback template name used when no
// fallback option is given.
const DefaultFallback = "index.html"

// Resolver resolves descriptors against a rule table and an ordered
// chain of override roots. It is a pure function of the descriptor and
// the finder's state; the only mutable piece is the optional existence
// cache.
type Resolver struct {
	finder   finder.Finder
	rules    RuleTable
	fallback string

	roots []string
	cache *existsCache
	mu    sync.RWMutex
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFallback overrides the ultimate fallback template name.
func WithFallback(name string) Option {
	return func(r *Resolver) {
		r.fallback = name
	}
}

// WithCache memoizes existence checks. Call InvalidateCache when the
// roots' contents change.
func WithCache() Option {
	return func(r *Resolver) {
		r.cache = newExistsCache()
	}
}

// New creates a resolver over the given finder, rule table, and
// override roots. Roots are ordered highest priority first (child
// theme before parent theme).
func New(f finder.Finder, rules RuleTable, roots []string, opts ...Option) *Resolver {
	r := &Resolver{
		finder:   f,
		rules:    rules,
		fallback: DefaultFallback,
		roots:    append([]string(nil), roots...),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Candidates returns the ordered candidate list the resolver would
// scan for the descriptor, most specific first.
func (r *Resolver) Candidates(d Descriptor) []string {
	return r.rules.Candidates(d)
}

// Resolve returns the most specific existing template for the
// descriptor.
//
// Candidates are the outer loop and roots the inner loop: every root
// is checked for the most specific candidate before the next, less
// specific candidate is considered anywhere. A more specific candidate
// in a low-priority root therefore beats a less specific candidate in
// a high-priority root. Within one candidate, roots win by priority.
//
// When no candidate exists in any root the fallback template is
// checked across all roots; if that is absent too, Resolve returns
// ErrTemplateNotFound.
func (r *Resolver) Resolve(ctx context.Context, d Descriptor) (Resolved, error) {
	roots := r.Roots()

	for _, name := range r.rules.Candidates(d) {
		for _, root := range roots {
			ok, err := r.exists(ctx, root, name)
			if err != nil {
				return Resolved{}, fmt.Errorf("resolving %q: %w", name, err)
			}
			if ok {
				log.Debug().
					Str("kind", d.Kind).
					Str("root", root).
					Str("template", name).
					Msg("Template resolved")
				metrics.RecordResolution(d.Kind, "hit")
				return Resolved{Root: root, Name: name}, nil
			}
		}
	}

	for _, root := range roots {
		ok, err := r.exists(ctx, root, r.fallback)
		if err != nil {
			return Resolved{}, fmt.Errorf("resolving fallback %q: %w", r.fallback, err)
		}
		if ok {
			log.Debug().
				Str("kind", d.Kind).
				Str("root", root).
				Str("template", r.fallback).
				Msg("Template resolved to fallback")
			metrics.RecordResolution(d.Kind, "fallback")
			return Resolved{Root: root, Name: r.fallback}, nil
		}
	}

	metrics.RecordResolution(d.Kind, "miss")
	return Resolved{}, fmt.Errorf("%w: kind %q type %q (fallback %q)",
		ErrTemplateNotFound, d.Kind, d.Type, r.fallback)
}

// Roots returns the current override roots, highest priority first.
func (r *Resolver) Roots() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.roots))
	copy(out, r.roots)
	return out
}

// SetRoots replaces the override roots and drops the existence cache.
func (r *Resolver) SetRoots(roots []string) {
	r.mu.Lock()
	r.roots = append([]string(nil), roots...)
	r.mu.Unlock()

	r.InvalidateCache()
}

// InvalidateCache drops all memoized existence checks. No-op when
// caching is disabled.
func (r *Resolver) InvalidateCache() {
	if r.cache == nil {
		return
	}
	r.cache.invalidate()

	log.Debug().Msg("Resolver existence cache invalidated")
}

func (r *Resolver) exists(ctx context.Context, root, name string) (bool, error) {
	if r.cache != nil {
		if exists, ok := r.cache.get(root, name); ok {
			metrics.RecordCacheLookup(true)
			return exists, nil
		}
		metrics.RecordCacheLookup(false)
	}

	exists, err := r.finder.Exists(ctx, root, name)
	if err != nil {
		return false, err
	}

	if r.cache != nil {
		r.cache.set(root, name, exists)
	}

	return exists, nil
}
