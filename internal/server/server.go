// Package server is the theme preview server. Each request resolves a
// template for the URL, runs it through the hook lifecycle, and serves
// the result. A websocket endpoint notifies browsers when the watcher
// sees a theme change.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/watzon/tessera/internal/config"
	"github.com/watzon/tessera/internal/finder"
	"github.com/watzon/tessera/internal/hooks"
	"github.com/watzon/tessera/internal/metrics"
	"github.com/watzon/tessera/internal/resolver"
)

// Server serves rendered theme previews.
type Server struct {
	cfg      *config.Config
	registry *hooks.Registry
	resolver *resolver.Resolver
	finder   finder.ReadFinder
	reload   *ReloadHub

	httpServer *http.Server
}

// Option configures the server.
type Option func(*Server)

// WithReloadHub attaches a live-reload hub. Without one, /livereload
// responds 404 and no reload script is injected.
func WithReloadHub(hub *ReloadHub) Option {
	return func(s *Server) {
		s.reload = hub
	}
}

// New creates a preview server.
func New(cfg *config.Config, reg *hooks.Registry, res *resolver.Resolver, f finder.ReadFinder, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		registry: reg,
		resolver: res,
		finder:   f,
	}

	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/livereload", s.handleLivereload)
	mux.HandleFunc("/", s.handleRender)

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

// Start runs the server until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		log.Info().Str("addr", s.httpServer.Addr).Msg("Preview server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("preview server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.WriteTimeout)
	defer cancel()

	if s.reload != nil {
		s.reload.Close()
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down preview server: %w", err)
	}

	log.Info().Msg("Preview server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleLivereload(w http.ResponseWriter, r *http.Request) {
	if s.reload == nil {
		http.NotFound(w, r)
		return
	}
	s.reload.Handle(w, r)
}
