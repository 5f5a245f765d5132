package server

import (
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/watzon/tessera/internal/hooks"
	"github.com/watzon/tessera/internal/metrics"
	"github.com/watzon/tessera/internal/resolver"
)

// renderData is the execution context handed to templates.
type renderData struct {
	Descriptor resolver.Descriptor
	Template   resolver.Resolved
	Path       string
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	ctx := r.Context()

	desc := resolver.DescriptorFromPath(r.URL.Path)

	resolved, err := s.resolver.Resolve(ctx, desc)
	if err != nil {
		metrics.ObserveRender(time.Since(start), false)
		if errors.Is(err, resolver.ErrTemplateNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Resolution failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := s.registry.DispatchAction(ctx, hooks.HookBeforeTemplateRender, desc, resolved); err != nil {
		metrics.ObserveRender(time.Since(start), false)
		log.Error().Err(err).Str("hook", hooks.HookBeforeTemplateRender).Msg("Action failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	body, err := s.render(r, desc, resolved)
	if err != nil {
		metrics.ObserveRender(time.Since(start), false)
		log.Error().Err(err).Str("template", resolved.String()).Msg("Render failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// A filter error means no trustworthy content; abort rather than
	// serve the unfiltered body.
	filtered, err := s.registry.ApplyFilter(ctx, hooks.FilterContent, body)
	if err != nil {
		metrics.ObserveRender(time.Since(start), false)
		log.Error().Err(err).Str("hook", hooks.FilterContent).Msg("Content filter failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	out, ok := filtered.(string)
	if !ok {
		metrics.ObserveRender(time.Since(start), false)
		log.Error().Str("hook", hooks.FilterContent).Msg("Content filter returned non-string value")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if s.reload != nil {
		out = injectReloadScript(out)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(out))
	metrics.ObserveRender(time.Since(start), true)
}

func (s *Server) render(r *http.Request, desc resolver.Descriptor, resolved resolver.Resolved) (string, error) {
	raw, err := s.finder.Read(r.Context(), resolved.Root, resolved.Name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(resolved.Name).Parse(string(raw))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	err = tmpl.Execute(&sb, renderData{
		Descriptor: desc,
		Template:   resolved,
		Path:       r.URL.Path,
	})
	if err != nil {
		return "", err
	}

	return sb.String(), nil
}

const reloadScript = `<script>
(function() {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/livereload");
  ws.onmessage = function() { location.reload(); };
})();
</script>`

func injectReloadScript(body string) string {
	if i := strings.LastIndex(body, "</body>"); i >= 0 {
		return body[:i] + reloadScript + body[i:]
	}
	return body + reloadScript
}
