package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/watzon/tessera/internal/config"
	"github.com/watzon/tessera/internal/finder"
	"github.com/watzon/tessera/internal/hooks"
	"github.com/watzon/tessera/internal/resolver"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Themes.Active = "test"
	return cfg
}

func testServer(t *testing.T, f finder.ReadFinder, reg *hooks.Registry, opts ...Option) *Server {
	t.Helper()

	rules := resolver.RuleTable{
		resolver.KindSingular: {
			"{type}-{path_slug}.html",
			"{type}-{type_slug}.html",
			"{type}.html",
		},
		resolver.KindIndex: {"home.html"},
	}
	res := resolver.New(f, rules, []string{"child", "parent"})

	return New(testConfig(), reg, res, f, opts...)
}

func TestServer_RenderResolvedTemplate(t *testing.T) {
	f := finder.NewMemory()
	f.Add("parent", "page-about.html", []byte("<html><body>about {{.Path}}</body></html>"))

	srv := testServer(t, f, hooks.NewRegistry())

	rec := httptest.NewRecorder()
	srv.handleRender(rec, httptest.NewRequest(http.MethodGet, "/about", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "about /about")
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestServer_SpecificityAcrossRoots(t *testing.T) {
	// parent holds the specific template, child only the generic
	// one: the specific template wins regardless of root priority.
	f := finder.NewMemory()
	f.Add("parent", "page-about.html", []byte("specific"))
	f.Add("child", "page.html", []byte("generic"))

	srv := testServer(t, f, hooks.NewRegistry())

	rec := httptest.NewRecorder()
	srv.handleRender(rec, httptest.NewRequest(http.MethodGet, "/about", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "specific", rec.Body.String())
}

func TestServer_NotFoundWhenNothingResolves(t *testing.T) {
	srv := testServer(t, finder.NewMemory(), hooks.NewRegistry())

	rec := httptest.NewRecorder()
	srv.handleRender(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_BeforeRenderActionRuns(t *testing.T) {
	f := finder.NewMemory()
	f.Add("child", "home.html", []byte("home"))

	reg := hooks.NewRegistry()
	var gotDesc resolver.Descriptor
	_, err := reg.AddAction(hooks.HookBeforeTemplateRender, func(ctx context.Context, args ...any) error {
		gotDesc = args[0].(resolver.Descriptor)
		return nil
	})
	require.NoError(t, err)

	srv := testServer(t, f, reg)

	rec := httptest.NewRecorder()
	srv.handleRender(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, resolver.KindIndex, gotDesc.Kind)
}

func TestServer_ActionFailureAborts(t *testing.T) {
	f := finder.NewMemory()
	f.Add("child", "home.html", []byte("home"))

	reg := hooks.NewRegistry()
	_, err := reg.AddAction(hooks.HookBeforeTemplateRender, func(ctx context.Context, args ...any) error {
		return errors.New("refused")
	})
	require.NoError(t, err)

	srv := testServer(t, f, reg)

	rec := httptest.NewRecorder()
	srv.handleRender(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_ContentFilterTransformsBody(t *testing.T) {
	f := finder.NewMemory()
	f.Add("child", "home.html", []byte("raw body"))

	reg := hooks.NewRegistry()
	_, err := reg.AddFilter(hooks.FilterContent, func(ctx context.Context, value any, args ...any) (any, error) {
		return strings.ToUpper(value.(string)), nil
	})
	require.NoError(t, err)

	srv := testServer(t, f, reg)

	rec := httptest.NewRecorder()
	srv.handleRender(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "RAW BODY", rec.Body.String())
}

func TestServer_ContentFilterFailureAborts(t *testing.T) {
	f := finder.NewMemory()
	f.Add("child", "home.html", []byte("raw body"))

	reg := hooks.NewRegistry()
	_, err := reg.AddFilter(hooks.FilterContent, func(ctx context.Context, value any, args ...any) (any, error) {
		return nil, errors.New("no content for you")
	})
	require.NoError(t, err)

	srv := testServer(t, f, reg)

	rec := httptest.NewRecorder()
	srv.handleRender(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// The unfiltered body must not leak out.
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "raw body")
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := testServer(t, finder.NewMemory(), hooks.NewRegistry())

	rec := httptest.NewRecorder()
	srv.handleRender(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_ReloadScriptInjectedOnlyWithHub(t *testing.T) {
	f := finder.NewMemory()
	f.Add("child", "home.html", []byte("<html><body>home</body></html>"))

	plain := testServer(t, f, hooks.NewRegistry())
	rec := httptest.NewRecorder()
	plain.handleRender(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotContains(t, rec.Body.String(), "/livereload")

	withHub := testServer(t, f, hooks.NewRegistry(), WithReloadHub(NewReloadHub()))
	rec = httptest.NewRecorder()
	withHub.handleRender(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	body := rec.Body.String()
	require.Contains(t, body, "/livereload")
	// Injected before the closing body tag.
	require.Less(t, strings.Index(body, "/livereload"), strings.Index(body, "</body>"))
}

func TestServer_HealthEndpoint(t *testing.T) {
	srv := testServer(t, finder.NewMemory(), hooks.NewRegistry())

	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))
}

func TestServer_MetricsEndpoint(t *testing.T) {
	srv := testServer(t, finder.NewMemory(), hooks.NewRegistry())

	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInjectReloadScript_WithoutBodyTag(t *testing.T) {
	out := injectReloadScript("no markup at all")
	require.True(t, strings.HasPrefix(out, "no markup at all"))
	require.Contains(t, out, "/livereload")
}
