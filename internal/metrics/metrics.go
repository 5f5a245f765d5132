// Package metrics exposes Prometheus instrumentation for the engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	hookDispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tessera_hook_dispatches_total",
			Help: "Total number of hook dispatches",
		},
		[]string{"hook", "kind", "status"},
	)

	templateResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tessera_template_resolutions_total",
			Help: "Total number of template resolutions by outcome",
		},
		[]string{"kind", "outcome"},
	)

	resolverCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tessera_resolver_cache_total",
			Help: "Existence cache lookups by result",
		},
		[]string{"result"},
	)

	renderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tessera_render_duration_seconds",
			Help:    "Template render latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"status"},
	)

	livereloadClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tessera_livereload_clients",
			Help: "Number of connected live-reload clients",
		},
	)
)

// RecordDispatch records a hook dispatch outcome.
func RecordDispatch(hook, kind string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	hookDispatchesTotal.WithLabelValues(hook, kind, status).Inc()
}

// RecordResolution records a template resolution outcome. Outcome is
// one of "hit", "fallback", or "miss".
func RecordResolution(kind, outcome string) {
	templateResolutionsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordCacheLookup records an existence-cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	resolverCacheTotal.WithLabelValues(result).Inc()
}

// ObserveRender records the latency of one render request.
func ObserveRender(d time.Duration, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	renderDuration.WithLabelValues(status).Observe(d.Seconds())
}

// LivereloadClientConnected increments the connected client gauge.
func LivereloadClientConnected() {
	livereloadClients.Inc()
}

// LivereloadClientDisconnected decrements the connected client gauge.
func LivereloadClientDisconnected() {
	livereloadClients.Dec()
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
