package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/observability"
)

// Metrics implements the observability hooks on Prometheus collectors.
type Metrics struct {
	resolves        *prometheus.CounterVec
	resolveDuration prometheus.Histogram
	resolveNodes    prometheus.Histogram
	renders         *prometheus.CounterVec
	renderDuration  *prometheus.HistogramVec
	exports         *prometheus.CounterVec
	exportDuration  *prometheus.HistogramVec
	exportBytes     *prometheus.HistogramVec
	cacheEvents     *prometheus.CounterVec
	cacheBytes      prometheus.Counter
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

// NewMetrics registers the pedigree collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		resolves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pedigree_resolves_total",
			Help: "Ancestry resolutions by result code.",
		}, []string{"code"}),
		resolveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pedigree_resolve_duration_seconds",
			Help:    "Time spent resolving an ancestry tree.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		resolveNodes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pedigree_resolve_nodes",
			Help:    "Nodes in resolved ancestry trees.",
			Buckets: []float64{1, 3, 7, 15, 31, 63},
		}),
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pedigree_renders_total",
			Help: "Captures by format and result code.",
		}, []string{"format", "code"}),
		renderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pedigree_render_duration_seconds",
			Help:    "Time spent capturing a view.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"format"}),
		exports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pedigree_exports_total",
			Help: "Exports by format and result code.",
		}, []string{"format", "code"}),
		exportDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pedigree_export_duration_seconds",
			Help:    "End-to-end export time.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"format"}),
		exportBytes: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pedigree_export_bytes",
			Help:    "Size of exported artifacts.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}, []string{"format"}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pedigree_cache_events_total",
			Help: "Artifact cache hits, misses and writes.",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "pedigree_cache_written_bytes_total",
			Help: "Bytes written to the artifact cache.",
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pedigree_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pedigree_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Install registers m as the process-wide hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func resultCode(err error) string {
	if err == nil {
		return "ok"
	}
	if code := errors.GetCode(err); code != "" {
		return string(code)
	}
	return string(errors.ErrCodeInternal)
}

func (m *Metrics) OnResolveStart(context.Context, string, int) {}

func (m *Metrics) OnResolveComplete(_ context.Context, _ string, nodes int, d time.Duration, err error) {
	m.resolves.WithLabelValues(resultCode(err)).Inc()
	m.resolveDuration.Observe(d.Seconds())
	if err == nil {
		m.resolveNodes.Observe(float64(nodes))
	}
}

func (m *Metrics) OnRenderStart(context.Context, string, int) {}

func (m *Metrics) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	m.renders.WithLabelValues(format, resultCode(err)).Inc()
	m.renderDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (m *Metrics) OnExportStart(context.Context, string) {}

func (m *Metrics) OnExportComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	m.exports.WithLabelValues(format, resultCode(err)).Inc()
	m.exportDuration.WithLabelValues(format).Observe(d.Seconds())
	if err == nil {
		m.exportBytes.WithLabelValues(format).Observe(float64(size))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.Add(float64(size))
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// instrument reports every response to the HTTP hooks, labelled with the
// matched route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, time.Since(start))
	})
}
