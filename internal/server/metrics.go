package server

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/latentscope/pkg/observability"
)

const namespace = "latentscope"

// Metrics exports asset, cache and request activity to Prometheus. It
// implements the observability hook interfaces; install it with
// [Metrics.Install].
type Metrics struct {
	registry *prometheus.Registry

	fetches        *prometheus.CounterVec
	fetchDuration  prometheus.Histogram
	fetchBytes     prometheus.Counter
	lookups        *prometheus.CounterVec
	cacheEvents    *prometheus.CounterVec
	upstream       *prometheus.CounterVec
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_fetches_total",
			Help:      "Dataset asset reads by result.",
		}, []string{"result"}),
		fetchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "asset_fetch_duration_seconds",
			Help:      "Time to read one dataset asset.",
			Buckets:   prometheus.DefBuckets,
		}),
		fetchBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_bytes_total",
			Help:      "Bytes of dataset assets read.",
		}),
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconstruction_lookups_total",
			Help:      "Reconstruction lookups by status.",
		}, []string{"status"}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_cache_events_total",
			Help:      "Persistent asset cache hits, misses and writes.",
		}, []string{"event"}),
		upstream: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_responses_total",
			Help:      "Responses from the remote data directory by status code.",
		}, []string{"code"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Requests served by route and status code.",
		}, []string{"route", "code"}),
		requestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Registry returns the registry backing /metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Install routes the process-wide observability hooks to m.
func (m *Metrics) Install() {
	observability.SetFetchHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// OnFetchStart implements observability.FetchHooks.
func (m *Metrics) OnFetchStart(context.Context, string) {}

// OnFetchComplete implements observability.FetchHooks.
func (m *Metrics) OnFetchComplete(_ context.Context, _ string, size int, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.fetches.WithLabelValues(result).Inc()
	m.fetchDuration.Observe(d.Seconds())
	m.fetchBytes.Add(float64(size))
}

// OnLookup implements observability.FetchHooks.
func (m *Metrics) OnLookup(_ context.Context, status string) {
	m.lookups.WithLabelValues(status).Inc()
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(context.Context, string) { m.cacheEvents.WithLabelValues("hit").Inc() }

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(context.Context, string) { m.cacheEvents.WithLabelValues("miss").Inc() }

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(context.Context, string, int) { m.cacheEvents.WithLabelValues("set").Inc() }

// OnRequest implements observability.HTTPHooks.
func (m *Metrics) OnRequest(context.Context, string, string, string) {}

// OnResponse implements observability.HTTPHooks.
func (m *Metrics) OnResponse(_ context.Context, _, _, _ string, code int, _ time.Duration) {
	m.upstream.WithLabelValues(statusLabel(code)).Inc()
}

// OnError implements observability.HTTPHooks.
func (m *Metrics) OnError(context.Context, string, string, string, error) {
	m.upstream.WithLabelValues("error").Inc()
}

func (m *Metrics) observeRequest(route string, code int, d time.Duration) {
	m.requests.WithLabelValues(route, statusLabel(code)).Inc()
	m.requestLatency.WithLabelValues(route).Observe(d.Seconds())
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

var (
	_ observability.FetchHooks = (*Metrics)(nil)
	_ observability.CacheHooks = (*Metrics)(nil)
	_ observability.HTTPHooks  = (*Metrics)(nil)
)
