// Package metrics provides Prometheus metrics for the conTROLL service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager holds all Prometheus metrics for the service.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	// Scan pipeline metrics.
	scansTotal      *prometheus.CounterVec
	scanDuration    prometheus.Histogram
	searchQueries   prometheus.Counter
	urlsScraped     prometheus.Counter
	quotaExhausted  prometheus.Counter
	recordsMerged   prometheus.Counter
	criticsDetected prometheus.Counter

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace overrides the metric namespace.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// NewManager creates a metrics manager backed by its own registry, keeping
// default Go runtime collectors out of the scrape output.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "controll",
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.scansTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "scans_total",
		Help:      "Completed scans by outcome.",
	}, []string{"outcome"})

	m.scanDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "scan_duration_seconds",
		Help:      "Wall time of full alias scans.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	m.searchQueries = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "search_queries_total",
		Help:      "Search API queries issued.",
	})

	m.urlsScraped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "urls_scraped_total",
		Help:      "Pages fetched through the render endpoint.",
	})

	m.quotaExhausted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "quota_exhausted_total",
		Help:      "Scans degraded by an exhausted search budget.",
	})

	m.recordsMerged = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "records_merged_total",
		Help:      "Identity records merged on rescan.",
	})

	m.criticsDetected = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "critics_detected_total",
		Help:      "Scans that confirmed a critic.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, path, and status.",
	}, []string{"method", "path", "status"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and path.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	return m
}

// RecordScan records one completed scan.
func (m *Manager) RecordScan(outcome string, duration time.Duration) {
	m.scansTotal.WithLabelValues(outcome).Inc()
	m.scanDuration.Observe(duration.Seconds())
}

// RecordSearchQueries adds to the search query counter.
func (m *Manager) RecordSearchQueries(n int) {
	m.searchQueries.Add(float64(n))
}

// RecordScrapes adds to the scraped URL counter.
func (m *Manager) RecordScrapes(n int) {
	m.urlsScraped.Add(float64(n))
}

// RecordQuotaExhausted counts a scan degraded by quota exhaustion.
func (m *Manager) RecordQuotaExhausted() {
	m.quotaExhausted.Inc()
}

// RecordMerge counts a record merge on rescan.
func (m *Manager) RecordMerge() {
	m.recordsMerged.Inc()
}

// RecordCritic counts a confirmed critic.
func (m *Manager) RecordCritic() {
	m.criticsDetected.Inc()
}

// Handler returns the Prometheus scrape handler for this manager's registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware instruments an HTTP handler with request count and latency
// metrics. The path label uses the chi routing pattern when one is present,
// not the raw URL, to keep cardinality bounded; outside a chi router it
// falls back to the URL path.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		m.httpRequests.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
