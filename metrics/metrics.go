// Package metrics exposes Prometheus counters and histograms for the
// sourcing service. A nil *Manager is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Normalization outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
)

type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	rfqSubmissions     prometheus.Counter
	matchCount         prometheus.Histogram
	directoryErrors    prometheus.Counter
	quoteNormalized    *prometheus.CounterVec
	completionLatency  *prometheus.HistogramVec
	httpRequests       *prometheus.CounterVec
	httpRequestLatency *prometheus.HistogramVec
}

type Option func(*Manager)

func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRegistry registers metrics on registry instead of a fresh one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "sourcing",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.rfqSubmissions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "rfq_submissions_total",
		Help:      "Total number of RFQs submitted",
	})

	m.matchCount = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "rfq_matched_partners",
		Help:      "Number of manufacturers matched per RFQ",
		Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
	})

	m.directoryErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "partner_directory_errors_total",
		Help:      "Partner directory lookups that failed during matching",
	})

	m.quoteNormalized = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "quote_normalizations_total",
		Help:      "Quote normalizations by outcome",
	}, []string{"outcome"})

	m.completionLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "completion_latency_seconds",
		Help:      "Latency of language model completion calls",
		Buckets:   m.histogramBuckets,
	}, []string{"provider"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
}

func (m *Manager) RecordRFQSubmitted() {
	if m == nil {
		return
	}
	m.rfqSubmissions.Inc()
}

func (m *Manager) RecordMatchCount(n int) {
	if m == nil {
		return
	}
	m.matchCount.Observe(float64(n))
}

func (m *Manager) RecordDirectoryError() {
	if m == nil {
		return
	}
	m.directoryErrors.Inc()
}

func (m *Manager) RecordQuoteNormalized(outcome string) {
	if m == nil {
		return
	}
	m.quoteNormalized.WithLabelValues(outcome).Inc()
}

func (m *Manager) RecordCompletion(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.completionLatency.WithLabelValues(provider).Observe(d.Seconds())
}

// Middleware counts and times requests by route template, so /api/rfqs/:id
// is one series regardless of the id.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.httpRequests.WithLabelValues(endpoint, c.Request.Method, status).Inc()
		m.httpRequestLatency.WithLabelValues(endpoint, c.Request.Method, status).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}
