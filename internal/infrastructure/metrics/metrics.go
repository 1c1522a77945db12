// Package metrics exports Prometheus metrics for the relay.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/savetide/backend/internal/domain"
)

const namespace = "savetide"

// Metrics holds the relay's Prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	// Comparison metrics
	Comparisons        *prometheus.CounterVec
	ComparisonDuration *prometheus.HistogramVec
	OffersReceived     prometheus.Counter
	OffersReturned     prometheus.Counter
	OffersDuplicate    prometheus.Counter
	OffersRejected     *prometheus.CounterVec

	// Dependency metrics
	ProviderErrors *prometheus.CounterVec
	CacheLookups   *prometheus.CounterVec
	BarcodeLookups *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates the metric set with Go runtime and process collectors attached
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{registry: reg}
	factory := promauto.With(reg)
	initComparisonMetrics(m, factory)
	initDependencyMetrics(m, factory)
	initHTTPMetrics(m, factory)
	return m
}

func initComparisonMetrics(m *Metrics, factory promauto.Factory) {
	m.Comparisons = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comparisons_total",
		Help:      "Comparisons answered, by result source (provider, cache)",
	}, []string{"source"})

	m.ComparisonDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "comparison_duration_seconds",
		Help:      "Time to answer a comparison",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"source"})

	m.OffersReceived = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "offers_received_total",
		Help:      "Raw offers received from the shopping provider",
	})

	m.OffersReturned = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "offers_returned_total",
		Help:      "Ranked offers returned to callers",
	})

	m.OffersDuplicate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "offers_duplicate_total",
		Help:      "Accepted offers folded into an existing merchant entry",
	})

	m.OffersRejected = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "offers_rejected_total",
		Help:      "Raw offers dropped by the pipeline, by reason",
	}, []string{"reason"})
}

func initDependencyMetrics(m *Metrics, factory promauto.Factory) {
	m.ProviderErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_errors_total",
		Help:      "Shopping provider failures degraded to empty results",
	}, []string{"reason"})

	m.CacheLookups = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Comparison cache lookups, by result (hit, miss)",
	}, []string{"result"})

	m.BarcodeLookups = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "barcode_lookups_total",
		Help:      "Barcode lookups, by outcome",
	}, []string{"outcome"})
}

func initHTTPMetrics(m *Metrics, factory promauto.Factory) {
	m.HTTPRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests, by method, route and status",
	}, []string{"method", "route", "status"})

	m.HTTPDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
}

// RecordComparison implements domain.MetricsRecorder
func (m *Metrics) RecordComparison(source string, report domain.PipelineReport, duration time.Duration) {
	m.Comparisons.WithLabelValues(source).Inc()
	m.ComparisonDuration.WithLabelValues(source).Observe(duration.Seconds())
	m.OffersReceived.Add(float64(report.Received))
	m.OffersReturned.Add(float64(report.Returned))
	m.OffersDuplicate.Add(float64(report.Duplicates))
	for reason, n := range report.Rejected {
		m.OffersRejected.WithLabelValues(string(reason)).Add(float64(n))
	}
}

// RecordProviderError implements domain.MetricsRecorder
func (m *Metrics) RecordProviderError(reason string) {
	m.ProviderErrors.WithLabelValues(reason).Inc()
}

// RecordCacheLookup implements domain.MetricsRecorder
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// RecordBarcodeLookup implements domain.MetricsRecorder
func (m *Metrics) RecordBarcodeLookup(outcome string) {
	m.BarcodeLookups.WithLabelValues(outcome).Inc()
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency per matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
