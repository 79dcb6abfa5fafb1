package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the property service.
// Metrics are organized by subsystem: HTTP transport, property mutations,
// validation and the read cache.
//
// All Record* methods are safe to call on a nil *Metrics, which lets tests
// and tools run components without a registry.
type Metrics struct {
	// HTTPRequestsTotal counts handled requests, labeled by method, route pattern and status code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration observes request latency in seconds, labeled by method and route pattern.
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRateLimited counts requests rejected by the rate limiter.
	HTTPRateLimited prometheus.Counter

	// PropertiesCreated counts properties successfully created.
	PropertiesCreated prometheus.Counter

	// PropertiesUpdated counts properties successfully updated.
	PropertiesUpdated prometheus.Counter

	// PropertiesDeleted counts properties successfully deleted.
	PropertiesDeleted prometheus.Counter

	// ValidationFailures counts rejected payloads and ids, labeled by operation.
	ValidationFailures *prometheus.CounterVec

	// CacheHits counts property lookups served from the read cache.
	CacheHits prometheus.Counter

	// CacheMisses counts property lookups that fell through to the store.
	CacheMisses prometheus.Counter
}

// NewMetrics creates a new Metrics instance registered with the default
// Prometheus registry. The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return newMetrics(promauto.With(prometheus.DefaultRegisterer), namespace)
}

// NewMetricsWithRegistry creates a new Metrics instance registered with reg.
func NewMetricsWithRegistry(namespace string, reg prometheus.Registerer) *Metrics {
	return newMetrics(promauto.With(reg), namespace)
}

func newMetrics(factory promauto.Factory, namespace string) *Metrics {
	return &Metrics{
		// HTTP
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
		HTTPRateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rate_limited_total",
			Help:      "Total number of HTTP requests rejected by the rate limiter",
		}),

		// Properties
		PropertiesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "properties_created_total",
			Help:      "Total number of properties created",
		}),
		PropertiesUpdated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "properties_updated_total",
			Help:      "Total number of properties updated",
		}),
		PropertiesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "properties_deleted_total",
			Help:      "Total number of properties deleted",
		}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Total number of rejected requests by operation",
		}, []string{"operation"}),

		// Cache
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of property cache hits",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of property cache misses",
		}),
	}
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, durationSeconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

// RecordRateLimited records a request rejected by the rate limiter.
func (m *Metrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.HTTPRateLimited.Inc()
}

// RecordPropertyCreated records a created property.
func (m *Metrics) RecordPropertyCreated() {
	if m == nil {
		return
	}
	m.PropertiesCreated.Inc()
}

// RecordPropertyUpdated records an updated property.
func (m *Metrics) RecordPropertyUpdated() {
	if m == nil {
		return
	}
	m.PropertiesUpdated.Inc()
}

// RecordPropertyDeleted records a deleted property.
func (m *Metrics) RecordPropertyDeleted() {
	if m == nil {
		return
	}
	m.PropertiesDeleted.Inc()
}

// RecordValidationFailure records a rejected request for the given operation
// (list, get, create, update, delete).
func (m *Metrics) RecordValidationFailure(operation string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(operation).Inc()
}

// RecordCacheHit records a lookup served from the cache.
func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

// RecordCacheMiss records a lookup that missed the cache.
func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}
