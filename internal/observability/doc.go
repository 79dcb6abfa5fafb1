// Package observability provides logging and metrics support for the
// property service.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for HTTP traffic, property mutations and the read cache
//   - Context helpers for propagating request identifiers
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Int64("property_id", id).Msg("property created")
//
// Add request context to a logger:
//
//	logger = observability.WithRequestContext(logger, requestID, r.Method, r.URL.Path)
//
// # Metrics
//
// Initialize metrics against the default registry, or a private one in tests:
//
//	metrics := observability.NewMetrics("property_service")
//	metrics := observability.NewMetricsWithRegistry("test", prometheus.NewRegistry())
//
// Record metrics:
//
//	metrics.RecordHTTPRequest("GET", "/properties/{id}", 200, elapsed.Seconds())
//	metrics.RecordPropertyCreated()
//
// A nil *Metrics discards every recording.
//
// # Standard Fields
//
// Common fields used across the service:
//
//   - request_id: chi request identifier
//   - correlation_id: caller supplied or generated X-Correlation-ID
//   - operation: list, get, create, update or delete
//   - property_id: numeric property identifier
//   - route: chi route pattern of the matched handler
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
