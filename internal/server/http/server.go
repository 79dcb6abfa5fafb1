// Package httpserver provides the HTTP REST API server for the property service.
package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/helixir/property-service/internal/database"
	"github.com/helixir/property-service/internal/domain"
	"github.com/helixir/property-service/internal/observability"
	"github.com/helixir/property-service/internal/repository"
)

// PropertyService is the set of property operations the handlers call.
type PropertyService interface {
	List(ctx context.Context, filter repository.PropertyFilter) ([]*domain.Property, error)
	Get(ctx context.Context, id int64) (*domain.Property, error)
	Create(ctx context.Context, in domain.PropertyInput) (*domain.Property, error)
	Update(ctx context.Context, id int64, in domain.PropertyInput) (*domain.Property, error)
	Delete(ctx context.Context, id int64) error
}

// HealthChecker reports store health. Both database.DB and database.MySQL
// satisfy it.
type HealthChecker interface {
	Health(ctx context.Context) database.HealthStatus
}

// Server is the HTTP REST API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	properties PropertyService
	health     HealthChecker
	metrics    *observability.Metrics
	limiter    *ClientRateLimiter
	logger     zerolog.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// RateLimitRPS and RateLimitBurst configure the per-client limiter.
	// A zero RateLimitRPS disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewServer creates a new HTTP server with all dependencies.
// health may be nil for stores without a connection (the memory store);
// metrics may be nil.
func NewServer(
	cfg Config,
	properties PropertyService,
	health HealthChecker,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		properties: properties,
		health:     health,
		metrics:    metrics,
		logger:     logger.With().Str("component", "http-server").Logger(),
	}
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = NewClientRateLimiter(cfg.RateLimitRPS, burst)
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLogMiddleware(s.logger))
	r.Use(metricsMiddleware(s.metrics))
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)
	r.Use(jsonContentTypeMiddleware)

	// Health endpoints (not rate limited)
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/properties", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(rateLimitMiddleware(s.limiter, s.metrics))
		}

		r.Get("/", s.listProperties)
		r.Post("/", s.createProperty)
		r.Get("/{id}", s.getProperty)
		r.Put("/{id}", s.updateProperty)
		r.Delete("/{id}", s.deleteProperty)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// storeHealth pings the store, treating a missing checker as healthy.
func (s *Server) storeHealth(ctx context.Context) database.HealthStatus {
	if s.health == nil {
		return database.HealthStatus{Status: database.StatusHealthy}
	}
	return s.health.Health(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := s.storeHealth(r.Context())
	if health.Status == database.StatusHealthy {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": health.Status})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status":   "unhealthy",
		"database": health.Status,
		"error":    health.Error,
	})
}

// readinessHandler returns readiness status.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	health := s.storeHealth(r.Context())
	if health.Status != database.StatusHealthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": database.StatusHealthy,
	})
}
