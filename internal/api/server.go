// Package api provides the HTTP server for dopamind.
// It maps the pipeline operations onto JSON routes under /api.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dopamind/dopamind/internal/app/pipeline"
	"github.com/dopamind/dopamind/internal/health"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

// Server is the dopamind HTTP API server.
type Server struct {
	engine         *pipeline.Engine
	checker        *health.Checker // nil until SetChecker
	version        string
	metricsEnabled bool
	corsOrigins    []string
	rateRequests   int
	rateWindow     time.Duration
	requestTimeout time.Duration
}

// NewServer creates a new API server around a shared engine.
func NewServer(engine *pipeline.Engine, version string) *Server {
	return &Server{
		engine:         engine,
		version:        version,
		corsOrigins:    []string{"*"},
		requestTimeout: 30 * time.Second,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetChecker attaches the health checker reported by /health.
func (s *Server) SetChecker(c *health.Checker) { s.checker = c }

// SetCORSOrigins sets the allowed CORS origins.
func (s *Server) SetCORSOrigins(origins []string) { s.corsOrigins = origins }

// SetRateLimit limits each client IP to n requests per window.
// n <= 0 disables rate limiting.
func (s *Server) SetRateLimit(n int, window time.Duration) {
	s.rateRequests = n
	s.rateWindow = window
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if s.rateRequests > 0 {
		r.Use(httprate.Limit(
			s.rateRequests,
			s.rateWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				writeError(w, http.StatusTooManyRequests, "Too many requests")
			}),
		))
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.Post("/process-reward", s.handleProcessReward)
		r.Get("/analytics/{userID}", s.handleAnalytics)
		r.Get("/insights", s.handleInsights)
		r.Post("/emotion-prediction", s.handlePredictEmotion)
		r.Post("/session-summary", s.handleSessionSummary)
		r.Post("/batch-process", s.handleBatchProcess)
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "Endpoint not found",
			"message": "The requested endpoint does not exist",
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
			"error":   "Method not allowed",
			"message": r.Method + " is not supported on " + r.URL.Path,
		})
	})

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a {"error": msg} response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeInternal writes the 500 body with the underlying message attached.
func writeInternal(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "Internal server error",
		"message": err.Error(),
	})
}
