package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/parrot-platform/parrot/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Memory handlers
	Answer        http.HandlerFunc
	InsertRecords http.HandlerFunc
	Search        http.HandlerFunc
	Window        http.HandlerFunc
	History       http.HandlerFunc

	// Capture upload
	UploadAudio http.HandlerFunc

	// Auth middleware
	AuthMiddleware func(http.Handler) http.Handler
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	AnswerRateLimiter  func(http.Handler) http.Handler

	// Readiness checks by dependency name. A nil check is reported as "not configured".
	Checks map[string]HealthCheck
}

func NewRouter(cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe: always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{"status": "healthy"}
		status := http.StatusOK

		for name, check := range cfg.Checks {
			if check == nil {
				health[name] = "not configured"
				continue
			}
			if err := check(r.Context()); err != nil {
				health[name] = "unhealthy"
				health["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			health[name] = "healthy"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		r.Group(func(r chi.Router) {
			if cfg.AnswerRateLimiter != nil {
				r.Use(cfg.AnswerRateLimiter)
			}
			r.Post("/answer", h.Answer)
		})

		r.Route("/memories", func(r chi.Router) {
			r.Post("/", h.InsertRecords)
			r.Post("/search", h.Search)
			r.Get("/window", h.Window)
		})

		r.Get("/history", h.History)
		r.Post("/audio", h.UploadAudio)
	})

	return r
}
