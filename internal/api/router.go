package api

import (
	"net/http"

	"github.com/Rrens/nl2sql/internal/api/handler"
	customMiddleware "github.com/Rrens/nl2sql/internal/api/middleware"
	"github.com/Rrens/nl2sql/internal/config"
	"github.com/Rrens/nl2sql/internal/llm"
	"github.com/Rrens/nl2sql/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the wired components served by the router.
// RateLimiter, Cache and Ready entries are optional.
type Dependencies struct {
	Config            *config.Config
	Registry          *llm.Registry
	SQLService        *service.SQLService
	CorrectionService *service.CorrectionService
	RateLimiter       customMiddleware.Limiter
	Cache             handler.CacheFlusher
	Ready             map[string]handler.Pinger
}

// NewRouter creates and configures the HTTP router
func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Server.MiddlewareTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	sqlHandler := handler.NewSQLHandler(deps.SQLService)
	correctionHandler := handler.NewCorrectionHandler(deps.CorrectionService)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(deps.Ready))

		r.Group(func(r chi.Router) {
			if deps.RateLimiter != nil {
				r.Use(customMiddleware.NewRateLimitMiddleware(deps.RateLimiter).Limit)
			}

			r.Get("/models", handler.ListModels(cfg.Models, deps.Registry))

			r.Route("/sql", func(r chi.Router) {
				r.Post("/generate", sqlHandler.Generate)
				r.Post("/generate/batch", sqlHandler.GenerateBatch)
				r.Post("/explain", sqlHandler.Explain)
			})

			r.Route("/corrections", func(r chi.Router) {
				r.Post("/", correctionHandler.Create)

				r.Route("/{sessionID}", func(r chi.Router) {
					r.Get("/", correctionHandler.Get)
					r.Delete("/", correctionHandler.Delete)
					r.Post("/attempts", correctionHandler.Attempt)
					r.Get("/attempts", correctionHandler.ListAttempts)
				})
			})

			if deps.Cache != nil {
				r.Post("/cache/flush", handler.FlushCache(deps.Cache))
			}
		})
	})

	return r
}
