package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/optaimi/pulse/internal/api/handlers"
	"github.com/optaimi/pulse/internal/api/middleware"
	"github.com/optaimi/pulse/internal/config"
	"github.com/optaimi/pulse/internal/pkg/logger"
	"github.com/optaimi/pulse/internal/pkg/metrics"
)

// Handlers bundles every endpoint group the router mounts
type Handlers struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Alert     *handlers.AlertHandler
	Metric    *handlers.MetricHandler
	Settings  *handlers.SettingsHandler
	Scheduler *handlers.SchedulerHandler
}

// New builds the HTTP router
func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(metrics.Middleware)
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))
	r.Use(middleware.RateLimit(100, 200)) // 100 req/sec, burst of 200

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/health", h.Health.Healthz)
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)
		r.Method(http.MethodGet, "/metrics", metrics.Handler())

		r.Post("/api/auth/register", h.Auth.Register)
		r.Post("/api/auth/login", h.Auth.Login)
		r.Post("/api/auth/logout", h.Auth.Logout)

		// External cron trigger, guarded by the cron token
		r.Post("/api/scheduler/run", h.Scheduler.Run)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth.JWTSecret))

		r.Get("/api/auth/me", h.Auth.Me)

		r.Route("/api/alerts", func(r chi.Router) {
			r.Get("/", h.Alert.List)
			r.Post("/", h.Alert.Create)
			r.Post("/test", h.Alert.Test)
			r.Get("/{id}", h.Alert.Get)
			r.Put("/{id}", h.Alert.Update)
			r.Delete("/{id}", h.Alert.Delete)
		})

		r.Get("/api/history", h.Metric.History)
		r.Get("/api/models", h.Metric.Models)
		r.Get("/api/run-test", h.Metric.RunTest)

		r.Get("/api/settings", h.Settings.Get)
		r.Put("/api/settings", h.Settings.Update)
	})

	return r
}
