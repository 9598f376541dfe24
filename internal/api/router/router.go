package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sentinelops/sentinel/internal/api/handlers"
	"github.com/sentinelops/sentinel/internal/api/middleware"
	"github.com/sentinelops/sentinel/internal/config"
	"github.com/sentinelops/sentinel/internal/pkg/logger"
	"github.com/sentinelops/sentinel/internal/pkg/metrics"
)

type Handlers struct {
	Health       *handlers.HealthHandler
	Event        *handlers.EventHandler
	Alert        *handlers.AlertHandler
	Correlation  *handlers.CorrelationHandler
	Notification *handlers.NotificationHandler
}

func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(metrics.Middleware)
	r.Use(middleware.RateLimit(100, 200)) // 100 req/sec, burst of 200

	// Health and metrics
	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/events", h.Event.Ingest)

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", h.Alert.List)
			r.Get("/summary", h.Alert.Summary)
			r.Get("/{id}", h.Alert.Get)
			r.Post("/{id}/ack", h.Alert.Acknowledge)
			r.Post("/{id}/resolve", h.Alert.Resolve)
		})

		r.Post("/correlations/{id}/feedback", h.Correlation.Feedback)

		r.Get("/notifications", h.Notification.List)
	})

	return r
}
