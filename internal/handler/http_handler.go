package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/profile-service/internal/middleware"
	"github.com/SARVESHVARADKAR123/profile-service/internal/observability"
)

type RouterConfig struct {
	ServiceName       string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewRouter builds the public HTTP router. Data routes are gated on database
// readiness.
func NewRouter(cfg RouterConfig, svc ProfileService, rd middleware.Readiness, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(observability.MetricsMiddleware(cfg.ServiceName))
	r.Use(observability.AccessLog(log))
	r.Use(middleware.Recovery(log))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not Found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method Not Allowed"})
	})

	r.Get("/", Landing)
	r.Get("/health", Health(rd, time.Now))

	ph := NewProfileHandler(svc, log)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		api.Use(middleware.RequireReady(rd))

		api.Get("/profile", ph.Get)
		api.Post("/update-profile", ph.Update)
		api.Get("/users", ph.List)
	})

	return otelhttp.NewHandler(r, cfg.ServiceName)
}
