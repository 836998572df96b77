package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kbmproject/kbm-backend/internal/config"
	"github.com/kbmproject/kbm-backend/internal/metrics"
	"github.com/kbmproject/kbm-backend/internal/transport/middleware"
	"github.com/kbmproject/kbm-backend/internal/transport/problem"
)

// RouterDeps are the collaborators of the gateway router. Metrics and
// RateLimiter may be nil.
type RouterDeps struct {
	Gateway     *Gateway
	Health      *HealthHandler
	Metrics     *metrics.Metrics
	RateLimiter *middleware.RateLimiter
	CORS        config.CORSConfig
	Logger      *slog.Logger
}

// NewRouter builds the public HTTP handler of the gateway.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(deps.Logger),
		middleware.Logger(deps.Logger),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(deps.CORS),
	)
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	mountOps(r, deps.Health, deps.Metrics)

	r.Route("/api", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}
		deps.Gateway.Routes(r)
	})
	return r
}

// NewOpsRouter serves health probes and metrics for the directory service.
func NewOpsRouter(health *HealthHandler, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID(), middleware.Recovery(logger))
	r.NotFound(notFound)
	mountOps(r, health, m)
	return r
}

func mountOps(r chi.Router, health *HealthHandler, m *metrics.Metrics) {
	r.Get("/health", health.Health)
	r.Get("/health/live", health.Live)
	r.Get("/health/ready", health.Ready)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	problem.Error(w, r, http.StatusNotFound, "no route for "+r.Method+" "+r.URL.Path)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem.Error(w, r, http.StatusMethodNotAllowed, "")
}
