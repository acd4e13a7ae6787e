package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/prometheus"
	"github.com/complyops/deadline-engine/internal/interfaces/http/handlers"
	"github.com/complyops/deadline-engine/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// ops route tree.
type RouterConfig struct {
	HealthHandler *handlers.HealthHandler
	StatsHandler  *handlers.StatsHandler

	Logger           logging.Logger
	LoggingConfig    middleware.LoggingConfig
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter builds the operational HTTP surface: probes, metrics and the
// counter snapshot.  The engine deliberately exposes no calculation API
// over HTTP; callers embed the domain packages directly.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, cfg.LoggingConfig))
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}

	if cfg.MetricsCollector != nil {
		r.Handle("/metrics", cfg.MetricsCollector.Handler())
	}

	if cfg.StatsHandler != nil {
		r.Get("/stats", cfg.StatsHandler.Stats)
	}

	return r
}
