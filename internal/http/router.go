package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"lotto/internal/platform/metrics"
	"lotto/internal/platform/middleware"
	"lotto/pkg/platform/httputil"
)

// Registrar mounts a module's routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// NewRouter applies the shared middleware chain and mounts every module.
// /healthz runs each check and fails on the first error.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, checks map[string]HealthCheck, modules ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(logger, m))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		for name, check := range checks {
			if err := check(req.Context()); err != nil {
				logger.WarnContext(req.Context(), "health check failed", "dependency", name, "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "dependency": name})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	for _, module := range modules {
		module.Register(r)
	}
	return r
}
