// Package httptransport assembles the public HTTP surface: the shared
// middleware chain, operational endpoints and every module's routes.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rentwise/internal/platform/metrics"
	"rentwise/pkg/platform/httputil"
	authmw "rentwise/pkg/platform/middleware/auth"
	"rentwise/pkg/platform/middleware/metadata"
	"rentwise/pkg/platform/middleware/request"
	"rentwise/pkg/platform/middleware/requesttime"
)

const healthProbeTimeout = 2 * time.Second

// RouteRegistrar is implemented by each module handler.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// Dependencies collects what the router needs from main.
type Dependencies struct {
	Validator      authmw.JWTValidator
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	HealthChecks   map[string]HealthCheck
	// RequestTimeout bounds module handlers through the request context.
	RequestTimeout time.Duration
	// WriteLimit, when set, runs after authentication on every module route.
	WriteLimit func(http.Handler) http.Handler
	Modules    []RouteRegistrar
}

// NewRouter wires operational endpoints without authentication and every
// module route behind bearer-token auth.
func NewRouter(logger *slog.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Logger(logger))
	r.Use(metrics.LatencyMiddleware(deps.Metrics))

	r.Get("/health", healthHandler(logger, deps.HealthChecks))
	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Group(func(api chi.Router) {
		if deps.RequestTimeout > 0 {
			api.Use(chimw.Timeout(deps.RequestTimeout))
		}
		api.Use(authmw.RequireAuth(deps.Validator, logger))
		if deps.WriteLimit != nil {
			api.Use(deps.WriteLimit)
		}
		for _, m := range deps.Modules {
			m.Register(api)
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(logger *slog.Logger, checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.ErrorContext(ctx, "health probe failed", "dependency", name, "error", err)
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
