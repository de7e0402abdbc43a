package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"secretsanta/internal/activity/handler"
	"secretsanta/internal/platform/metrics"
	"secretsanta/internal/platform/middleware"
	"secretsanta/pkg/platform/httputil"
	"secretsanta/pkg/platform/middleware/credentials"
	"secretsanta/pkg/platform/middleware/metadata"
	"secretsanta/pkg/platform/middleware/requesttime"
)

const (
	requestTimeout = 30 * time.Second
	healthTimeout  = 2 * time.Second
)

type healthCheck struct {
	name  string
	check func(ctx context.Context) error
}

type routerDeps struct {
	logger   *slog.Logger
	handler  *handler.Handler
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	checks   []healthCheck
}

func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.logger))
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.LatencyMiddleware(deps.metrics))

	r.Get("/health", healthHandler(deps.checks))
	r.Handle("/metrics", promhttp.HandlerFor(deps.gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Use(middleware.ContentTypeJSON)
		r.Use(credentials.Extract)
		deps.handler.Register(r)
	})
	return r
}

// healthHandler reports 503 when any dependency check fails.
func healthHandler(checks []healthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for _, c := range checks {
			if err := c.check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[c.name] = "unavailable"
				continue
			}
			body[c.name] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
