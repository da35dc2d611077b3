// Package server assembles the HTTP surface shared by the long-running
// server and the Lambda entry point.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vaseyai/reprompter/internal/gateway"
	"github.com/vaseyai/reprompter/internal/httputil"
	"github.com/vaseyai/reprompter/internal/ratelimit"
	"github.com/vaseyai/reprompter/internal/telemetry"
)

// Deps are the collaborators New wires into the router.
type Deps struct {
	Handler *gateway.Handler
	Logger  zerolog.Logger
	Metrics *telemetry.Metrics
	// Gatherer backs GET /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
	// Limiter guards POST /api/enhance. Nil disables rate limiting.
	Limiter           ratelimit.Checker
	RequestsPerMinute int
}

// New returns the service's HTTP handler.
func New(d Deps) http.Handler {
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Logger))
	r.Use(platformToken)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusNotFound, "Not found")
	})
	// Only the read-only routes can produce a chi-level 405.
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteMethodNotAllowed(w, http.MethodGet)
	})

	// Every method reaches the enhance handler so it can answer 405 itself.
	// Only POSTs count against the rate limit.
	r.Group(func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(postOnly(ratelimit.Middleware(d.Limiter, d.RequestsPerMinute, d.Metrics)))
		}
		r.HandleFunc("/api/enhance", d.Handler.Enhance)
	})

	r.Get("/api/models", d.Handler.ListModels)
	r.Get("/api/modes", d.Handler.ListModes)
	r.Get("/api/health", d.Handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))

	return r
}
