package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/vaseyai/reprompter/internal/catalog"
	"github.com/vaseyai/reprompter/internal/config"
	"github.com/vaseyai/reprompter/internal/filter"
	"github.com/vaseyai/reprompter/internal/filter/injection"
	"github.com/vaseyai/reprompter/internal/filter/policy"
	"github.com/vaseyai/reprompter/internal/filter/secrets"
	"github.com/vaseyai/reprompter/internal/gateway"
	"github.com/vaseyai/reprompter/internal/ratelimit"
	"github.com/vaseyai/reprompter/internal/router"
	"github.com/vaseyai/reprompter/internal/telemetry"
	"github.com/vaseyai/reprompter/internal/validate"
)

// BuildOptions tune Build for the hosting binary.
type BuildOptions struct {
	Version string
	// Registry receives the service metrics and backs /metrics. Nil uses
	// the prometheus default registry.
	Registry *prometheus.Registry
}

// App is a fully wired service.
type App struct {
	Handler http.Handler
	Router  *router.Router
	closers []func() error
}

// Close releases connections opened by Build.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Build wires every component from cfg. Background work such as policy
// watching stops when ctx is done.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts BuildOptions) (*App, error) {
	var (
		reg      prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if opts.Registry != nil {
		reg, gatherer = opts.Registry, opts.Registry
	}
	metrics := telemetry.NewMetrics(reg)
	app := &App{}

	cat := catalog.Default()
	if len(cfg.Models) > 0 {
		var err error
		if cat, err = catalog.FromConfig(cfg.Models); err != nil {
			return nil, fmt.Errorf("build model catalog: %w", err)
		}
	}

	rt, err := router.BuildFromConfig(ctx, cfg, metrics)
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}
	app.Router = rt

	chain, err := buildFilterChain(ctx, cfg.Filter, logger)
	if err != nil {
		return nil, err
	}

	var limiter ratelimit.Checker
	if rdb := ratelimit.NewRedisClient(cfg.Redis); rdb != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn().Err(err).Msg("redis not reachable (rate limiting disabled)")
			_ = rdb.Close()
		} else {
			logger.Info().Strs("addresses", cfg.Redis.Addresses).Msg("redis connected")
			limiter = ratelimit.NewLimiter(rdb)
			app.closers = append(app.closers, rdb.Close)
		}
	}

	handler := gateway.NewHandler(gateway.Options{
		Router:  rt,
		Catalog: cat,
		Limits: validate.Limits{
			MaxPromptLength: cfg.Limits.MaxPromptLength,
			MaxImageBytes:   cfg.Limits.MaxImageBytes,
		},
		MaxBodyBytes: cfg.Limits.MaxBodyBytes,
		FilterChain:  chain,
		Metrics:      metrics,
		Version:      opts.Version,
	})

	app.Handler = New(Deps{
		Handler:           handler,
		Logger:            logger,
		Metrics:           metrics,
		Gatherer:          gatherer,
		Limiter:           limiter,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
	})

	providers := make([]string, 0)
	for _, p := range rt.Providers() {
		providers = append(providers, string(p))
	}
	logger.Info().
		Bool("gateway", rt.GatewayEligible()).
		Strs("providers", providers).
		Dur("upstream_timeout", cfg.Routing.UpstreamTimeout).
		Msg("routing configured")

	return app, nil
}

func buildFilterChain(ctx context.Context, cfg config.FilterConfig, logger zerolog.Logger) (*filter.Chain, error) {
	var evaluator filter.Filter
	if cfg.Policy.Enabled {
		e := policy.NewEvaluator(cfg.Policy, logger)
		if err := e.Load(ctx); err != nil {
			return nil, fmt.Errorf("load policies: %w", err)
		}
		if cfg.Policy.Watch {
			if err := e.Watch(ctx); err != nil {
				return nil, err
			}
		}
		evaluator = e
	}

	return filter.NewChain(
		secrets.NewScanner(cfg.Secrets),
		injection.NewScanner(cfg.Injection),
		evaluator,
	), nil
}
