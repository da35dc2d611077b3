// Package router decides which upstream path serves an enhancement request.
//
// The gateway is always tried first when eligible. A gateway failure falls
// through to the direct provider only when that provider has a credential;
// the direct outcome is then final. No attempt is retried.
package router

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaseyai/reprompter/internal/catalog"
	"github.com/vaseyai/reprompter/internal/router/adapters"
	"github.com/vaseyai/reprompter/internal/telemetry"
	"github.com/vaseyai/reprompter/internal/types"
)

// Path names the transport an attempt used.
type Path string

const (
	PathGateway Path = "gateway"
	PathDirect  Path = "direct"
)

// Route is one request ready to be sent upstream.
type Route struct {
	Model  catalog.ModelConfig
	System string
	User   string
	Image  *types.Image
}

// Attempt is the explicit outcome of one adapter call. Exactly one of Text
// and Err is meaningful.
type Attempt struct {
	Path     Path
	Text     string
	Err      error
	Duration time.Duration
}

// Result is a successful enhancement plus every attempt that led to it.
type Result struct {
	Text     string
	Path     Path
	Attempts []Attempt
}

// Router holds immutable routing state and is safe for concurrent use.
type Router struct {
	gateway adapters.Adapter
	direct  *Registry
	timeout time.Duration
	metrics *telemetry.Metrics
}

// New returns a Router. A nil gateway means the gateway is not eligible.
// A non-positive timeout leaves attempts bounded only by ctx.
func New(gateway adapters.Adapter, direct *Registry, timeout time.Duration, metrics *telemetry.Metrics) *Router {
	if direct == nil {
		direct = NewRegistry()
	}
	return &Router{gateway: gateway, direct: direct, timeout: timeout, metrics: metrics}
}

// GatewayEligible reports whether requests are sent to the gateway first.
func (r *Router) GatewayEligible() bool { return r.gateway != nil }

// Providers lists providers with a direct credential.
func (r *Router) Providers() []types.Provider { return r.direct.Providers() }

// Enhance runs the routing state machine for one request.
func (r *Router) Enhance(ctx context.Context, route Route) (Result, error) {
	provider := route.Model.Provider
	direct, hasDirect := r.direct.Get(provider)

	if r.gateway == nil && !hasDirect {
		return Result{}, &ConfigError{Provider: provider}
	}

	logger := zerolog.Ctx(ctx)
	var res Result

	if r.gateway != nil {
		att := r.attempt(ctx, PathGateway, r.gateway, route.Model.GatewayModelID, route)
		res.Attempts = append(res.Attempts, att)
		if att.Err == nil {
			res.Text, res.Path = att.Text, PathGateway
			return res, nil
		}
		if !hasDirect {
			return res, &UpstreamError{Attempts: res.Attempts}
		}
		logger.Warn().Err(att.Err).
			Str("provider", string(provider)).
			Msg("gateway attempt failed, falling back to direct provider")
		r.metrics.RecordFallback(string(provider))
	}

	att := r.attempt(ctx, PathDirect, direct, route.Model.ModelID, route)
	res.Attempts = append(res.Attempts, att)
	if att.Err != nil {
		return res, &UpstreamError{Attempts: res.Attempts}
	}
	res.Text, res.Path = att.Text, PathDirect
	return res, nil
}

func (r *Router) attempt(ctx context.Context, path Path, a adapters.Adapter, model string, route Route) Attempt {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := a.Complete(ctx, adapters.Call{
		Model:  model,
		System: route.System,
		User:   route.User,
		Image:  route.Image,
	})
	if err == nil && text == "" {
		err = adapters.ErrEmptyCompletion
	}
	att := Attempt{Path: path, Text: text, Err: err, Duration: time.Since(start)}

	r.metrics.RecordAttempt(string(path), string(route.Model.Provider), outcome(err))
	return att
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, adapters.ErrEmptyCompletion):
		return "empty"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
