package router

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/vaseyai/reprompter/internal/config"
	"github.com/vaseyai/reprompter/internal/router/adapters"
	"github.com/vaseyai/reprompter/internal/telemetry"
	"github.com/vaseyai/reprompter/internal/types"
)

// Registry manages the direct provider adapters. An adapter is registered
// only when its credential is configured, so Has doubles as the
// "provider key available" check.
type Registry struct {
	mu       sync.RWMutex
	adapters map[types.Provider]adapters.Adapter
}

func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[types.Provider]adapters.Adapter),
	}
}

func (r *Registry) Register(provider types.Provider, adapter adapters.Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[provider] = adapter
}

func (r *Registry) Get(provider types.Provider) (adapters.Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[provider]
	return a, ok
}

func (r *Registry) Has(provider types.Provider) bool {
	_, ok := r.Get(provider)
	return ok
}

// Providers lists the registered providers in a stable order.
func (r *Registry) Providers() []types.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Provider, 0, len(r.adapters))
	for p := range r.adapters {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// newHTTPClient returns the client shared by every upstream adapter.
func newHTTPClient(cfg config.RoutingConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.UpstreamTimeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        cfg.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.MaxIdleConns,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}

// BuildRegistry registers a direct adapter for every provider that has an
// API key.
func BuildRegistry(ctx context.Context, provCfg config.ProvidersConfig, client *http.Client) (*Registry, error) {
	registry := NewRegistry()
	for _, p := range types.Providers() {
		cfg := provCfg.Get(p)
		if cfg.APIKey == "" {
			continue
		}

		var adapter adapters.Adapter
		switch p {
		case types.ProviderAnthropic:
			adapter = adapters.NewAnthropicAdapter(cfg, client)
		case types.ProviderOpenAI:
			adapter = adapters.NewOpenAIAdapter(cfg, client)
		case types.ProviderGoogle:
			g, err := adapters.NewGoogleAdapter(ctx, cfg, client)
			if err != nil {
				return nil, fmt.Errorf("build %s adapter: %w", p, err)
			}
			adapter = g
		default:
			continue
		}
		registry.Register(p, adapter)
	}
	return registry, nil
}

// BuildFromConfig wires the gateway (when eligible) and the direct adapters
// into a Router.
func BuildFromConfig(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics) (*Router, error) {
	client := newHTTPClient(cfg.Routing)

	registry, err := BuildRegistry(ctx, cfg.Providers, client)
	if err != nil {
		return nil, err
	}

	var gateway adapters.Adapter
	if cfg.Gateway.Eligible() {
		gateway = adapters.NewGatewayAdapter(cfg.Gateway, client)
	}

	return New(gateway, registry, cfg.Routing.UpstreamTimeout, metrics), nil
}
