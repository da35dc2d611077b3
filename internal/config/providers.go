package config

import (
	"strings"

	"github.com/vaseyai/reprompter/internal/types"
)

// DefaultGatewayBaseURL is the OpenAI-compatible AI Gateway endpoint.
const DefaultGatewayBaseURL = "https://ai-gateway.vercel.sh/v1"

type ProvidersConfig struct {
	Anthropic ProviderConfig `yaml:"anthropic"`
	OpenAI    ProviderConfig `yaml:"openai"`
	Google    ProviderConfig `yaml:"google"`
}

type ProviderConfig struct {
	APIKey  string            `yaml:"api_key"`
	BaseURL string            `yaml:"base_url"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Get returns the configuration block for a provider family.
func (p ProvidersConfig) Get(provider types.Provider) ProviderConfig {
	switch provider {
	case types.ProviderAnthropic:
		return p.Anthropic
	case types.ProviderOpenAI:
		return p.OpenAI
	case types.ProviderGoogle:
		return p.Google
	default:
		return ProviderConfig{}
	}
}

// HasCredential reports whether a direct API key is configured for provider.
func (p ProvidersConfig) HasCredential(provider types.Provider) bool {
	return p.Get(provider).APIKey != ""
}

type GatewayConfig struct {
	APIKey string `yaml:"api_key"`
	// OIDCToken is injected by the hosting platform and authenticates
	// against the gateway when no explicit key is set.
	OIDCToken string `yaml:"oidc_token"`
	BaseURL   string `yaml:"base_url"`
	// Enabled forces the gateway off when explicitly false. Nil means
	// enabled whenever a credential path exists.
	Enabled *bool `yaml:"enabled"`
	// PlatformMarker is set when running on the hosting platform, which
	// provides gateway credentials implicitly.
	PlatformMarker bool `yaml:"platform_marker"`
}

// Credential returns the bearer token used against the gateway.
func (g GatewayConfig) Credential() string {
	if g.APIKey != "" {
		return g.APIKey
	}
	return g.OIDCToken
}

// Eligible reports whether requests may be routed through the gateway.
func (g GatewayConfig) Eligible() bool {
	if g.Enabled != nil && !*g.Enabled {
		return false
	}
	return g.Credential() != "" || g.PlatformMarker
}

// parseBoolish accepts the usual spellings of a boolean environment value.
func parseBoolish(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}
