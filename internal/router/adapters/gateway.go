package adapters

import (
	"context"
	"net/http"

	"github.com/vaseyai/reprompter/internal/config"
)

// HeaderPlatformToken carries the per-request OIDC token the hosting
// platform injects for gateway authentication.
const HeaderPlatformToken = "X-Vercel-Oidc-Token"

type platformTokenKey struct{}

// WithPlatformToken stores a platform-injected gateway token in ctx.
func WithPlatformToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, platformTokenKey{}, token)
}

// PlatformToken returns the token stored by WithPlatformToken, if any.
func PlatformToken(ctx context.Context) string {
	token, _ := ctx.Value(platformTokenKey{}).(string)
	return token
}

// GatewayAdapter reaches every provider through the AI Gateway's
// OpenAI-compatible endpoint. Calls carry the gateway's model identifier
// (e.g. "anthropic/claude-sonnet-4.6").
type GatewayAdapter struct {
	chat chatCompleter
}

// NewGatewayAdapter builds the gateway adapter. With no configured
// credential on the hosting platform, calls still go out and authenticate
// with the token found in the request context.
func NewGatewayAdapter(cfg config.GatewayConfig, client *http.Client) *GatewayAdapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultGatewayBaseURL
	}
	credential := cfg.Credential()
	platform := credential == "" && cfg.PlatformMarker
	if platform {
		client = withPlatformToken(client)
	}
	// The gateway translates limits per provider; leave the default in place.
	chat := newChatCompleter("gateway", credential, baseURL, client, 0)
	chat.ready = chat.ready || platform
	return &GatewayAdapter{chat: chat}
}

func (a *GatewayAdapter) Name() string { return "gateway" }

func (a *GatewayAdapter) Complete(ctx context.Context, call Call) (string, error) {
	return a.chat.complete(ctx, call)
}

// withPlatformToken returns a copy of client whose requests carry the
// context's platform token as the bearer credential.
func withPlatformToken(client *http.Client) *http.Client {
	if client == nil {
		client = http.DefaultClient
	}
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c := *client
	c.Transport = platformTokenTransport{base: base}
	return &c
}

type platformTokenTransport struct {
	base http.RoundTripper
}

func (t platformTokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := PlatformToken(req.Context())
	if token == "" {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+token)
	return t.base.RoundTrip(req)
}
