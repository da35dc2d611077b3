package adapters

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/vaseyai/reprompter/internal/config"
	"github.com/vaseyai/reprompter/internal/types"
)

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}

func testImage() *types.Image {
	return &types.Image{Data: jpegBytes, DeclaredType: "image/png", MIMEType: "image/jpeg"}
}

// captureServer records the last request body and replies with the given
// status and payload.
func captureServer(t *testing.T, status int, reply string) (*httptest.Server, *[]byte, *http.Header) {
	t.Helper()
	var body []byte
	var header http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		header = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, &body, &header
}

func TestAnthropicAdapter_RequestShape(t *testing.T) {
	srv, body, header := captureServer(t, http.StatusOK,
		`{"id":"msg_1","content":[{"type":"thinking","text":""},{"type":"text","text":"Better prompt"}]}`)

	a := NewAnthropicAdapter(config.ProviderConfig{APIKey: "sk-ant", BaseURL: srv.URL}, srv.Client())
	out, err := a.Complete(context.Background(), Call{
		Model:  "claude-sonnet-4-6",
		System: "be helpful",
		User:   "Improve this",
		Image:  testImage(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Better prompt", out)

	assert.Equal(t, "sk-ant", header.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, header.Get("anthropic-version"))

	req := gjson.ParseBytes(*body)
	assert.Equal(t, "claude-sonnet-4-6", req.Get("model").String())
	assert.Equal(t, "be helpful", req.Get("system").String())
	assert.Equal(t, int64(DefaultMaxTokens), req.Get("max_tokens").Int())

	content := req.Get("messages.0.content").Array()
	require.Len(t, content, 2)
	assert.Equal(t, "image", content[0].Get("type").String())
	assert.Equal(t, "base64", content[0].Get("source.type").String())
	assert.Equal(t, "image/jpeg", content[0].Get("source.media_type").String())
	assert.Equal(t, base64.StdEncoding.EncodeToString(jpegBytes), content[0].Get("source.data").String())
	assert.Equal(t, "text", content[1].Get("type").String())
	assert.Equal(t, "Improve this", content[1].Get("text").String())
}

func TestAnthropicAdapter_NoTextBlock(t *testing.T) {
	srv, _, _ := captureServer(t, http.StatusOK, `{"content":[{"type":"tool_use"}]}`)
	a := NewAnthropicAdapter(config.ProviderConfig{APIKey: "k", BaseURL: srv.URL}, srv.Client())

	out, err := a.Complete(context.Background(), Call{Model: "m", User: "x"})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAnthropicAdapter_UpstreamError(t *testing.T) {
	srv, _, _ := captureServer(t, http.StatusTooManyRequests,
		`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`)
	a := NewAnthropicAdapter(config.ProviderConfig{APIKey: "k", BaseURL: srv.URL}, srv.Client())

	_, err := a.Complete(context.Background(), Call{Model: "m", User: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "slow down")
}

func TestAnthropicAdapter_MissingKey(t *testing.T) {
	a := NewAnthropicAdapter(config.ProviderConfig{}, http.DefaultClient)
	_, err := a.Complete(context.Background(), Call{Model: "m", User: "x"})
	assert.ErrorIs(t, err, ErrMissingCredential)
}

const chatReply = `{"id":"c1","object":"chat.completion","model":"gpt-5.2",
"choices":[{"index":0,"message":{"role":"assistant","content":"Sharper prompt"},"finish_reason":"stop"}]}`

func TestOpenAIAdapter_RequestShape(t *testing.T) {
	srv, body, header := captureServer(t, http.StatusOK, chatReply)

	a := NewOpenAIAdapter(config.ProviderConfig{APIKey: "sk-oa", BaseURL: srv.URL}, srv.Client())
	out, err := a.Complete(context.Background(), Call{
		Model:  "gpt-5.2",
		System: "sys",
		User:   "Improve this",
		Image:  testImage(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Sharper prompt", out)
	assert.Equal(t, "Bearer sk-oa", header.Get("Authorization"))

	req := gjson.ParseBytes(*body)
	assert.Equal(t, "gpt-5.2", req.Get("model").String())
	assert.Equal(t, "system", req.Get("messages.0.role").String())
	assert.Equal(t, "sys", req.Get("messages.0.content").String())

	parts := req.Get("messages.1.content").Array()
	require.Len(t, parts, 2)
	assert.Equal(t, "image_url", parts[0].Get("type").String())
	assert.True(t, strings.HasPrefix(parts[0].Get("image_url.url").String(), "data:image/jpeg;base64,"))
	assert.Equal(t, "text", parts[1].Get("type").String())
	assert.Equal(t, "Improve this", parts[1].Get("text").String())
}

func TestOpenAIAdapter_TextOnly(t *testing.T) {
	srv, body, _ := captureServer(t, http.StatusOK, chatReply)
	a := NewOpenAIAdapter(config.ProviderConfig{APIKey: "k", BaseURL: srv.URL}, srv.Client())

	_, err := a.Complete(context.Background(), Call{Model: "gpt-5.2", System: "s", User: "plain"})
	require.NoError(t, err)
	assert.Equal(t, "plain", gjson.GetBytes(*body, "messages.1.content").String())
}

func TestOpenAIAdapter_UpstreamError(t *testing.T) {
	srv, _, _ := captureServer(t, http.StatusUnauthorized,
		`{"error":{"message":"invalid api key sk-***","type":"invalid_request_error"}}`)
	a := NewOpenAIAdapter(config.ProviderConfig{APIKey: "k", BaseURL: srv.URL}, srv.Client())

	_, err := a.Complete(context.Background(), Call{Model: "gpt-5.2", User: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestGatewayAdapter_UsesGatewayCredential(t *testing.T) {
	srv, body, header := captureServer(t, http.StatusOK, chatReply)

	a := NewGatewayAdapter(config.GatewayConfig{OIDCToken: "oidc-token", BaseURL: srv.URL}, srv.Client())
	assert.Equal(t, "gateway", a.Name())

	out, err := a.Complete(context.Background(), Call{Model: "anthropic/claude-sonnet-4.6", User: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Sharper prompt", out)
	assert.Equal(t, "Bearer oidc-token", header.Get("Authorization"))
	assert.Equal(t, "anthropic/claude-sonnet-4.6", gjson.GetBytes(*body, "model").String())
}

func TestGatewayAdapter_NoCredential(t *testing.T) {
	a := NewGatewayAdapter(config.GatewayConfig{}, http.DefaultClient)
	_, err := a.Complete(context.Background(), Call{Model: "m", User: "x"})
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestGatewayAdapter_PlatformMarkerOnly(t *testing.T) {
	srv, body, header := captureServer(t, http.StatusOK, chatReply)

	a := NewGatewayAdapter(config.GatewayConfig{PlatformMarker: true, BaseURL: srv.URL}, srv.Client())

	ctx := WithPlatformToken(context.Background(), "injected-token")
	out, err := a.Complete(ctx, Call{Model: "openai/gpt-5.2", User: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Sharper prompt", out)
	assert.Equal(t, "Bearer injected-token", header.Get("Authorization"))
	assert.Equal(t, "openai/gpt-5.2", gjson.GetBytes(*body, "model").String())
}

func TestGatewayAdapter_PlatformMarkerWithoutToken(t *testing.T) {
	srv, _, _ := captureServer(t, http.StatusUnauthorized,
		`{"error":{"message":"missing token","type":"auth_error"}}`)

	a := NewGatewayAdapter(config.GatewayConfig{PlatformMarker: true, BaseURL: srv.URL}, srv.Client())

	_, err := a.Complete(context.Background(), Call{Model: "m", User: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingCredential)
	assert.Contains(t, err.Error(), "missing token")
}

func TestGatewayAdapter_ConfiguredKeyWinsOverPlatformToken(t *testing.T) {
	srv, _, header := captureServer(t, http.StatusOK, chatReply)

	a := NewGatewayAdapter(config.GatewayConfig{APIKey: "gw-key", PlatformMarker: true, BaseURL: srv.URL}, srv.Client())

	_, err := a.Complete(WithPlatformToken(context.Background(), "injected"), Call{Model: "m", User: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer gw-key", header.Get("Authorization"))
}

func TestGoogleAdapter_RequestShape(t *testing.T) {
	var path string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Gemini prompt"}]}}]}`)
	}))
	defer srv.Close()

	a, err := NewGoogleAdapter(context.Background(),
		config.ProviderConfig{APIKey: "g-key", BaseURL: srv.URL + "/"}, srv.Client())
	require.NoError(t, err)

	out, err := a.Complete(context.Background(), Call{
		Model:  "gemini-3-pro-preview",
		System: "multimodal sys",
		User:   "Improve this",
		Image:  testImage(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Gemini prompt", out)
	assert.True(t, strings.HasSuffix(path, "gemini-3-pro-preview:generateContent"), path)

	raw := string(body)
	assert.Contains(t, raw, "multimodal sys")
	assert.Contains(t, raw, "image/jpeg")
	assert.Contains(t, raw, "Improve this")
}

func TestGoogleAdapter_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	a, err := NewGoogleAdapter(context.Background(),
		config.ProviderConfig{APIKey: "g-key", BaseURL: srv.URL + "/"}, srv.Client())
	require.NoError(t, err)

	out, err := a.Complete(context.Background(), Call{Model: "gemini-3-pro-preview", User: "x"})
	require.NoError(t, err)
	assert.Empty(t, out)
}
