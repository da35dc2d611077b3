package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaseyai/reprompter/internal/types"
)

var baseRequest = types.WireRequest{Prompt: "test prompt", Mode: "enhance", TargetModel: "claude-sonnet"}

func serve(t *testing.T, status int, body string) (*Client, *types.WireRequest) {
	t.Helper()
	var got types.WireRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/enhance", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &got)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client()), &got
}

func TestEnhance_Success(t *testing.T) {
	c, got := serve(t, http.StatusOK, `{"enhancedPrompt":"Enhanced result"}`)

	out, err := c.Enhance(context.Background(), baseRequest)
	require.NoError(t, err)
	assert.Equal(t, "Enhanced result", out)
	assert.Equal(t, baseRequest, *got)
}

func TestEnhance_SendsImage(t *testing.T) {
	c, got := serve(t, http.StatusOK, `{"enhancedPrompt":"ok"}`)
	img := "data:image/png;base64,iVBORw0KGgo="
	req := baseRequest
	req.Image = &img

	_, err := c.Enhance(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, got.Image)
	assert.Equal(t, img, *got.Image)
}

func TestEnhance_PreviewModeOn404(t *testing.T) {
	c, _ := serve(t, http.StatusNotFound, `<html>not found</html>`)

	_, err := c.Enhance(context.Background(), baseRequest)
	assert.ErrorIs(t, err, ErrPreviewMode)
}

func TestEnhance_ServerErrorMessage(t *testing.T) {
	c, _ := serve(t, http.StatusInternalServerError, `{"error":"Internal error"}`)

	_, err := c.Enhance(context.Background(), baseRequest)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Internal error", err.Error())
	assert.NotErrorIs(t, err, ErrPreviewMode)
}

func TestEnhance_UnparseableErrorBody(t *testing.T) {
	c, _ := serve(t, http.StatusBadGateway, `upstream connect error`)

	_, err := c.Enhance(context.Background(), baseRequest)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Request failed with status 502", apiErr.Message)
}

func TestEnhance_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).Enhance(context.Background(), baseRequest)
	var unreachable *UnreachableError
	require.ErrorAs(t, err, &unreachable)
	assert.Equal(t, "failed to reach enhancement service", err.Error())
	assert.False(t, errors.Is(err, ErrPreviewMode))
}

func TestEnhance_MalformedSuccessBody(t *testing.T) {
	c, _ := serve(t, http.StatusOK, `{"result":"wrong field"}`)

	_, err := c.Enhance(context.Background(), baseRequest)
	var unreachable *UnreachableError
	assert.ErrorAs(t, err, &unreachable)
}

func TestPreviewResponse(t *testing.T) {
	claude := PreviewResponse("Enhance", "Anthropic Claude Sonnet 4.6", "test")
	assert.Contains(t, claude, "<context>")
	assert.Contains(t, claude, "</context>")
	assert.Contains(t, claude, "PREVIEW MODE")

	gemini := PreviewResponse("Enhance", "Google Gemini 3.0 Pro", "test")
	assert.NotContains(t, gemini, "<context>")
	assert.NotContains(t, gemini, "</context>")

	assert.Contains(t, PreviewResponse("Rewrite", "Anthropic Claude Sonnet 4.6", "test"), `"Rewrite"`)

	long := PreviewResponse("Enhance", "Anthropic Claude Sonnet 4.6", strings.Repeat("a", 100))
	assert.Contains(t, long, "...")
	assert.NotContains(t, long, strings.Repeat("a", 100))
}
