// Package client is the Go caller of POST /api/enhance. It never holds
// provider credentials; those exist only on the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/vaseyai/reprompter/internal/types"
)

const enhancePath = "/api/enhance"

// ErrPreviewMode means no backend is deployed at the base URL (HTTP 404).
// Callers may simulate a result with PreviewResponse.
var ErrPreviewMode = errors.New("enhancement backend not available (preview mode)")

// APIError is a non-2xx answer from a reachable backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// UnreachableError covers transport failures and unreadable responses.
type UnreachableError struct {
	Err error
}

func (e *UnreachableError) Error() string { return "failed to reach enhancement service" }
func (e *UnreachableError) Unwrap() error { return e.Err }

// Client calls the enhancement endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the service at baseURL. A nil httpClient gets a
// default with a timeout above the server's upstream budget.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Enhance sends one request and returns the enhanced prompt.
func (c *Client) Enhance(ctx context.Context, req types.WireRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal enhance request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+enhancePath, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &UnreachableError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UnreachableError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusNotFound {
			return "", ErrPreviewMode
		}
		msg := gjson.GetBytes(body, "error")
		if gjson.ValidBytes(body) && msg.Type == gjson.String {
			return "", &APIError{Status: resp.StatusCode, Message: msg.String()}
		}
		return "", &APIError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("Request failed with status %d", resp.StatusCode),
		}
	}

	out := gjson.GetBytes(body, "enhancedPrompt")
	if !gjson.ValidBytes(body) || out.Type != gjson.String {
		return "", &UnreachableError{Err: fmt.Errorf("unexpected response body")}
	}
	return out.String(), nil
}
