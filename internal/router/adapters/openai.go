package adapters

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vaseyai/reprompter/internal/config"
	"github.com/vaseyai/reprompter/internal/media"
)

// chatCompleter speaks the OpenAI chat-completions shape. It backs both the
// direct OpenAI adapter and the gateway, which exposes the same API.
type chatCompleter struct {
	name   string
	client *openai.Client
	// ready is false when no credential is available, so calls fail
	// locally with ErrMissingCredential.
	ready     bool
	maxTokens int
}

func newChatCompleter(name, apiKey, baseURL string, httpClient *http.Client, maxTokens int) chatCompleter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return chatCompleter{
		name:      name,
		client:    openai.NewClientWithConfig(cfg),
		ready:     apiKey != "",
		maxTokens: maxTokens,
	}
}

func (c chatCompleter) complete(ctx context.Context, call Call) (string, error) {
	if !c.ready {
		return "", fmt.Errorf("%s: %w", c.name, ErrMissingCredential)
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if call.Image != nil {
		user.MultiContent = []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    "data:" + call.Image.MIMEType + ";base64," + media.Base64(call.Image),
					Detail: openai.ImageURLDetailAuto,
				},
			},
			{Type: openai.ChatMessagePartTypeText, Text: call.User},
		}
	} else {
		user.Content = call.User
	}

	req := openai.ChatCompletionRequest{
		Model: call.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: call.System},
			user,
		},
	}
	if c.maxTokens > 0 {
		req.MaxCompletionTokens = c.maxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", c.name, err)
	}

	for _, choice := range resp.Choices {
		if choice.Message.Content != "" {
			return choice.Message.Content, nil
		}
	}
	return "", nil
}

// OpenAIAdapter handles communication with the OpenAI API directly.
type OpenAIAdapter struct {
	chat chatCompleter
}

func NewOpenAIAdapter(cfg config.ProviderConfig, client *http.Client) *OpenAIAdapter {
	return &OpenAIAdapter{chat: newChatCompleter("openai", cfg.APIKey, cfg.BaseURL, client, DefaultMaxTokens)}
}

func (a *OpenAIAdapter) Name() string { return "openai" }

func (a *OpenAIAdapter) Complete(ctx context.Context, call Call) (string, error) {
	return a.chat.complete(ctx, call)
}
