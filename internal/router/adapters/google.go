package adapters

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/vaseyai/reprompter/internal/config"
)

// GoogleAdapter calls the Gemini API through the genai SDK.
type GoogleAdapter struct {
	client *genai.Client
	hasKey bool
}

func NewGoogleAdapter(ctx context.Context, cfg config.ProviderConfig, httpClient *http.Client) (*GoogleAdapter, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GoogleAdapter{client: client, hasKey: cfg.APIKey != ""}, nil
}

func (a *GoogleAdapter) Name() string { return "google" }

func (a *GoogleAdapter) Complete(ctx context.Context, call Call) (string, error) {
	if !a.hasKey {
		return "", fmt.Errorf("google: %w", ErrMissingCredential)
	}

	var parts []*genai.Part
	if call.Image != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: call.Image.MIMEType,
				Data:     call.Image.Data,
			},
		})
	}
	parts = append(parts, &genai.Part{Text: call.User})

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: call.System}},
		},
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	resp, err := a.client.Models.GenerateContent(ctx, call.Model, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("google generate content: %w", err)
	}
	if resp == nil {
		return "", nil
	}

	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p != nil && p.Text != "" && !p.Thought {
				return p.Text, nil
			}
		}
	}
	return "", nil
}
