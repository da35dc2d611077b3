// Package catalog holds the static mode and target-model tables.
package catalog

import (
	"fmt"
	"sort"

	"github.com/vaseyai/reprompter/internal/config"
	"github.com/vaseyai/reprompter/internal/types"
)

// ModelConfig maps a logical target model onto one provider and one
// concrete upstream model.
type ModelConfig struct {
	ID             string
	Provider       types.Provider
	ModelID        string
	GatewayModelID string
	DisplayName    string
}

// ModeConfig parameterizes the system prompt for one mode.
type ModeConfig struct {
	Mode        types.Mode
	Name        string
	Description string
}

// Registry resolves client-facing identifiers. Implementations are
// immutable and safe for concurrent use.
type Registry interface {
	Model(id string) (ModelConfig, bool)
	ModelIDs() []string
	Mode(m types.Mode) (ModeConfig, bool)
	Modes() []ModeConfig
}

var defaultModes = []ModeConfig{
	{
		Mode:        types.ModeEnhance,
		Name:        "Enhance",
		Description: "Make the prompt more specific and effective while preserving its original intent, adding clarity, structure and detail.",
	},
	{
		Mode:        types.ModeExpand,
		Name:        "Expand",
		Description: "Expand the prompt with additional context, constraints, examples and detail so it produces richer, more comprehensive responses.",
	},
	{
		Mode:        types.ModeClarify,
		Name:        "Clarify",
		Description: "Remove ambiguity, add precision and restructure the prompt so it is unambiguous and well organized.",
	},
	{
		Mode:        types.ModeRewrite,
		Name:        "Rewrite",
		Description: "Rewrite the prompt from scratch using prompt engineering best practices so it achieves the same goal far more effectively.",
	},
}

var defaultModels = []ModelConfig{
	{
		ID:             "claude-sonnet",
		Provider:       types.ProviderAnthropic,
		ModelID:        "claude-sonnet-4-6",
		GatewayModelID: "anthropic/claude-sonnet-4.6",
		DisplayName:    "Anthropic Claude Sonnet 4.6",
	},
	{
		ID:             "chatgpt-5",
		Provider:       types.ProviderOpenAI,
		ModelID:        "gpt-5.2",
		GatewayModelID: "openai/gpt-5.2",
		DisplayName:    "OpenAI ChatGPT-5.2",
	},
	{
		ID:             "gemini-3",
		Provider:       types.ProviderGoogle,
		ModelID:        "gemini-3-pro-preview",
		GatewayModelID: "google/gemini-3-pro-preview",
		DisplayName:    "Google Gemini 3.0 Pro",
	},
}

type table struct {
	models   map[string]ModelConfig
	modelIDs []string
	modes    []ModeConfig
}

// Default returns the built-in catalog.
func Default() Registry {
	return newTable(defaultModels)
}

// FromConfig builds the catalog from the models section of the config,
// falling back to the built-in models when the section is empty.
func FromConfig(models map[string]config.ModelMapping) (Registry, error) {
	if len(models) == 0 {
		return Default(), nil
	}
	list := make([]ModelConfig, 0, len(models))
	for id, m := range models {
		provider, ok := types.ParseProvider(m.Provider)
		if !ok {
			return nil, fmt.Errorf("model %s: unknown provider %q", id, m.Provider)
		}
		name := m.DisplayName
		if name == "" {
			name = id
		}
		list = append(list, ModelConfig{
			ID:             id,
			Provider:       provider,
			ModelID:        m.Model,
			GatewayModelID: m.GatewayModel,
			DisplayName:    name,
		})
	}
	return newTable(list), nil
}

func newTable(models []ModelConfig) *table {
	t := &table{
		models: make(map[string]ModelConfig, len(models)),
		modes:  append([]ModeConfig(nil), defaultModes...),
	}
	for _, m := range models {
		t.models[m.ID] = m
		t.modelIDs = append(t.modelIDs, m.ID)
	}
	sort.Strings(t.modelIDs)
	return t
}

func (t *table) Model(id string) (ModelConfig, bool) {
	m, ok := t.models[id]
	return m, ok
}

func (t *table) ModelIDs() []string {
	return append([]string(nil), t.modelIDs...)
}

func (t *table) Mode(m types.Mode) (ModeConfig, bool) {
	for _, mc := range t.modes {
		if mc.Mode == m {
			return mc, true
		}
	}
	return ModeConfig{}, false
}

func (t *table) Modes() []ModeConfig {
	return append([]ModeConfig(nil), t.modes...)
}
