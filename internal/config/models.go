package config

import (
	"fmt"

	"github.com/vaseyai/reprompter/internal/types"
)

// ModelMapping describes one logical target model. When the models section
// is present it replaces the built-in catalog entirely.
type ModelMapping struct {
	DisplayName  string `yaml:"display_name"`
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	GatewayModel string `yaml:"gateway_model"`
}

func (m ModelMapping) validate() error {
	if _, ok := types.ParseProvider(m.Provider); !ok {
		return fmt.Errorf("unknown provider %q", m.Provider)
	}
	if m.Model == "" {
		return fmt.Errorf("model is required")
	}
	if m.GatewayModel == "" {
		return fmt.Errorf("gateway_model is required")
	}
	return nil
}
