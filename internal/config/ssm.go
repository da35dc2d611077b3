package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// SSMConfig names Parameter Store entries holding credentials. A parameter
// is only read when the matching credential is not already configured.
type SSMConfig struct {
	AnthropicKeyParam string `yaml:"anthropic_key_param"`
	OpenAIKeyParam    string `yaml:"openai_key_param"`
	GoogleKeyParam    string `yaml:"google_key_param"`
	GatewayKeyParam   string `yaml:"gateway_key_param"`
}

// ParameterGetter is the subset of *ssm.Client used here.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ResolveSSM fills empty credentials from Parameter Store. It must run
// before the config is handed to the rest of the process.
func ResolveSSM(ctx context.Context, client ParameterGetter, cfg *Config) error {
	targets := []struct {
		param string
		dest  *string
	}{
		{cfg.SSM.AnthropicKeyParam, &cfg.Providers.Anthropic.APIKey},
		{cfg.SSM.OpenAIKeyParam, &cfg.Providers.OpenAI.APIKey},
		{cfg.SSM.GoogleKeyParam, &cfg.Providers.Google.APIKey},
		{cfg.SSM.GatewayKeyParam, &cfg.Gateway.APIKey},
	}

	for _, t := range targets {
		if t.param == "" || *t.dest != "" {
			continue
		}
		param := t.param
		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           &param,
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			return fmt.Errorf("read ssm parameter %s: %w", param, err)
		}
		if out.Parameter == nil || out.Parameter.Value == nil {
			return fmt.Errorf("ssm parameter %s has no value", param)
		}
		*t.dest = *out.Parameter.Value
		log.Debug().Str("param", param).Msg("credential loaded from SSM")
	}
	return nil
}

// Enabled reports whether any parameter name is configured.
func (s SSMConfig) Enabled() bool {
	return s.AnthropicKeyParam != "" || s.OpenAIKeyParam != "" ||
		s.GoogleKeyParam != "" || s.GatewayKeyParam != ""
}
