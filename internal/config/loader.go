package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:default} patterns in a string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		varName := submatch[1]
		defaultVal := ""
		if len(submatch) >= 3 {
			defaultVal = submatch[2]
		}
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return defaultVal
	})
}

// LoadFile reads a YAML file, expands env vars, and unmarshals into dest.
func LoadFile(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	expanded := expandEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(expanded), dest); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// LookupFunc resolves an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load builds the configuration from defaults, an optional YAML file and the
// process environment, in that order of precedence (environment wins).
func Load(path string) (*Config, error) {
	return LoadWith(path, os.LookupEnv)
}

// LoadWith is Load with an explicit environment, for tests.
func LoadWith(path string, lookup LookupFunc) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	str := func(key string, dest *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dest = v
		}
	}

	str("ANTHROPIC_API_KEY", &c.Providers.Anthropic.APIKey)
	str("OPENAI_API_KEY", &c.Providers.OpenAI.APIKey)
	str("GOOGLE_AI_API_KEY", &c.Providers.Google.APIKey)
	str("ANTHROPIC_BASE_URL", &c.Providers.Anthropic.BaseURL)
	str("OPENAI_BASE_URL", &c.Providers.OpenAI.BaseURL)
	str("GOOGLE_AI_BASE_URL", &c.Providers.Google.BaseURL)

	str("AI_GATEWAY_API_KEY", &c.Gateway.APIKey)
	str("VERCEL_OIDC_TOKEN", &c.Gateway.OIDCToken)
	str("AI_GATEWAY_BASE_URL", &c.Gateway.BaseURL)
	if v, ok := lookup("AI_GATEWAY_ENABLED"); ok && strings.TrimSpace(v) != "" {
		enabled, valid := parseBoolish(v)
		if !valid {
			return fmt.Errorf("AI_GATEWAY_ENABLED: unrecognised value %q", v)
		}
		c.Gateway.Enabled = &enabled
	}
	if v, ok := lookup("VERCEL"); ok && v != "" {
		c.Gateway.PlatformMarker = true
	}

	str("SSM_ANTHROPIC_KEY_PARAM", &c.SSM.AnthropicKeyParam)
	str("SSM_OPENAI_KEY_PARAM", &c.SSM.OpenAIKeyParam)
	str("SSM_GOOGLE_KEY_PARAM", &c.SSM.GoogleKeyParam)
	str("SSM_GATEWAY_KEY_PARAM", &c.SSM.GatewayKeyParam)

	str("LOG_LEVEL", &c.Telemetry.LogLevel)
	str("LOG_FORMAT", &c.Telemetry.LogFormat)

	if v, ok := lookup("REDIS_ADDR"); ok && v != "" {
		c.Redis.Addresses = strings.Split(v, ",")
	}
	str("REDIS_PASSWORD", &c.Redis.Password)

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("MAX_PROMPT_LENGTH"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_PROMPT_LENGTH: %w", err)
		}
		c.Limits.MaxPromptLength = n
	}
	return nil
}

// ErrNoConfigFile is returned by FindFile when none of the candidates exist.
var ErrNoConfigFile = errors.New("no config file found")

// FindFile returns the first existing path among candidates.
func FindFile(candidates ...string) (string, error) {
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrNoConfigFile
}
