package config

import (
	"fmt"
	"time"
)

// Config is the process-wide configuration. It is built once at startup by
// Load and passed explicitly; nothing mutates it afterwards.
type Config struct {
	Server    ServerConfig            `yaml:"server"`
	Redis     RedisConfig             `yaml:"redis"`
	Telemetry TelemetryConfig         `yaml:"telemetry"`
	Filter    FilterConfig            `yaml:"filter"`
	Routing   RoutingConfig           `yaml:"routing"`
	Limits    LimitsConfig            `yaml:"limits"`
	RateLimit RateLimitConfig         `yaml:"rate_limit"`
	Gateway   GatewayConfig           `yaml:"gateway"`
	Providers ProvidersConfig         `yaml:"providers"`
	SSM       SSMConfig               `yaml:"ssm"`
	Models    map[string]ModelMapping `yaml:"models"`
}

type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type RedisConfig struct {
	Addresses []string `yaml:"addresses"`
	Password  string   `yaml:"password"`
	DB        int      `yaml:"db"`
	PoolSize  int      `yaml:"pool_size"`
}

// Enabled reports whether a redis address is configured.
func (r RedisConfig) Enabled() bool {
	return len(r.Addresses) > 0 && r.Addresses[0] != ""
}

type TelemetryConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type FilterConfig struct {
	Secrets   SecretsFilterConfig   `yaml:"secrets"`
	Injection InjectionFilterConfig `yaml:"injection"`
	Policy    PolicyFilterConfig    `yaml:"policy"`
}

type SecretsFilterConfig struct {
	Enabled bool `yaml:"enabled"`
}

type InjectionFilterConfig struct {
	Enabled        bool    `yaml:"enabled"`
	BlockThreshold float64 `yaml:"block_threshold"`
	FlagThreshold  float64 `yaml:"flag_threshold"`
}

type PolicyFilterConfig struct {
	Enabled           bool          `yaml:"enabled"`
	BundlePath        string        `yaml:"bundle_path"`
	Watch             bool          `yaml:"watch"`
	EvaluationTimeout time.Duration `yaml:"evaluation_timeout"`
}

type RoutingConfig struct {
	// UpstreamTimeout bounds every single gateway or provider attempt.
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
}

type LimitsConfig struct {
	MaxPromptLength int   `yaml:"max_prompt_length"`
	MaxImageBytes   int64 `yaml:"max_image_bytes"`
	MaxBodyBytes    int64 `yaml:"max_body_bytes"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     120 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 30 * time.Second,
		},
		Redis: RedisConfig{
			DB:       0,
			PoolSize: 20,
		},
		Telemetry: TelemetryConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
		Filter: FilterConfig{
			// Off by default: prompts about code legitimately quote
			// sample credentials and connection strings.
			Secrets: SecretsFilterConfig{Enabled: false},
			Injection: InjectionFilterConfig{
				Enabled:        true,
				BlockThreshold: 0.99,
				FlagThreshold:  0.7,
			},
			Policy: PolicyFilterConfig{
				Enabled:           false,
				BundlePath:        "policies",
				EvaluationTimeout: 100 * time.Millisecond,
			},
		},
		Routing: RoutingConfig{
			UpstreamTimeout: 45 * time.Second,
			MaxIdleConns:    32,
		},
		Limits: LimitsConfig{
			MaxPromptLength: 50_000,
			MaxImageBytes:   5 * 1024 * 1024,
			MaxBodyBytes:    8 << 20,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 20,
		},
		Gateway: GatewayConfig{
			BaseURL: DefaultGatewayBaseURL,
		},
		Providers: ProvidersConfig{
			Anthropic: ProviderConfig{BaseURL: "https://api.anthropic.com/v1"},
			OpenAI:    ProviderConfig{BaseURL: "https://api.openai.com/v1"},
			Google:    ProviderConfig{},
		},
	}
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Limits.MaxPromptLength <= 0 {
		return fmt.Errorf("limits.max_prompt_length must be positive")
	}
	if c.Limits.MaxImageBytes <= 0 {
		return fmt.Errorf("limits.max_image_bytes must be positive")
	}
	if c.Limits.MaxBodyBytes <= 0 {
		return fmt.Errorf("limits.max_body_bytes must be positive")
	}
	if c.Routing.UpstreamTimeout <= 0 {
		return fmt.Errorf("routing.upstream_timeout must be positive")
	}
	for id, m := range c.Models {
		if err := m.validate(); err != nil {
			return fmt.Errorf("models.%s: %w", id, err)
		}
	}
	return nil
}
