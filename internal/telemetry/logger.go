package telemetry

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vaseyai/reprompter/internal/config"
)

// SetupLogger configures the global zerolog logger from cfg and returns it.
// Unknown levels fall back to info; format "console" selects human-readable
// output, anything else JSON.
func SetupLogger(cfg config.TelemetryConfig) zerolog.Logger {
	return setupLogger(cfg, os.Stderr)
}

func setupLogger(cfg config.TelemetryConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := w
	if strings.EqualFold(cfg.LogFormat, "console") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).With().Timestamp().Str("service", "reprompter").Logger()
	log.Logger = logger
	return logger
}
