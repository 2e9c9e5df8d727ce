package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"FinCo"`
		Port     int    `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	Server Server

	Advisor struct {
		APIKey     string        `envconfig:"GEMINI_API_KEY"`
		Endpoint   string        `envconfig:"GEMINI_ENDPOINT"`
		Model      string        `envconfig:"ADVISOR_MODEL" default:"gemini-3-pro-preview"`
		ParseModel string        `envconfig:"ADVISOR_PARSE_MODEL" default:"gemini-3-flash-preview"`
		Timeout    time.Duration `envconfig:"ADVISOR_TIMEOUT" default:"60s"`
	}

	Ledger struct {
		SettleDelay time.Duration `envconfig:"LEDGER_SETTLE_DELAY" default:"1500ms"`
	}

	TUI struct {
		// Empty discards logs so they do not draw over the terminal UI.
		LogFile string `envconfig:"TUI_LOG_FILE"`
	}

	AMQP struct {
		// Empty disables event publishing.
		URL      string `envconfig:"AMQP_URL"`
		Exchange string `envconfig:"AMQP_EXCHANGE" default:"finco.ledger"`
	}
}

// Server holds the HTTP listener settings the router and cmd/api need.
type Server struct {
	Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
}

// SlogLevel maps App.LogLevel to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
