// Package config parses the service configuration from flags and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Config is the API process configuration. Flags take precedence over
// environment variables, which take precedence over defaults.
type Config struct {
	Addr            string        `help:"HTTP listen address." default:":8080" env:"CALC_ADDR"`
	ShutdownTimeout time.Duration `help:"Grace period for in-flight requests on shutdown." default:"5s" env:"CALC_SHUTDOWN_TIMEOUT"`

	SessionTTL    time.Duration `help:"Idle time after which a calculator session is evicted (0 disables)." default:"30m" env:"CALC_SESSION_TTL"`
	SweepInterval time.Duration `help:"How often idle sessions are swept." default:"1m" env:"CALC_SWEEP_INTERVAL"`
	MaxSessions   int           `help:"Maximum concurrent sessions (0 means unlimited)." default:"10000" env:"CALC_MAX_SESSIONS"`

	Telemetry bool          `help:"Export traces and metrics over OTLP/HTTP." default:"true" negatable:"" env:"CALC_TELEMETRY"`
	OTLPLogs  bool          `name:"otlp-logs" help:"Also export logs over OTLP/HTTP." default:"false" negatable:"" env:"CALC_OTLP_LOGS"`
	LogLevel  zapcore.Level `help:"Log level (debug, info, warn, error)." default:"info" env:"CALC_LOG_LEVEL"`
}

// Validate checks values kong cannot express as tags.
func (c *Config) Validate() error {
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", c.SweepInterval)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("session ttl must not be negative, got %s", c.SessionTTL)
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("max sessions must not be negative, got %d", c.MaxSessions)
	}
	return nil
}

// Parse builds a Config from args and the process environment.
func Parse(args []string, options ...kong.Option) (*Config, error) {
	var cfg Config

	options = append([]kong.Option{
		kong.Name("calculator-api"),
		kong.Description("Keypad calculator HTTP service."),
	}, options...)

	parser, err := kong.New(&cfg, options...)
	if err != nil {
		return nil, fmt.Errorf("building flag parser: %w", err)
	}

	if _, err := parser.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDotEnv loads environment variables from .env when present.
// Existing process environment variables are not overridden.
func LoadDotEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load .env: %w", err)
}
