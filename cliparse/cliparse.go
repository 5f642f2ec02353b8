// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port         int    `env:"PORT" envDefault:"3318"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string `env:"DATABASE_TYPE" envDefault:"sqlite"`
	AdminKeySalt string `env:"ADMIN_KEY_SALT"`
	SessionID    string `env:"SESSION_ID" envDefault:"classroom"`

	DefaultClassSize int `env:"DEFAULT_CLASS_SIZE" envDefault:"28"`
	HistoryLoadLimit int `env:"HISTORY_LOAD_LIMIT" envDefault:"50"`

	ClarificationThreshold float64 `env:"INSIGHT_CLARIFICATION_THRESHOLD" envDefault:"7"`
	MisconceptionThreshold float64 `env:"INSIGHT_MISCONCEPTION_THRESHOLD" envDefault:"30"`

	// Optional notification sinks; empty disables them.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"classpulse.poll-events"`
	RedisURL     string   `env:"REDIS_URL"`
	RedisChannel string   `env:"REDIS_CHANNEL" envDefault:"classpulse:poll-events"`

	ArchiveTimeout time.Duration `env:"ARCHIVE_TIMEOUT" envDefault:"5s"`
	NotifyTimeout  time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"2s"`
	NotifyBuffer   int           `env:"NOTIFY_BUFFER" envDefault:"256"`

	// WSOrigins are extra host patterns allowed to open /ws.
	WSOrigins []string `env:"WS_ORIGINS" envSeparator:","`
}

// LoadDotEnv loads variables from path into the process environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ParseFlags reads the environment, then lets CLI flags override it.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	flags := flag.NewFlagSet("class-pulse", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	flags.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	flags.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	flags.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")
	flags.StringVar(&cfg.SessionID, "session", cfg.SessionID, "Classroom session id")
	flags.IntVar(&cfg.DefaultClassSize, "class-size", cfg.DefaultClassSize, "Class size used when a poll omits one")

	// Secrets (prefer env variables, but allow CLI for dev)
	flags.StringVar(&cfg.AdminKeySalt, "admin-salt", cfg.AdminKeySalt, "Admin key salt (prefer env)")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if c.DatabaseType != "sqlite" && c.DatabaseType != "postgres" {
		return fmt.Errorf("unsupported database type %q (want sqlite or postgres)", c.DatabaseType)
	}
	// Secrets - MUST be provided
	if c.AdminKeySalt == "" {
		return errors.New("ADMIN_KEY_SALT required")
	}
	if c.SessionID == "" {
		return errors.New("session id must not be empty")
	}
	if c.DefaultClassSize <= 0 {
		return errors.New("DEFAULT_CLASS_SIZE must be positive")
	}
	if c.ClarificationThreshold < 0 || c.ClarificationThreshold > 100 ||
		c.MisconceptionThreshold < 0 || c.MisconceptionThreshold > 100 {
		return errors.New("insight thresholds must be between 0 and 100")
	}
	return nil
}
