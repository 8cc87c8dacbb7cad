// Package config loads raidcore settings from RAIDCORE_* environment
// variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Store kinds accepted by StoreKind.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

type Config struct {
	DataDir     string `env:"RAIDCORE_DATA_DIR" envDefault:"data"`
	Boss        int    `env:"RAIDCORE_BOSS" envDefault:"5001"`
	Environment string `env:"RAIDCORE_ENV" envDefault:"development"`
	LogLevelRaw string `env:"RAIDCORE_LOG_LEVEL" envDefault:"warn"`
	Seed        int64  `env:"RAIDCORE_SEED" envDefault:"0"`
	CountPolicy string `env:"RAIDCORE_COUNT_POLICY" envDefault:"sum_all"`
	Capacity    int    `env:"RAIDCORE_INVENTORY_SLOTS" envDefault:"24"`
	StoreKind   string `env:"RAIDCORE_STORE" envDefault:"memory"`
	RedisURL    string `env:"RAIDCORE_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	SQLitePath  string `env:"RAIDCORE_SQLITE_PATH" envDefault:"raidcore.db"`
	PlayerID    string `env:"RAIDCORE_PLAYER_ID"`

	LogLevel slog.Level
}

// Load reads the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = ParseLogLevel(cfg.LogLevelRaw)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.StoreKind {
	case StoreMemory, StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q", c.StoreKind)
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("inventory slots must be positive, got %d", c.Capacity)
	}
	return nil
}

// ParseLogLevel maps a level name to a slog.Level; unknown names are info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
