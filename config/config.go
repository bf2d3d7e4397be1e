// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/warp/loan-engine/balance"
)

// Config holds the process-wide settings of the engine.
type Config struct {
	// BalanceCacheTTL bounds how long a ledger balance is reused within one
	// computation.
	BalanceCacheTTL  time.Duration `env:"LOAN_ENGINE_BALANCE_CACHE_TTL" envDefault:"30s"`
	BalanceCacheSize int           `env:"LOAN_ENGINE_BALANCE_CACHE_SIZE" envDefault:"20"`

	LogLevel  string `env:"LOAN_ENGINE_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOAN_ENGINE_LOG_FORMAT" envDefault:"text"`

	// SQLitePath is the ledger database. ":memory:" keeps it in process.
	SQLitePath string `env:"LOAN_ENGINE_SQLITE_PATH" envDefault:":memory:"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.BalanceCacheTTL <= 0 {
		return Config{}, fmt.Errorf("parse env: balance cache ttl must be positive, got %s", cfg.BalanceCacheTTL)
	}
	if cfg.BalanceCacheSize < 1 {
		return Config{}, fmt.Errorf("parse env: balance cache size must be positive, got %d", cfg.BalanceCacheSize)
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("parse env: unknown log format %q", cfg.LogFormat)
	}
	return cfg, nil
}

// NewLogger builds the structured logger described by cfg, writing to w.
func NewLogger(cfg Config, w io.Writer) *slog.Logger {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// RealConfig returns ledger-backed balance settings for one case.
func (c Config) RealConfig(productID, caseID string, logger *slog.Logger) balance.RealConfig {
	return balance.RealConfig{
		ProductID: productID,
		CaseID:    caseID,
		CacheTTL:  c.BalanceCacheTTL,
		CacheSize: c.BalanceCacheSize,
		Logger:    logger,
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
