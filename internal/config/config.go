package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Env struct {
	DataDir         string `env:"FISHY_DATA_DIR"`
	Storage         string `env:"FISHY_STORAGE" envDefault:"file"`
	DatabaseURL     string `env:"DATABASE_URL"`
	EnforceTryLimit bool   `env:"FISHY_ENFORCE_TRY_LIMIT" envDefault:"true"`
	DailyTryLimit   int    `env:"FISHY_DAILY_TRY_LIMIT" envDefault:"5"`
	Seed            int64  `env:"FISHY_SEED" envDefault:"0"`
	LogLevel        string `env:"FISHY_LOG_LEVEL" envDefault:"info"`
}

func LoadFromEnv() (Env, error) {
	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if strings.TrimSpace(cfg.DataDir) == "" {
		dir, err := defaultDataDir()
		if err != nil {
			return cfg, err
		}
		cfg.DataDir = dir
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (e Env) Validate() error {
	switch e.Storage {
	case StorageFile, StorageSQLite, StorageMemory:
	case StoragePostgres:
		if e.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for %s storage", StoragePostgres)
		}
	default:
		return fmt.Errorf("unknown FISHY_STORAGE %q", e.Storage)
	}
	if e.DailyTryLimit < 1 {
		return fmt.Errorf("FISHY_DAILY_TRY_LIMIT must be >= 1")
	}
	return nil
}

// Gameplay returns the default gameplay constants with the env overrides applied.
func (e Env) Gameplay() Gameplay {
	g := DefaultGameplay()
	g.DailyTryLimit = e.DailyTryLimit
	g.EnforceTryLimit = e.EnforceTryLimit
	return g
}

func defaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".fishyday"), nil
}
