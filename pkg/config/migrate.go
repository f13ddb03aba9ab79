package config

import (
	"errors"
	"strings"
)

// MigrateConfig holds the settings the migration tool needs.
type MigrateConfig struct {
	DatabaseURL string `env:"DATABASE_URL,default=postgres://liftsplit:liftsplit@db:5432/liftsplit?sslmode=disable"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
}

// LoadMigrateConfig reads MigrateConfig from the environment.
func LoadMigrateConfig() (MigrateConfig, error) {
	var cfg MigrateConfig
	if err := Load(&cfg); err != nil {
		return MigrateConfig{}, err
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return MigrateConfig{}, errors.New("DATABASE_URL is required")
	}
	return cfg, nil
}
