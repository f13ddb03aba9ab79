package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const defaultSecretKey = "supersecuresecret"

var supportedAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

// APIConfig holds runtime configuration for the API service.
type APIConfig struct {
	Environment     string   `env:"APP_ENV,default=development"`
	Addr            string   `env:"API_ADDR,default=:8000"`
	DatabaseURL     string   `env:"DATABASE_URL,default=postgres://liftsplit:liftsplit@db:5432/liftsplit?sslmode=disable"`
	SecretKey       string   `env:"SECRET_KEY,default=supersecuresecret"`
	Algorithm       string   `env:"ALGORITHM,default=HS256"`
	TokenTTLMinutes int      `env:"ACCESS_TOKEN_EXPIRE_MINUTES,default=30"`
	TokenIssuer     string   `env:"TOKEN_ISSUER,default=liftsplit"`
	LogLevel        string   `env:"LOG_LEVEL,default=info"`
	AllowedOrigins  []string `env:"CORS_ALLOWED_ORIGINS,default=*"`
	MigrateOnStart  bool     `env:"MIGRATE_ON_START,default=true"`
}

// LoadAPIConfig constructs an APIConfig from environment variables.
func LoadAPIConfig() (APIConfig, error) {
	var cfg APIConfig
	if err := Load(&cfg); err != nil {
		return APIConfig{}, err
	}
	cfg.Algorithm = strings.ToUpper(strings.TrimSpace(cfg.Algorithm))
	if err := cfg.Validate(); err != nil {
		return APIConfig{}, err
	}
	return cfg, nil
}

// AccessTokenTTL is the lifetime of issued bearer tokens.
func (c APIConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// Validate rejects configurations the API cannot run with.
func (c APIConfig) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("SECRET_KEY is required")
	}
	if c.Environment == "production" && c.SecretKey == defaultSecretKey {
		return errors.New("SECRET_KEY must be changed in production")
	}
	if _, ok := supportedAlgorithms[c.Algorithm]; !ok {
		return fmt.Errorf("unsupported ALGORITHM %q", c.Algorithm)
	}
	if c.TokenTTLMinutes <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	return nil
}
