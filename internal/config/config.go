// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// DatabaseURL, when set, wins over the individual POSTGRES_* values.
	DatabaseURL string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible) for idempotent order replay. Empty host
	// disables it.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// HTTP surface
	CORSOrigins        []string
	RateLimitPerMinute int
	// TrustProxy makes the server take the client address from
	// X-Forwarded-For / X-Real-IP. Enable only behind a proxy that sets them.
	TrustProxy bool
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("PORT", envOrDefault("APP_PORT", "8080")),
		Env:  envOrDefault("APP_ENV", "development"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "lavanderia"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "lavanderia"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		CORSOrigins: splitList(envOrDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")),
	}

	limit, err := strconv.Atoi(envOrDefault("RATE_LIMIT_PER_MINUTE", "120"))
	if err != nil || limit <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be a positive integer")
	}
	cfg.RateLimitPerMinute = limit

	trust, err := strconv.ParseBool(envOrDefault("TRUST_PROXY", "false"))
	if err != nil {
		return nil, fmt.Errorf("TRUST_PROXY must be a boolean")
	}
	cfg.TrustProxy = trust

	if cfg.Env == "production" {
		if cfg.DatabaseURL == "" && cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("DATABASE_URL or POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ValkeyEnabled reports whether a Valkey host was configured.
func (c *Config) ValkeyEnabled() bool {
	return c.ValkeyHost != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
