package main

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// serverConfig holds everything the daemon reads from the environment.
type serverConfig struct {
	Port          string
	StoreBackend  string // "redis" or "postgres"
	RedisAddr     string
	RedisPrefix   string
	DatabaseDSN   string
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	SecureCookies bool
	Metrics       bool
}

// loadConfig reads configuration from environment variables with sensible
// defaults. Secrets support the _FILE suffix convention for mounted secret
// files.
func loadConfig() (*serverConfig, error) {
	cfg := &serverConfig{
		Port:          getEnv("PORT", "8080"),
		StoreBackend:  getEnv("STORE_BACKEND", "redis"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPrefix:   getEnv("REDIS_PREFIX", "auth"),
		DatabaseDSN:   getEnv("DATABASE_DSN", ""),
		AccessSecret:  getEnv("ACCESS_TOKEN_SECRET", ""),
		RefreshSecret: getEnv("REFRESH_TOKEN_SECRET", ""),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        getEnv("TOKEN_ISSUER", "sessionauth"),
		SecureCookies: getEnv("SECURE_COOKIES", "true") != "false",
		Metrics:       getEnv("METRICS_ENABLED", "true") != "false",
	}

	if ttl := os.Getenv("ACCESS_TOKEN_TTL"); ttl != "" {
		duration, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid ACCESS_TOKEN_TTL: %w", err)
		}
		cfg.AccessTTL = duration
	}
	if ttl := os.Getenv("REFRESH_TOKEN_TTL"); ttl != "" {
		duration, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid REFRESH_TOKEN_TTL: %w", err)
		}
		cfg.RefreshTTL = duration
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *serverConfig) validate() error {
	if c.AccessSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}
	if c.RefreshSecret == "" {
		return fmt.Errorf("REFRESH_TOKEN_SECRET is required")
	}
	switch c.StoreBackend {
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	case "postgres":
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be redis or postgres, got %q", c.StoreBackend)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a fallback value. A
// KEY_FILE variable pointing at a readable file takes precedence.
func getEnv(key, fallback string) string {
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
