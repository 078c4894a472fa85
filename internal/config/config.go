// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	FrontendURL    string
	DBPath         string
	AllowedOrigins []string
	Upstream       UpstreamConfig
	Cache          CacheConfig
	History        HistoryConfig
	RateLimit      RateLimitConfig
}

// UpstreamConfig points at the chatbot REST API.
type UpstreamConfig struct {
	BaseURL     string
	Timeout     time.Duration // per request ceiling for every endpoint
	ChatTimeout time.Duration // tighter bound for POST /chat
}

// CacheConfig sizes the reply cache.
type CacheConfig struct {
	MaxSize       int
	TTL           time.Duration
	SweepInterval time.Duration
}

// HistoryConfig bounds persisted chat history.
type HistoryConfig struct {
	MaxSessions int
}

// RateLimitConfig throttles chat turns per user.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
		DBPath:         getEnv("DB_PATH", "./data/adolai.db"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		Upstream: UpstreamConfig{
			BaseURL:     getEnv("UPSTREAM_API_URL", "http://localhost:8000"),
			Timeout:     getEnvDuration("UPSTREAM_TIMEOUT", 45*time.Second),
			ChatTimeout: getEnvDuration("CHAT_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			MaxSize:       getEnvInt("CACHE_MAX_SIZE", 50),
			TTL:           getEnvDuration("CACHE_TTL", 5*time.Minute),
			SweepInterval: getEnvDuration("CACHE_SWEEP_INTERVAL", time.Minute),
		},
		History: HistoryConfig{
			MaxSessions: getEnvInt("HISTORY_MAX_SESSIONS", 50),
		},
		RateLimit: RateLimitConfig{
			PerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 20),
			Burst:     getEnvInt("RATE_LIMIT_BURST", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("UPSTREAM_API_URL cannot be empty")
	}
	if c.Upstream.Timeout <= 0 || c.Upstream.ChatTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT and CHAT_TIMEOUT must be > 0")
	}
	if c.Cache.MaxSize <= 0 {
		return fmt.Errorf("CACHE_MAX_SIZE must be > 0")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be > 0")
	}
	if c.History.MaxSessions <= 0 {
		return fmt.Errorf("HISTORY_MAX_SESSIONS must be > 0")
	}
	if c.RateLimit.PerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("30s") or bare milliseconds ("300000").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
