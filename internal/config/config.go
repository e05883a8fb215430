// Package config loads the gateway configuration from the environment.
//
// Values come from environment variables first, then from an optional .env
// file in the working directory, then from the defaults below.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all gateway configuration. It is not modified after Load returns.
type Config struct {
	Addr string // HTTP listen address

	// Classification service
	ServiceBaseURL string
	HTTPTimeout    time.Duration

	// Dashboard refresh
	RefreshInterval time.Duration
	PageSize        int
	DecodeCacheSize int
	DecodeCacheTTL  time.Duration

	// Redis fan-out, disabled when RedisAddr is empty
	RedisAddr    string
	RedisChannel string

	ShutdownTimeout time.Duration
	LogDevelopment  bool
}

// Load reads the configuration and validates it
func Load() (*Config, error) {
	// A missing .env file is fine; existing env vars are never overridden
	_ = godotenv.Load()

	cfg := &Config{
		Addr: getEnvOrDefault("ADDR", ":8080"),

		ServiceBaseURL: getEnvOrDefault("CIVISENSE_API_URL", "https://civisense-2-api.onrender.com"),
		HTTPTimeout:    getEnvDuration("HTTP_TIMEOUT", 30*time.Second),

		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 5*time.Second),
		PageSize:        getEnvInt("PAGE_SIZE", 10),
		DecodeCacheSize: getEnvInt("DECODE_CACHE_SIZE", 512),
		DecodeCacheTTL:  getEnvDuration("DECODE_CACHE_TTL", time.Hour),

		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisChannel: getEnvOrDefault("REDIS_CHANNEL", "civisense:dashboard"),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		LogDevelopment:  getEnvBool("LOG_DEVELOPMENT", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that values are usable
func (c *Config) Validate() error {
	if c.ServiceBaseURL == "" {
		return fmt.Errorf("CIVISENSE_API_URL cannot be empty")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be at least 1, got %d", c.PageSize)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive, got %s", c.RefreshInterval)
	}
	if c.DecodeCacheSize < 1 {
		return fmt.Errorf("DECODE_CACHE_SIZE must be at least 1, got %d", c.DecodeCacheSize)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings like "5s" or "1h30m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
