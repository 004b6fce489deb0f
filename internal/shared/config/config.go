package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the gateway process.
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Caching
	CacheTTLSeconds int

	// Rate limiting defaults, applied lazily the first time a tenant calls.
	DefaultMaxRequestsPerHour int
	DefaultMaxTokensPerDay    int
	DefaultMaxCostPerMonth    float64

	// Vendor HTTP timeout in seconds.
	VendorTimeoutSeconds int

	// Optional pricing override file (YAML). Empty means built-in table only.
	PricingFile string
}

// Load loads configuration from environment variables, with an optional
// .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                      getEnv("PORT", "8080"),
		Env:                       getEnv("ENV", "development"),
		DatabaseURL:               getEnv("DATABASE_URL", ""),
		RedisURL:                  getEnv("REDIS_URL", "redis://localhost:6379"),
		CacheTTLSeconds:           getEnvInt("CACHE_TTL_SECONDS", 7*24*3600),
		DefaultMaxRequestsPerHour: getEnvInt("DEFAULT_MAX_REQUESTS_PER_HOUR", 1000),
		DefaultMaxTokensPerDay:    getEnvInt("DEFAULT_MAX_TOKENS_PER_DAY", 1000000),
		DefaultMaxCostPerMonth:    getEnvFloat("DEFAULT_MAX_COST_PER_MONTH", 100.0),
		VendorTimeoutSeconds:      getEnvInt("VENDOR_TIMEOUT_SECONDS", 60),
		PricingFile:               getEnv("PRICING_FILE", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
