// Package config provides configuration loading and management for the application.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// HTTP server port
	Port string

	// Logging settings (text|json, debug|info|warn|error)
	LogFormat string
	LogLevel  string

	// OpenTelemetry endpoint for observability
	OtelEndpoint string

	// Per-request analysis timeout
	RequestTimeout time.Duration

	// Largest accepted request body in bytes
	MaxBodyBytes int64

	// Rate limiting for the analysis endpoints
	RateLimitRPS   float64
	RateLimitBurst int

	// Whether to expose Prometheus metrics
	EnableMetrics bool
}

// Load creates a new Config from environment variables
func Load() Config {
	return Config{
		Port:           GetEnvOrDefault("PORT", "8080"),
		LogFormat:      strings.ToLower(GetEnvOrDefault("LOG_FORMAT", "text")),
		LogLevel:       strings.ToLower(GetEnvOrDefault("LOG_LEVEL", "info")),
		OtelEndpoint:   GetEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		RequestTimeout: GetEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		MaxBodyBytes:   int64(GetEnvAsInt("MAX_BODY_BYTES", 10<<20)), // 10 MiB
		RateLimitRPS:   GetEnvAsFloat("RATE_LIMIT_RPS", 10.0),
		RateLimitBurst: GetEnvAsInt("RATE_LIMIT_BURST", 20),
		EnableMetrics:  GetEnvAsBool("ENABLE_METRICS", true),
	}
}

// GetEnv retrieves an environment variable and whether it exists
func GetEnv(key string) (string, bool) {
	value, exists := os.LookupEnv(key)
	return value, exists
}

// GetEnvOrDefault retrieves an environment variable or returns the default value if not set
func GetEnvOrDefault(key, defaultValue string) string {
	if value, exists := GetEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt retrieves an environment variable as an integer with a default value
func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := GetEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvAsFloat retrieves an environment variable as a float with a default value
func GetEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := GetEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// GetEnvAsDuration retrieves an environment variable as a duration with a default value
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := GetEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// GetEnvAsBool retrieves an environment variable as a boolean with a default value
func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := GetEnv(key); exists {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
