// Package config handles application configuration via environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all configurable values for the app.
type Config struct {
	Env               string
	Addr              string
	DatabaseURL       string
	TrackerEndpoint   string
	TrackerAPIKey     string
	TelemetryCacheTTL time.Duration
	DollarsPerHour    float64
}

// Load reads environment variables and populates a Config struct.
func Load() *Config {
	ttl, err := time.ParseDuration(getEnv("TELEMETRY_CACHE_TTL", "30s"))
	if err != nil {
		log.Panicf("Invalid TELEMETRY_CACHE_TTL: %v", err)
	}

	dollarsPerHour, err := strconv.ParseFloat(getEnv("DOLLARS_PER_HOUR", "5"), 64)
	if err != nil {
		log.Panicf("Invalid DOLLARS_PER_HOUR: %v", err)
	}

	return &Config{
		Env:               getEnv("ENV", "development"),
		Addr:              getEnv("ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", "host=localhost port=5432 user=postgres dbname=island sslmode=disable"),
		TrackerEndpoint:   getEnv("TRACKER_ENDPOINT", "http://localhost:9100/flights"),
		TrackerAPIKey:     getEnv("TRACKER_API_KEY", ""),
		TelemetryCacheTTL: ttl,
		DollarsPerHour:    dollarsPerHour,
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
