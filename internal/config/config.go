// Package config loads the dashboard process configuration from the
// environment, with an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the dashboard process configuration.
type Config struct {
	// Port the HTTP surface listens on.
	Port string

	// Environment name for telemetry ("development", "production").
	Environment string

	// BackendURL is the insight backend base URL.
	BackendURL string

	// FallbackCity is used when no position can be resolved.
	FallbackCity string

	// GeolocationAllowed maps the platform permission: when false the
	// resolver reports a denial and the fallback city applies.
	GeolocationAllowed bool

	// GeolocationURL is the IP geolocation service base URL.
	GeolocationURL string

	// ResolveTimeout bounds the wait for a position fix.
	ResolveTimeout time.Duration

	// PositionMaxAge is the acceptable staleness of a cached fix.
	PositionMaxAge time.Duration

	// WaitForBackend probes the backend health endpoint at startup.
	WaitForBackend bool

	// TelemetryEnabled turns on OTLP export.
	TelemetryEnabled bool

	// OTLPEndpoint is the OTLP gRPC collector endpoint.
	OTLPEndpoint string
}

// Load reads configuration from environment with sensible defaults.
// A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getenvDefault("APP_PORT", "8080"),
		Environment:        getenvDefault("APP_ENV", "development"),
		BackendURL:         getenvDefault("BACKEND_URL", "http://localhost:8000"),
		FallbackCity:       getenvDefault("FALLBACK_CITY", "Chennai"),
		GeolocationAllowed: getenvBool("GEOLOCATION_ALLOWED", true),
		GeolocationURL:     getenvDefault("GEOLOCATION_URL", "http://ip-api.com"),
		WaitForBackend:     getenvBool("WAIT_FOR_BACKEND", false),
		TelemetryEnabled:   getenvBool("OTEL_ENABLED", false),
		OTLPEndpoint:       getenvDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	var err error
	if cfg.ResolveTimeout, err = getenvDuration("RESOLVE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.PositionMaxAge, err = getenvDuration("POSITION_MAX_AGE", 5*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
