// Package config provides environment-driven configuration for the intake
// backend.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every externally configurable setting. All fields are
// optional; the absence of the database URL together with the production
// webhook switches the whole system into mock mode.
type Config struct {
	Port int

	// DatabaseURL is the PostgreSQL connection string. Empty means no
	// backing store is configured.
	DatabaseURL string

	// Webhook endpoints of the external workflow engine.
	TestWebhookURL       string
	ProductionWebhookURL string

	// WebhookSecret, when set, is sent as X-Webhook-Secret on outbound
	// dispatches.
	WebhookSecret string

	// AnalyticsEndpoint, when set, receives analytics events as JSON POSTs.
	AnalyticsEndpoint string

	// RedisURL enables the result-view cache when set.
	RedisURL string

	// DispatchTimeout bounds a single webhook POST.
	DispatchTimeout time.Duration
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		Port:                 getEnvInt("PORT", 8080),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		TestWebhookURL:       os.Getenv("N8N_TEST_WEBHOOK"),
		ProductionWebhookURL: os.Getenv("N8N_PRODUCTION_WEBHOOK"),
		WebhookSecret:        os.Getenv("N8N_WEBHOOK_SECRET"),
		AnalyticsEndpoint:    os.Getenv("ANALYTICS_ENDPOINT"),
		RedisURL:             os.Getenv("REDIS_URL"),
		DispatchTimeout:      getEnvDuration("WEBHOOK_TIMEOUT", 30*time.Second),
	}
}

// MockMode reports whether the backend should run without persistence or
// dispatch. This mirrors the intake contract: no database plus no production
// webhook means demo operation only.
func (c *Config) MockMode() bool {
	return c.DatabaseURL == "" || c.ProductionWebhookURL == ""
}

// WebhookURL resolves the dispatch target for an environment. Returns an
// empty string when the environment has no configured endpoint.
func (c *Config) WebhookURL(environment string) string {
	if environment == "test" {
		return c.TestWebhookURL
	}
	return c.ProductionWebhookURL
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
