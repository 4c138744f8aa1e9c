package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Tier is a named rate limit applied to a group of endpoints. Limit <= 0
// means unlimited.
type Tier struct {
	Name   string
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds limiter configuration.
type Config struct {
	Enabled         bool
	CleanupInterval time.Duration
	Trusted         map[string]bool
	Blocked         map[string]bool

	submitTier   Tier
	callbackTier Tier
	readTier     Tier
}

// matchTier maps a request to its tier. Submissions are the most expensive
// path (each one fans out to the workflow webhook), callbacks arrive from a
// small set of workflow engines, and reads are driven by status polling.
func (c *Config) matchTier(path, method string) Tier {
	switch {
	case path == "/health":
		return Tier{Name: "health"}
	case path == "/submit" && method == "POST":
		return c.submitTier
	case path == "/sync" && method == "PATCH":
		return c.callbackTier
	default:
		return c.readTier
	}
}

// LoadConfig builds limiter configuration from environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	cfg := defaultConfig()
	cfg.CleanupInterval = getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.Trusted = parseIPList(os.Getenv("RATE_LIMIT_TRUSTED"))
	cfg.Blocked = parseIPList(os.Getenv("RATE_LIMIT_BLOCKED"))
	cfg.submitTier.Limit = getEnvInt("RATE_LIMIT_SUBMIT_LIMIT", cfg.submitTier.Limit)
	cfg.callbackTier.Limit = getEnvInt("RATE_LIMIT_SYNC_LIMIT", cfg.callbackTier.Limit)
	cfg.readTier.Limit = getEnvInt("RATE_LIMIT_READ_LIMIT", cfg.readTier.Limit)
	return cfg
}

func defaultConfig() *Config {
	return &Config{
		Enabled:         true,
		CleanupInterval: 5 * time.Minute,
		Trusted:         make(map[string]bool),
		Blocked:         make(map[string]bool),
		submitTier:      Tier{Name: "submit", Limit: 20, Window: time.Hour, Burst: 5},
		callbackTier:    Tier{Name: "callback", Limit: 120, Window: time.Minute, Burst: 20},
		// The web client polls status every 5 seconds, so reads need a
		// generous steady rate.
		readTier: Tier{Name: "read", Limit: 300, Window: time.Minute, Burst: 60},
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
