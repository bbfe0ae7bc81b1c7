package config

import (
	"os"
	"time"
)

// CacheConfig defines settings for the course read cache. When
// Enabled is false or no Redis client is configured, the browse
// endpoints hit the database on every request. TTL bounds how stale a
// cached course can get should an invalidation ever be missed.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: getenv("CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("CACHE_TTL", "10m")),
		Prefix:  getenv("CACHE_PREFIX", "course"),
	}
}

// Helper functions shared with ratelimit.go.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
