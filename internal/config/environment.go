package config

import (
	"os"
	"strconv"
	"time"
)

// GetEnv returns the first non-empty variable among keys, or defaultValue.
func GetEnv(defaultValue string, keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return defaultValue
}

// GetEnvAsDuration reads a Go duration ("90s", "5m") or a bare number of
// seconds. Unset or unparsable values yield defaultValue.
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return defaultValue
}
