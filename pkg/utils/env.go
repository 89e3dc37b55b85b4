package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Getenv retrieves the value of the environment variable named by the key.
// If the variable is not present or its value is empty, Getenv returns the fallback string.
func Getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if len(value) == 0 {
		return fallback
	}
	return value
}

// GetenvInt is Getenv for integers. Unparseable values fall back with a warning.
func GetenvInt(key string, fallback int) int {
	raw := Getenv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		LogWarn("Ignoring non-integer environment value", map[string]interface{}{"key": key, "value": raw})
		return fallback
	}
	return value
}

// GetenvDuration is Getenv for time.Duration values such as "12h".
func GetenvDuration(key string, fallback time.Duration) time.Duration {
	raw := Getenv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		LogWarn("Ignoring invalid duration environment value", map[string]interface{}{"key": key, "value": raw})
		return fallback
	}
	return value
}
