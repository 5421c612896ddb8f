package util

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// GetEnv returns the value of the environment variable with the given key or
// the provided default value if the variable is unset.
func GetEnv(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}

	return defaultVal
}

// GetEnvAsInt returns the environment variable parsed as int or the default value.
func GetEnvAsInt(key string, defaultVal int) int {
	strVal, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}

	val, err := strconv.Atoi(strVal)
	if err != nil {
		log.Warn().Str("key", key).Str("value", strVal).Msg("Failed to parse env var as int, using default")
		return defaultVal
	}

	return val
}

// GetEnvAsBool returns the environment variable parsed as bool or the default value.
func GetEnvAsBool(key string, defaultVal bool) bool {
	strVal, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}

	val, err := strconv.ParseBool(strVal)
	if err != nil {
		log.Warn().Str("key", key).Str("value", strVal).Msg("Failed to parse env var as bool, using default")
		return defaultVal
	}

	return val
}

// GetEnvAsDuration returns the environment variable parsed via time.ParseDuration
// (e.g. "5m", "24h") or the default value.
func GetEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	strVal, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}

	val, err := time.ParseDuration(strVal)
	if err != nil {
		log.Warn().Str("key", key).Str("value", strVal).Msg("Failed to parse env var as duration, using default")
		return defaultVal
	}

	return val
}

// GetEnvAsStringArr returns the environment variable split on the separator
// (default ",") or the default value. Empty entries are dropped.
func GetEnvAsStringArr(key string, defaultVal []string, separator ...string) []string {
	strVal, ok := os.LookupEnv(key)
	if !ok || strVal == "" {
		return defaultVal
	}

	sep := ","
	if len(separator) > 0 {
		sep = separator[0]
	}

	parts := strings.Split(strVal, sep)
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			res = append(res, trimmed)
		}
	}

	if len(res) == 0 {
		return defaultVal
	}

	return res
}
