package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/omriShneor/whatsapp_eventer/internal/timeutil"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

type Config struct {
	HTTPPort int
	DBPath   string
	// Timezone names the zone detected events are resolved in. Unknown
	// names fall back to UTC at resolution time.
	Timezone string
	LogLevel string
	// Source is written into the source field of every calendar entry.
	Source  string
	DevMode bool
}

func LoadFromEnv() *Config {
	return &Config{
		HTTPPort: getEnvAsIntOrDefault("EVENTER_HTTP_PORT", 8080),
		DBPath:   getEnvOrDefault("EVENTER_DB_PATH", "./eventer.db"),
		Timezone: getEnvOrDefault("EVENTER_TIMEZONE", "Asia/Jerusalem"),
		LogLevel: getEnvOrDefault("EVENTER_LOG_LEVEL", "info"),
		Source:   getEnvOrDefault("EVENTER_SOURCE", "WhatsAppEventer"),
		DevMode:  getEnvAsBoolOrDefault("EVENTER_DEV_MODE", false),
	}
}

// SlogLevel maps LogLevel to a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Location resolves Timezone. The flag reports a fallback to UTC.
func (c *Config) Location() (*time.Location, bool) {
	return timeutil.ResolveLocation(c.Timezone)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
