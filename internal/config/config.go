package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port         string
	Environment  string
	LogLevel     slog.Level
	RedisURL     string
	Seed         int64 // 0 picks a seed per session
	StartLevel   int
	FailureLevel int
	TickInterval time.Duration
	SessionTTL   time.Duration
	TuningFile   string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379"),
		Seed:         getEnvInt64("SEED", 0),
		StartLevel:   int(getEnvInt64("START_LEVEL", 1)),
		FailureLevel: int(getEnvInt64("FAILURE_LEVEL", 1)),
		TickInterval: getEnvDuration("TICK_INTERVAL", 20*time.Millisecond),
		SessionTTL:   getEnvDuration("SESSION_TTL", 2*time.Hour),
		TuningFile:   getEnv("TUNING_FILE", ""),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		slog.Warn("Invalid integer in environment, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Warn("Invalid duration in environment, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return d
}
