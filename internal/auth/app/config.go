package app

import (
	"os"
	"strconv"
	"time"

	"github.com/stafflane/stafflane/pkg/jwtx"
)

type Config struct {
	SigningKey []byte        // Required: HMAC key for token signing, min 32 bytes
	Issuer     string        // Optional: issuer claim for tokens (default: stafflane-auth)
	TOTPIssuer string        // Optional: issuer label in enrollment URIs (default: StaffLane)
	SessionTTL time.Duration // Optional: session token lifetime (default: 1h)

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./auth.db)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		SigningKey:          []byte(os.Getenv("AUTH_SIGNING_KEY")),
		Issuer:              getEnvOrDefault("AUTH_ISSUER", "stafflane-auth"),
		TOTPIssuer:          getEnvOrDefault("AUTH_TOTP_ISSUER", "StaffLane"),
		SessionTTL:          getEnvDurationOrDefault("AUTH_SESSION_TTL", jwtx.DefaultSessionTTL),
		DatabaseFile:        getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
