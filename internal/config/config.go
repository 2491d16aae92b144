package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	LogLevel   slog.Level

	DefaultCreditLimit float64
	DefaultAPR         float64

	AuditEnabled bool
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSSLMode    string
}

// Load reads an optional .env file, then the environment.
func Load(files ...string) Config {
	// a missing .env is fine, the environment still applies
	_ = godotenv.Load(files...)

	return Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		LogLevel:           parseLevel(getEnv("LOG_LEVEL", "info")),
		DefaultCreditLimit: getEnvFloat("DEFAULT_CREDIT_LIMIT", 1000),
		DefaultAPR:         getEnvFloat("DEFAULT_APR", 0.35),
		AuditEnabled:       getEnvBool("AUDIT_ENABLED", false),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", "password"),
		DBName:             getEnv("DB_NAME", "credit_ledger"),
		DBSSLMode:          getEnv("DB_SSLMODE", "disable"),
	}
}

// DSN is the lib/pq connection string for the audit database.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// getEnv fetches environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
