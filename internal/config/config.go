// Package config loads environment configuration and connector definitions.
package config

import (
	"os"

	"github.com/maasanto/pos-import/internal/logger"
)

// Config is the server/CLI environment configuration.
type Config struct {
	Port         string
	DBPath       string
	ConnectorDir string

	LogLevel  string
	LogFormat string
	LogOutput string
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		DBPath:       getEnv("DB_PATH", "posimport.db"),
		ConnectorDir: getEnv("CONNECTOR_DIR", "connectors"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "console"),
		LogOutput:    getEnv("LOG_OUTPUT", "stderr"),
	}
}

// LoggerConfig maps the logging fields onto the logger package's config.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{Level: c.LogLevel, Format: c.LogFormat, Output: c.LogOutput}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
