// Package config provides configuration management for the planmark server.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the server.
type Config struct {
	// Server configuration
	Port            string
	Env             string
	RequestTimeout  time.Duration
	MaxUploadSizeMB int

	// Database configuration
	DatabaseURL string
	DBDebug     bool

	// CORS configuration
	CORSOrigin string

	// Design history
	HistoryLimit int

	// Region capture
	RegionMaxDimension int // px, longest side of a resampled capture
	RegionMinSize      int // px, selections this small or smaller are rejected

	// OCR
	OCREnabled  bool
	OCRLanguage string
}

// Load loads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		// Server
		Port:            getEnv("PORT", "4000"),
		Env:             getEnv("ENV", "development"),
		RequestTimeout:  time.Duration(getEnvInt("REQUEST_TIMEOUT", 60)) * time.Second,
		MaxUploadSizeMB: getEnvInt("MAX_UPLOAD_SIZE_MB", 50),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "file:./planmark.db"),
		DBDebug:     getEnvBool("DB_DEBUG", false),

		// CORS
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3000"),

		// History
		HistoryLimit: getEnvInt("HISTORY_LIMIT", 100),

		// Region capture
		RegionMaxDimension: getEnvInt("REGION_MAX_DIMENSION", 2048),
		RegionMinSize:      getEnvInt("REGION_MIN_SIZE", 10),

		// OCR
		OCREnabled:  getEnvBool("OCR_ENABLED", false),
		OCRLanguage: getEnv("OCR_LANGUAGE", "eng"),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMB) << 20
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default value.
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
