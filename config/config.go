package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Database configuration
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Redis configuration
	RedisHost     string
	RedisPassword string
	RedisPort     string

	// API server
	APIPort string

	// Webhook notifications
	WebhookURL     string
	WebhookEnabled bool

	// Forecast configuration
	Forecast ForecastConfig
}

// ForecastConfig holds pipeline parameters and thresholds
type ForecastConfig struct {
	// Composite score weights. Fractional; expected to sum to 1.
	StatWeight       float64
	CycleWeight      float64
	PersonalWeight   float64
	NumerologyWeight float64
	AstroWeight      float64

	// Background runner
	RunIntervalMinutes int
	RunnerEnabled      bool

	// Reference-set cache TTL
	ReferenceCacheTTLMinutes int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		// Database configuration
		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "mybestodds"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "mybestodds"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", "mybestodds123"),

		// Redis configuration
		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		APIPort: getEnvOrDefault("API_PORT", "8080"),

		WebhookURL:     getEnvOrDefault("WEBHOOK_URL", ""),
		WebhookEnabled: getEnvOrDefault("WEBHOOK_ENABLED", "false") == "true",

		// Forecast configuration
		Forecast: ForecastConfig{
			StatWeight:       getEnvFloat("FORECAST_STAT_WEIGHT", 0.30),
			CycleWeight:      getEnvFloat("FORECAST_CYCLE_WEIGHT", 0.20),
			PersonalWeight:   getEnvFloat("FORECAST_PERSONAL_WEIGHT", 0.20),
			NumerologyWeight: getEnvFloat("FORECAST_NUMEROLOGY_WEIGHT", 0.15),
			AstroWeight:      getEnvFloat("FORECAST_ASTRO_WEIGHT", 0.15),

			RunIntervalMinutes: getEnvInt("FORECAST_RUN_INTERVAL", 60),
			RunnerEnabled:      getEnvOrDefault("FORECAST_RUNNER_ENABLED", "true") == "true",

			ReferenceCacheTTLMinutes: getEnvInt("FORECAST_REF_CACHE_TTL", 30),
		},
	}
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvFloat gets environment variable as float64 or returns default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var floatValue float64
	if _, err := fmt.Sscanf(value, "%f", &floatValue); err != nil {
		return defaultValue
	}
	return floatValue
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
