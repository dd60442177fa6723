package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration loaded from the environment
type Config struct {
	Env  string
	Port int

	// Telephony provider
	TelnyxAPIKey        string
	TelnyxWebhookSecret string

	// Conversation generation
	OpenAIAPIKey string
	OpenAIModel  string

	// Owner notifications
	NotifyEndpoint string
	NotifyAPIKey   string

	// Admin API authentication
	JWTSecret string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		Port:                getEnvInt("PORT", 8080),
		TelnyxAPIKey:        os.Getenv("TELNYX_API_KEY"),
		TelnyxWebhookSecret: os.Getenv("TELNYX_WEBHOOK_SECRET"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		NotifyEndpoint:      os.Getenv("NOTIFY_ENDPOINT"),
		NotifyAPIKey:        os.Getenv("NOTIFY_API_KEY"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
	}

	if cfg.TelnyxAPIKey == "" {
		return nil, fmt.Errorf("TELNYX_API_KEY is required")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
