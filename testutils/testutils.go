package testutils

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"gridbot/config"
)

// LoadTestConfig loads configuration for integration tests from environment variables
func LoadTestConfig() (*config.AppConfig, error) {
	// Try to load environment variables from various possible locations
	_ = godotenv.Load("../.env.test")    // From services/ directory
	_ = godotenv.Load("../../.env.test") // From nested service packages
	_ = godotenv.Load(".env.test")       // From root directory
	_ = godotenv.Load()                  // Default .env file

	databaseURL := os.Getenv("DB_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DB_URL is not set")
	}

	databaseSchema := os.Getenv("DB_SCHEMA")
	if databaseSchema == "" {
		return nil, fmt.Errorf("DB_SCHEMA is not set")
	}

	return &config.AppConfig{
		DatabaseURL:    databaseURL,
		DatabaseSchema: databaseSchema,
	}, nil
}

// GenerateTestChannelID returns a unique fake channel ID so concurrent
// test runs never share history rows.
func GenerateTestChannelID() string {
	return "test-channel-" + uuid.New().String()
}

// GenerateTestUserID returns a unique fake Discord user ID
func GenerateTestUserID() string {
	return "test-user-" + uuid.New().String()
}
