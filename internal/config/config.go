package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var ErrEmptyEnvironmentVariable = errors.New("empty environment variable")

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Auth     AuthConfig
	Banking  BankingConfig
	Services ServicesConfig
	Redis    RedisConfig
	Phone    PhoneConfig
	Server   ServerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Username string
	Password string
	Name     string
}

// AuthConfig holds session token configuration
type AuthConfig struct {
	SessionJWTSecret string
}

// BankingConfig holds the remote banking service configuration
type BankingConfig struct {
	// BaseURL of the banking API. Defaults to http://localhost:8000 when
	// BANKING_API_URL is not set.
	BaseURL string
}

// ServicesConfig holds external service API keys and configuration
type ServicesConfig struct {
	OpenAIAPIKey   string
	GoogleAIAPIKey string
	WebAppURI      string
	// LanguagePackPath optionally points at a JSON file that overlays the
	// built-in language tables.
	LanguagePackPath string
}

// RedisConfig holds Redis connection settings for shared tool state
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// PhoneConfig holds the Twilio phone channel configuration
type PhoneConfig struct {
	// StreamURL is the public wss:// URL Twilio connects its media stream to.
	// Empty disables the phone channel.
	StreamURL string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
	// TokenRateLimitRPM caps token mint requests per client IP per minute.
	TokenRateLimitRPM int
}

// Load reads and validates all required environment variables
func Load() (*Config, error) {
	// Load env.local in non-production environments
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load("env.local"); err != nil {
			return nil, fmt.Errorf("failed to load env.local: %w", err)
		}
	}

	cfg := &Config{}

	// Database configuration
	var err error
	if cfg.Database.Host, err = requireEnv("DB_HOST"); err != nil {
		return nil, err
	}
	if cfg.Database.Username, err = requireEnv("DB_USERNAME"); err != nil {
		return nil, err
	}
	if cfg.Database.Password, err = requireEnv("DB_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.Database.Name, err = requireEnv("DB_NAME"); err != nil {
		return nil, err
	}

	// Auth configuration
	if cfg.Auth.SessionJWTSecret, err = requireEnv("SESSION_JWT_SECRET"); err != nil {
		return nil, err
	}

	// Banking service configuration
	cfg.Banking.BaseURL = getEnvWithDefault("BANKING_API_URL", "http://localhost:8000")

	// Services configuration
	if cfg.Services.OpenAIAPIKey, err = requireEnv("OPENAI_API_KEY"); err != nil {
		return nil, err
	}
	cfg.Services.GoogleAIAPIKey = os.Getenv("GOOGLE_AI_API_KEY")
	cfg.Services.WebAppURI = getEnvWithDefault("WEBAPP_URI", "http://localhost:3000")
	cfg.Services.LanguagePackPath = os.Getenv("LANGUAGE_PACK_PATH")

	// Redis configuration
	cfg.Redis.Enabled = os.Getenv("REDIS_HOST") != ""
	if cfg.Redis.Enabled {
		cfg.Redis.Host = os.Getenv("REDIS_HOST")
		redisPort := getEnvWithDefault("REDIS_PORT", "6379")
		cfg.Redis.Port, err = strconv.Atoi(redisPort)
		if err != nil {
			return nil, fmt.Errorf("failed to parse REDIS_PORT: %w", err)
		}
		cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
		redisDB := getEnvWithDefault("REDIS_DB", "0")
		cfg.Redis.DB, err = strconv.Atoi(redisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to parse REDIS_DB: %w", err)
		}
	}

	// Phone channel configuration
	cfg.Phone.StreamURL = os.Getenv("PHONE_STREAM_URL")

	// Server configuration
	serverPort := getEnvWithDefault("SERVER_PORT", "8082")
	cfg.Server.Port, err = strconv.Atoi(serverPort)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SERVER_PORT: %w", err)
	}
	tokenRPM := getEnvWithDefault("TOKEN_RATE_LIMIT_RPM", "30")
	cfg.Server.TokenRateLimitRPM, err = strconv.Atoi(tokenRPM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOKEN_RATE_LIMIT_RPM: %w", err)
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s",
		c.Username, c.Password, c.Host, c.Name)
}

// requireEnv retrieves an environment variable or returns an error if empty
func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set: %w", key, ErrEmptyEnvironmentVariable)
	}
	return value, nil
}

// getEnvWithDefault retrieves an environment variable or returns a default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
