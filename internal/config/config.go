package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL   string
	RunMigrations bool

	// Auth (any OIDC issuer exposing JWKS)
	AuthDomain   string
	AuthAudience string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Guest demo
	GuestOnly          bool
	GuestRateLimit     int // requests per minute per client IP
	GuestResetInterval time.Duration

	// S3 Storage (receipts)
	S3 S3Config

	// AMQP (budget and goal alerts)
	AMQP AMQPConfig
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Enabled reports whether receipt storage should be wired
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// AMQPConfig holds the broker used to fan alerts out to the alert worker
type AMQPConfig struct {
	URL      string
	Exchange string
	Queue    string
}

// Enabled reports whether alerts go through the broker
func (c AMQPConfig) Enabled() bool {
	return c.URL != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", false),
		AuthDomain:         getEnv("AUTH_DOMAIN", ""),
		AuthAudience:       getEnv("AUTH_AUDIENCE", ""),
		Port:               getEnv("PORT", "8080"),
		CORSOrigins:        splitAndTrim(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		Env:                getEnv("ENV", "development"),
		GuestOnly:          getEnvBool("GUEST_ONLY", false),
		GuestRateLimit:     getEnvInt("GUEST_RATE_LIMIT", 60),
		GuestResetInterval: getEnvDuration("GUEST_RESET_INTERVAL", time.Hour),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "kantong"),
			Queue:    getEnv("AMQP_QUEUE", "kantong.alerts"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.GuestRateLimit <= 0 {
		return fmt.Errorf("GUEST_RATE_LIMIT must be positive")
	}
	if c.GuestResetInterval < 0 {
		return fmt.Errorf("GUEST_RESET_INTERVAL must not be negative")
	}
	if c.GuestOnly {
		return nil
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.AuthDomain == "" {
		return fmt.Errorf("AUTH_DOMAIN is required")
	}
	if c.AuthAudience == "" {
		return fmt.Errorf("AUTH_AUDIENCE is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
