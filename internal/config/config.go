package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NATS      NATSConfig
	App       AppConfig
	Retention RetentionConfig
	Admin     AdminConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds the Postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	TenantTTL time.Duration
}

// Addr returns host:port for the Redis client.
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL     string
	Enabled bool
}

// AppConfig holds application configuration
type AppConfig struct {
	Environment string
	LogLevel    string
	BaseDomain  string
}

// RetentionConfig holds audit retention configuration
type RetentionConfig struct {
	Days            int
	CleanupEnabled  bool
	CleanupSchedule string
}

// AdminConfig holds the cross-tenant administrative surface configuration.
// APIKeyHash is a bcrypt hash of the admin API key; the plaintext key is
// never stored.
type AdminConfig struct {
	APIKeyHash string
}

// New loads configuration from the environment, reading a .env file first
// when one is present.
func New() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host: getEnvWithDefault("SERVER_HOST", "0.0.0.0"),
			Port: getEnvWithDefault("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnvWithDefault("DB_HOST", "localhost"),
			Port:     getEnvWithDefault("DB_PORT", "5432"),
			User:     getEnvWithDefault("DB_USER", "postgres"),
			Password: getEnvWithDefault("DB_PASSWORD", "postgres"),
			Name:     getEnvWithDefault("DB_NAME", "juridicai"),
			SSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:      getEnvWithDefault("REDIS_HOST", "localhost"),
			Port:      getEnvWithDefault("REDIS_PORT", "6379"),
			Password:  getEnvWithDefault("REDIS_PASSWORD", ""),
			DB:        getEnvAsIntWithDefault("REDIS_DB", 0),
			TenantTTL: getEnvAsDurationWithDefault("TENANT_CACHE_TTL", 5*time.Minute),
		},
		NATS: NATSConfig{
			URL:     getEnvWithDefault("NATS_URL", "nats://localhost:4222"),
			Enabled: getEnvAsBoolWithDefault("NATS_ENABLED", true),
		},
		App: AppConfig{
			Environment: getEnvWithDefault("APP_ENV", "development"),
			LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
			BaseDomain:  getEnvWithDefault("BASE_DOMAIN", "juridicai.com.br"),
		},
		Retention: RetentionConfig{
			Days:            getEnvAsIntWithDefault("AUDIT_RETENTION_DAYS", 365),
			CleanupEnabled:  getEnvAsBoolWithDefault("AUDIT_CLEANUP_ENABLED", true),
			CleanupSchedule: getEnvWithDefault("AUDIT_CLEANUP_SCHEDULE", "0 0 2 * * *"),
		},
		Admin: AdminConfig{
			APIKeyHash: getEnvWithDefault("ADMIN_API_KEY_HASH", ""),
		},
	}
}

// getEnvWithDefault gets environment variable with a default fallback
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault gets environment variable as integer with default fallback
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBoolWithDefault gets environment variable as boolean with default fallback
func getEnvAsBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDurationWithDefault gets environment variable as duration with default fallback
func getEnvAsDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
