package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Public site domain used when building short links
	SiteDomain string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration; empty RedisAddr disables redis-backed
	// features (rate limiting, short-link cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Image storage: S3 when bucket is set, local disk otherwise
	S3Bucket  string
	AWSRegion string
	MediaDir  string
}

// Load builds the configuration from the environment, with an optional
// .env file and Docker-secrets fallback for sensitive values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),
		SiteDomain: getEnv("SITE_DOMAIN", "localhost:8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnvOrSecret("DB_PASSWORD", "db_password"),
		DBName:     getEnv("DB_NAME", "platefull"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: getEnvOrSecret("REDIS_PASSWORD", "redis_password"),
		RedisDB:       0,
		RedisURL:      os.Getenv("REDIS_URL"),

		JWTSecret: getEnvOrSecret("JWT_SECRET", "jwt_secret"),

		S3Bucket:  os.Getenv("S3_BUCKET_NAME"),
		AWSRegion: os.Getenv("AWS_REGION"),
		MediaDir:  getEnv("MEDIA_DIR", "media"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

// getEnv returns the environment value or a default
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvOrSecret prefers the environment variable and falls back to a
// Docker secret file of the given name.
func getEnvOrSecret(key, secretName string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return readSecret(secretName)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
