// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig
	Cache   CacheConfig
	UserDB  UserDBConfig
	MusicDB MusicDBConfig
	Spotify SpotifyConfig
	Log     LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host    string
	Port    int
	GinMode string
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheConfig holds Redis result-cache configuration.
type CacheConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// UserDBConfig holds the Postgres credential-store configuration.
type UserDBConfig struct {
	DSN           string
	EncryptionKey string
}

// MusicDBConfig holds the MongoDB metadata-store configuration.
type MusicDBConfig struct {
	URI      string
	Database string
}

// SpotifyConfig holds the upstream platform credentials and tuning knobs.
type SpotifyConfig struct {
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	RequestRate   float64
	RequestBurst  int
	TokenLifetime time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvAsInt("SERVER_PORT", 8080),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		Cache: CacheConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 3600)) * time.Second,
		},
		UserDB: UserDBConfig{
			DSN:           getEnv("POSTGRES_DSN", "postgres://localhost:5432/groove?sslmode=disable"),
			EncryptionKey: getEnv("TOKEN_ENCRYPTION_KEY", ""),
		},
		MusicDB: MusicDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "groove"),
		},
		Spotify: SpotifyConfig{
			ClientID:      getEnv("SPOTIFY_CLIENT_ID", ""),
			ClientSecret:  getEnv("SPOTIFY_CLIENT_SECRET", ""),
			RedirectURL:   getEnv("SPOTIFY_REDIRECT_URL", "http://localhost:8080/api/v1/auth/callback"),
			RequestRate:   getEnvAsFloat("SPOTIFY_REQUEST_RATE", 10),
			RequestBurst:  getEnvAsInt("SPOTIFY_REQUEST_BURST", 5),
			TokenLifetime: time.Duration(getEnvAsInt("SPOTIFY_TOKEN_LIFETIME_SECONDS", 3600)) * time.Second,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if cfg.Spotify.ClientID == "" || cfg.Spotify.ClientSecret == "" {
		return nil, fmt.Errorf("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required")
	}

	return cfg, nil
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as a float with a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
