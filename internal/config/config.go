// Package config provides application configuration loaded from environment variables.
package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Mail       MailConfig
	Validation ValidationConfig
	App        AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds the connection settings. A DSN starting with
// postgres:// selects the PostgreSQL driver; anything else is treated as a
// sqlite file path.
type DatabaseConfig struct {
	DSN string
}

// MailConfig holds outbound SMTP settings for password-reset email.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
	Author   string
	BaseURL  string // public base URL embedded in reset links
}

// ValidationConfig holds the minimum lengths for user-supplied fields,
// each independently configurable.
type ValidationConfig struct {
	MinEmail    int
	MinName     int
	MinPassword int
	MinUsername int
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool
	Migrations bool
}

// Load reads configuration from environment variables with development
// defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			DSN: getEnv("DATABASE_DSN", "hubsync.db"),
		},
		Mail: MailConfig{
			Host:     getEnv("MAIL_SERVER", "smtp.example.com"),
			Port:     getEnvInt("MAIL_PORT", 465),
			Username: getEnv("MAIL_USERNAME", ""),
			Password: getEnv("MAIL_PASSWORD", ""),
			Sender:   getEnv("MAIL_SENDER", "no-reply@hubsync.local"),
			Author:   getEnv("MAIL_AUTHOR", "Auth HubSync"),
			BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
		},
		Validation: ValidationConfig{
			MinEmail:    getEnvInt("MIN_EMAIL_LENGTH", 5),
			MinName:     getEnvInt("MIN_NAME_LENGTH", 2),
			MinPassword: getEnvInt("MIN_PASSWORD_LENGTH", 3),
			MinUsername: getEnvInt("MIN_USERNAME_LENGTH", 2),
		},
		App: AppConfig{
			Dev:        getEnvBool("DEV", true),
			Migrations: getEnvBool("MIGRATIONS", false),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
