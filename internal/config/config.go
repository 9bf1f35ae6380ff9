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
	AppMode   string
	Port      string
	EnvLoaded bool
	Database  DatabaseConfig
	Session   SessionConfig
	Export    ExportConfig
	Log       LogConfig
	Admin     AdminConfig
	Cookie    CookieConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string
}

// SessionConfig holds session lifetime and cleanup settings
type SessionConfig struct {
	AccessTTL       time.Duration
	RememberTTL     time.Duration
	RetentionDays   int
	CleanupSchedule string
}

// ExportConfig holds export file settings
type ExportConfig struct {
	Dir           string
	Secret        string
	LinkTTL       time.Duration
	PurgeSchedule string
	MaxRecords    int
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string
}

// AdminConfig holds credentials of the seeded admin account
type AdminConfig struct {
	Username string
	Email    string
	Password string
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// .env is optional; plain environment variables are used when it is missing
	envLoaded := godotenv.Load() == nil

	// trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	database, err := loadDatabaseConfig(appMode)
	if err != nil {
		return nil, err
	}

	config := &Config{
		AppMode:   appMode,
		Port:      getEnv("PORT", "3000"),
		EnvLoaded: envLoaded,
		Database:  database,
		Session:   loadSessionConfig(),
		Export:    loadExportConfig(appMode),
		Log:       LogConfig{Level: getEnv("LOG_LEVEL", "info")},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Email:    getEnv("ADMIN_EMAIL", "admin@idle-resource-hub.local"),
			Password: getEnv("ADMIN_PASSWORD", "admin123456"),
		},
		Cookie: loadCookieConfig(appMode),
	}

	AppConfig = config
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) (DatabaseConfig, error) {
	prefix := modePrefix(mode)

	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))
	defaultPort := "3306"
	switch driver {
	case "mysql":
	case "postgres":
		defaultPort = "5432"
	case "sqlite":
		defaultPort = ""
	default:
		return DatabaseConfig{}, fmt.Errorf("invalid DB_DRIVER: '%s' (must be mysql, postgres or sqlite)", driver)
	}

	return DatabaseConfig{
		Driver:   driver,
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", defaultPort),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "idle_resource_hub"),
		SSLMode:  getEnv(prefix+"DB_SSLMODE", "disable"),
		Path:     getEnv(prefix+"DB_PATH", "idle_resource_hub.db"),
	}, nil
}

// loadSessionConfig loads session lifetimes
func loadSessionConfig() SessionConfig {
	accessSecs := getEnvInt("SESSION_TTL_SECONDS", 3600)
	rememberSecs := getEnvInt("SESSION_REMEMBER_TTL_SECONDS", 7*24*3600)

	return SessionConfig{
		AccessTTL:       time.Duration(accessSecs) * time.Second,
		RememberTTL:     time.Duration(rememberSecs) * time.Second,
		RetentionDays:   getEnvInt("SESSION_RETENTION_DAYS", 30),
		CleanupSchedule: getEnv("SESSION_CLEANUP_SCHEDULE", "0 3 * * *"),
	}
}

// loadExportConfig loads export settings based on mode
func loadExportConfig(mode string) ExportConfig {
	prefix := modePrefix(mode)

	return ExportConfig{
		Dir:           getEnv("EXPORT_DIR", "exports"),
		Secret:        getEnv(prefix+"EXPORT_SECRET", "default_export_secret"),
		LinkTTL:       time.Duration(getEnvInt("EXPORT_LINK_TTL_MINUTES", 60)) * time.Minute,
		PurgeSchedule: getEnv("EXPORT_PURGE_SCHEDULE", "30 * * * *"),
		MaxRecords:    getEnvInt("EXPORT_MAX_RECORDS", 10000),
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	secure, _ := strconv.ParseBool(getEnv(modePrefix(mode)+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable, falling back on parse errors
func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://hr.idle-resource-hub.local"
	}
	return origins
}
