package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// IsProduction reports whether the service runs with production settings.
func (s ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

// StoreConfig selects the row store backend
type StoreConfig struct {
	Type        string // sheets, postgres or memory
	DatabaseURL string
}

// SheetsConfig holds Google Sheets configuration
type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
}

// DevLoginConfig enables a fixed login that bypasses the Users sheet.
// Only honoured outside production.
type DevLoginConfig struct {
	Enabled  bool
	Username string
	Password string
}

// AuthConfig holds session configuration
type AuthConfig struct {
	JWTSecret    string
	SessionTTL   time.Duration
	CookieName   string
	CookieSecure bool
	DevLogin     DevLoginConfig
}

// RateLimitConfig bounds login attempts per client IP
type RateLimitConfig struct {
	LoginPerMinute int
	LoginBurst     int
}

// ArchiveConfig holds configuration for the deletion archive storage
type ArchiveConfig struct {
	Type         string // local or s3
	LocalPath    string
	S3Bucket     string
	S3Region     string
	AWSAccessKey string
	AWSSecretKey string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// Config holds all configuration
type Config struct {
	ServiceName string
	Server      ServerConfig
	Store       StoreConfig
	Sheets      SheetsConfig
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	Archive     ArchiveConfig
	Log         LogConfig
}

// Load reads .env (current directory, then project root relative to
// cmd/<binary>/) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			fmt.Fprintln(os.Stderr, "Warning: No .env file found, using environment variables")
		}
	}

	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "leadcrm"),
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Store: StoreConfig{
			Type:        strings.ToLower(getEnv("ROW_STORE_TYPE", "sheets")),
			DatabaseURL: getEnv("DATABASE_URL", ""),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   getEnv("GOOGLE_SHEET_ID", ""),
			CredentialsJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("AUTH_JWT_SECRET", ""),
			SessionTTL:   getEnvAsDuration("AUTH_SESSION_TTL", 7*24*time.Hour),
			CookieName:   getEnv("AUTH_COOKIE_NAME", "crm_session"),
			CookieSecure: getEnvAsBool("AUTH_COOKIE_SECURE", false),
			DevLogin: DevLoginConfig{
				Enabled:  getEnvAsBool("AUTH_DEV_LOGIN", false),
				Username: getEnv("AUTH_DEV_USERNAME", ""),
				Password: getEnv("AUTH_DEV_PASSWORD", ""),
			},
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute: getEnvAsInt("LOGIN_RATE_PER_MINUTE", 10),
			LoginBurst:     getEnvAsInt("LOGIN_RATE_BURST", 5),
		},
		Archive: ArchiveConfig{
			Type:         getEnv("STORAGE_TYPE", "local"),
			LocalPath:    getEnv("STORAGE_LOCAL_PATH", "./storage/archive"),
			S3Bucket:     getEnv("AWS_S3_BUCKET", ""),
			S3Region:     getEnv("AWS_REGION", "us-east-1"),
			AWSAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
			AWSSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	// A development secret keeps local runs working without setup.
	if cfg.Auth.JWTSecret == "" && !cfg.Server.IsProduction() {
		cfg.Auth.JWTSecret = "dev-insecure-secret"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Type {
	case "sheets":
		if strings.TrimSpace(c.Sheets.SpreadsheetID) == "" {
			errs = append(errs, errors.New("GOOGLE_SHEET_ID is required for the sheets row store"))
		}
	case "postgres":
		if strings.TrimSpace(c.Store.DatabaseURL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres row store"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown ROW_STORE_TYPE %q", c.Store.Type))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("AUTH_SESSION_TTL must be positive"))
	}
	if c.Auth.DevLogin.Enabled {
		if c.Server.IsProduction() {
			errs = append(errs, errors.New("AUTH_DEV_LOGIN cannot be enabled in production"))
		}
		if c.Auth.DevLogin.Username == "" || c.Auth.DevLogin.Password == "" {
			errs = append(errs, errors.New("AUTH_DEV_LOGIN requires AUTH_DEV_USERNAME and AUTH_DEV_PASSWORD"))
		}
	}

	return errors.Join(errs...)
}

// LogFields returns the non-secret parts of the configuration for logging
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("server_port", c.Server.Port),
		zap.String("row_store", c.Store.Type),
		zap.String("archive_storage", c.Archive.Type),
		zap.Bool("dev_login", c.Auth.DevLogin.Enabled),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
