package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DateLayout is the layout of IMPORT_DATE_FROM.
const DateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Import   ImportConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// ImportConfig holds the locations and cutoff used by the import pipeline.
type ImportConfig struct {
	LegacyPath      string
	DataDir         string
	PostalCodesFile string
	AuditDir        string
	AuditWorkbook   string
	MappingsFile    string
	DateFrom        time.Time
}

// Load reads configuration from an optional .env file and environment variables.
// Database settings are not validated here; commands that connect call
// DatabaseConfig.Validate themselves.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "reclaim")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_POOL_MIN", 1)
	v.SetDefault("DB_POOL_MAX", 4)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("LEGACY_PATH", "data/legacy.sqlite")
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("POSTAL_CODES_FILE", "data/postal_codes.json")
	v.SetDefault("AUDIT_DIR", "audit")
	v.SetDefault("AUDIT_WORKBOOK", "")
	v.SetDefault("MAPPINGS_FILE", "")
	v.SetDefault("IMPORT_DATE_FROM", "2020-01-01")

	// Bind environment variables
	v.AutomaticEnv()

	dateFrom, err := time.Parse(DateLayout, strings.TrimSpace(v.GetString("IMPORT_DATE_FROM")))
	if err != nil {
		return nil, fmt.Errorf("IMPORT_DATE_FROM must be a date (YYYY-MM-DD): %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Import: ImportConfig{
			LegacyPath:      v.GetString("LEGACY_PATH"),
			DataDir:         v.GetString("DATA_DIR"),
			PostalCodesFile: v.GetString("POSTAL_CODES_FILE"),
			AuditDir:        v.GetString("AUDIT_DIR"),
			AuditWorkbook:   v.GetString("AUDIT_WORKBOOK"),
			MappingsFile:    v.GetString("MAPPINGS_FILE"),
			DateFrom:        dateFrom,
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	if c.Import.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if c.Import.PostalCodesFile == "" {
		return fmt.Errorf("POSTAL_CODES_FILE is required")
	}
	if c.Import.AuditDir == "" {
		return fmt.Errorf("AUDIT_DIR is required")
	}
	if c.Import.DateFrom.IsZero() {
		return fmt.Errorf("IMPORT_DATE_FROM is required")
	}

	return nil
}

// Validate checks the settings needed to open a connection pool.
func (d DatabaseConfig) Validate() error {
	if d.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if d.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if d.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if d.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if d.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	switch d.SSLMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("DB_SSLMODE %q is not a valid sslmode", d.SSLMode)
	}
	if d.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if d.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if d.PoolMin > d.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}
	return nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
