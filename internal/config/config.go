// Package config loads service settings from environment variables, with an
// optional .env file for local development. Settings are validated once at
// startup so misconfiguration fails fast.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Record store backends.
const (
	BackendPostgres = "postgres"
	BackendBigQuery = "bigquery"
	BackendMemory   = "memory"
)

// Object store backends.
const (
	ObjectStoreGCS    = "gcs"
	ObjectStoreMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Logging  LoggingConfig
	Transfer TransferConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST"`
	Port            int           `env:"PORT" envAlt:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	// Backend is one of postgres, bigquery or memory.
	Backend string `env:"STORE_BACKEND" default:"postgres"`

	DatabaseURL     string        `env:"DATABASE_URL" envAlt:"DB_URL"`
	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	ProjectID string `env:"GCP_PROJECT" envAlt:"GOOGLE_CLOUD_PROJECT"`
	Dataset   string `env:"BQ_DATASET" default:"hikmacash"`
}

// StorageConfig selects the object store that receives export artifacts.
type StorageConfig struct {
	Backend string `env:"OBJECT_STORE" default:"gcs"`
	Bucket  string `env:"EXPORT_BUCKET" envAlt:"GCS_BUCKET"`
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET"`
	Issuer    string `env:"JWT_ISSUER"`
	Audience  string `env:"JWT_AUDIENCE"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is console or json.
	Format string `env:"LOG_FORMAT" default:"console"`
}

// TransferConfig holds export and import limits.
type TransferConfig struct {
	// TempDir is where export artifacts are staged. Empty means os.TempDir.
	TempDir string `env:"EXPORT_TEMP_DIR"`

	// MaxImportBytes caps the size of an uploaded import document.
	MaxImportBytes int64 `env:"IMPORT_MAX_BYTES" default:"10485760"`
}

// Addr returns the server listen address in host:port format.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks that the configuration is usable and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	switch c.Store.Backend {
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres backend")
		}
		if c.Store.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Store.MaxConns < c.Store.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", c.Store.MaxConns, c.Store.MinConns))
		}
	case BackendBigQuery:
		if c.Store.ProjectID == "" {
			errs = append(errs, "GCP_PROJECT is required for the bigquery backend")
		}
		if c.Store.Dataset == "" {
			errs = append(errs, "BQ_DATASET is required for the bigquery backend")
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Sprintf("STORE_BACKEND (%q) must be one of: postgres, bigquery, memory", c.Store.Backend))
	}

	switch c.Storage.Backend {
	case ObjectStoreGCS:
		if c.Storage.Bucket == "" {
			errs = append(errs, "EXPORT_BUCKET is required for the gcs object store")
		}
	case ObjectStoreMemory:
	default:
		errs = append(errs, fmt.Sprintf("OBJECT_STORE (%q) must be one of: gcs, memory", c.Storage.Backend))
	}

	if c.Transfer.MaxImportBytes <= 0 {
		errs = append(errs, "IMPORT_MAX_BYTES must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: console, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns the configuration with secrets masked, for startup logs.
func (c *Config) String() string {
	dbURL := ""
	if c.Store.DatabaseURL != "" {
		dbURL = "[MASKED]"
	}
	jwtSecret := ""
	if c.Auth.JWTSecret != "" {
		jwtSecret = "[MASKED]"
	}
	return fmt.Sprintf(
		"Config{Server: {Addr: %q}, Store: {Backend: %q, DatabaseURL: %q, ProjectID: %q, Dataset: %q}, "+
			"Storage: {Backend: %q, Bucket: %q}, Auth: {JWTSecret: %q, Issuer: %q}, Logging: {Level: %q, Format: %q}}",
		c.Server.Addr(), c.Store.Backend, dbURL, c.Store.ProjectID, c.Store.Dataset,
		c.Storage.Backend, c.Storage.Bucket, jwtSecret, c.Auth.Issuer, c.Logging.Level, c.Logging.Format,
	)
}
