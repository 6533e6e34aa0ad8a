// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds runtime configuration for the server and the worker.
type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	AppPort         string        `envconfig:"APP_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	Storage string `envconfig:"STORAGE" default:"postgres"`

	DatabaseURL      string        `envconfig:"DATABASE_URL"`
	DBMaxConns       int32         `envconfig:"DB_MAX_CONNS" default:"20"`
	DBMinConns       int32         `envconfig:"DB_MIN_CONNS" default:"2"`
	DBConnLifetime   time.Duration `envconfig:"DB_CONN_LIFETIME" default:"1h"`
	UseOutbox        bool          `envconfig:"USE_OUTBOX" default:"true"`
	AuditCompressMin int           `envconfig:"AUDIT_COMPRESS_THRESHOLD" default:"10240"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	// TimeZone decides the calendar day of document numbers.
	TimeZone string `envconfig:"NUMERATOR_TZ" default:"Asia/Kolkata"`

	IdempotencyEnabled bool          `envconfig:"IDEMPOTENCY_ENABLED" default:"true"`
	IdempotencyTTL     time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`

	WorkerPollInterval time.Duration `envconfig:"WORKER_POLL_INTERVAL" default:"2s"`
	WorkerBatchSize    int           `envconfig:"WORKER_BATCH_SIZE" default:"100"`
	WorkerMaxRetries   int           `envconfig:"WORKER_MAX_RETRIES" default:"5"`
	WorkerRetention    time.Duration `envconfig:"WORKER_OUTBOX_RETENTION" default:"168h"`
	WorkerSweep        time.Duration `envconfig:"WORKER_SWEEP_INTERVAL" default:"5m"`

	// BootstrapAdmin* create the first admin when no user exists yet.
	BootstrapAdminEmail    string `envconfig:"BOOTSTRAP_ADMIN_EMAIL"`
	BootstrapAdminName     string `envconfig:"BOOTSTRAP_ADMIN_NAME" default:"Administrator"`
	BootstrapAdminPassword string `envconfig:"BOOTSTRAP_ADMIN_PASSWORD"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields the chosen backend needs.
func (c *Config) Validate() error {
	var errs []error

	c.Storage = strings.ToLower(c.Storage)
	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres storage"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE %q", c.Storage))
	}

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be provided"))
	} else if c.IsProduction() && len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 bytes in production"))
	}

	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("NUMERATOR_TZ: %w", err))
	}
	if c.WorkerBatchSize <= 0 {
		errs = append(errs, errors.New("WORKER_BATCH_SIZE must be positive"))
	}
	if c.WorkerPollInterval <= 0 || c.WorkerSweep <= 0 {
		errs = append(errs, errors.New("worker intervals must be positive"))
	}
	if (c.BootstrapAdminEmail == "") != (c.BootstrapAdminPassword == "") {
		errs = append(errs, errors.New("BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD go together"))
	}

	return errors.Join(errs...)
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Location returns the numerator time zone. Validate has checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RedisEnabled reports whether a Redis address is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}
