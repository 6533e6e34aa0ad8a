package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 100, cfg.WorkerBatchSize)
	assert.True(t, cfg.UseOutbox)
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			AppEnv:          "development",
			Storage:         StoragePostgres,
			DatabaseURL:     "postgres://localhost/fm",
			JWTSecret:       "secret",
			TimeZone:        "UTC",
			WorkerBatchSize: 10,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"storage is case insensitive", func(c *Config) { c.Storage = "Postgres" }, ""},
		{"postgres without dsn", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"unknown storage", func(c *Config) { c.Storage = "sqlite" }, "unknown STORAGE"},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"short secret in production", func(c *Config) { c.AppEnv = "production" }, "at least 32 bytes"},
		{"bad zone", func(c *Config) { c.TimeZone = "Mars/Olympus" }, "NUMERATOR_TZ"},
		{"half bootstrap", func(c *Config) { c.BootstrapAdminEmail = "a@b.c" }, "BOOTSTRAP_ADMIN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
