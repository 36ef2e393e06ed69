package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Contains(t, cfg.Database.URL, "stonecart")
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, time.Minute, cfg.Database.ConnMaxIdleTime)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Empty(t, cfg.Redis.URL)
	assert.True(t, cfg.Checkout.TotalsTolerance.Equal(decimal.RequireFromString("0.01")))
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "50")
	t.Setenv("DATABASE_AUTO_MIGRATE", "true")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_MAX_IDLE_CONNS", "many")
	t.Setenv("SERVER_WRITE_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		App:      AppConfig{Env: "production"},
		Database: DatabaseConfig{MaxOpenConns: 2, MaxIdleConns: 3},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
	assert.Contains(t, err.Error(), "DATABASE_MAX_IDLE_CONNS")
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
}

func TestValidateSeedAdmin(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{URL: "postgres://localhost/stonecart", MaxOpenConns: 5, MaxIdleConns: 1},
		Seed:     SeedConfig{AdminEmail: "admin@stonecart.test", AdminPassword: "short"},
	}
	assert.ErrorContains(t, cfg.Validate(), "SEED_ADMIN_PASSWORD")

	cfg.Seed.AdminPassword = "long-enough-pass"
	assert.NoError(t, cfg.Validate())
}
