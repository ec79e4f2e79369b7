package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/booking")
	t.Setenv("JWT_SECRET", "secret")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.False(t, cfg.IsProduction)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.True(t, cfg.LogDebug, "debug logging defaults on outside prod")
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.SMTP.Enabled())
	assert.Equal(t, 100, cfg.NotifyQueueSize)
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "1h")
	t.Setenv("SMTP_HOST", "smtp.campus.edu")
	t.Setenv("SMTP_USER", "noreply@campus.edu")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction)
	assert.False(t, cfg.LogDebug)
	assert.Equal(t, time.Hour, cfg.JWTAccessTokenTTL)
	assert.Equal(t, "noreply@campus.edu", cfg.SMTP.From)
	assert.True(t, cfg.SMTP.Enabled())
}

func TestFromEnvErrors(t *testing.T) {
	t.Run("missing dsn", func(t *testing.T) {
		t.Setenv("DB_DSN", "")
		t.Setenv("JWT_SECRET", "secret")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "DB_DSN")
	})

	t.Run("bad bcrypt cost", func(t *testing.T) {
		setRequired(t)
		t.Setenv("BCRYPT_COST", "twelve")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "BCRYPT_COST")
	})

	t.Run("bad ttl", func(t *testing.T) {
		setRequired(t)
		t.Setenv("JWT_ACCESS_TOKEN_TTL", "soon")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "JWT_ACCESS_TOKEN_TTL")
	})
}
