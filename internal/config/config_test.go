package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_DSN", "file:test.db")
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("SESSION_SECRET", "session-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, "0 2 1 * *", cfg.Recalc.Cron)
	assert.True(t, cfg.Recalc.Enabled)
	assert.Equal(t, 4, cfg.Recalc.Workers)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.False(t, cfg.SMTP.Configured())
	assert.Equal(t, DBPoolConfig{MaxOpenConns: 25, MaxIdleConns: 5, ConnMaxLifetime: 5 * time.Minute}, cfg.DBPool)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("RECALC_WORKERS", "0")
	t.Setenv("RECALC_ENABLED", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SMTP_HOST", "smtp.example")
	t.Setenv("SMTP_FROM", "noreply@example")
	t.Setenv("DB_MAX_OPEN_CONNS", "8")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 1, cfg.Recalc.Workers)
	assert.False(t, cfg.Recalc.Enabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.SMTP.Configured())
	assert.Equal(t, 8, cfg.DBPool.MaxOpenConns)
	assert.Equal(t, 90*time.Second, cfg.DBPool.ConnMaxLifetime)
}

func TestLoadRejectsBadPoolLifetime(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_CONN_MAX_LIFETIME", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_CONN_MAX_LIFETIME")
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DB_DSN", "file:test.db")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SESSION_SECRET", "x")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	require.Error(t, err)
}
