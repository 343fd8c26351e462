package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var configKeys = []string{
	"PORT", "DATABASE_URL", "DATABASE_PATH", "APP_ENV", "JWT_SECRET", "JWT_SECRET_KEY",
	"TOKEN_TTL", "BCRYPT_COST", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
	"EVENT_RETENTION", "EVENT_PRUNE_SCHEDULE",
}

// clearEnv blanks every variable Load reads; empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "sqlite://./tasks.db", cfg.DatabaseURL)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.EventRetention)
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
	assert.True(t, cfg.JWTSecretGenerated)
	assert.Len(t, cfg.JWTSecret, 64)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/tasks")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("EVENT_RETENTION", "48h")
	t.Setenv("EVENT_PRUNE_SCHEDULE", "0 3 * * *")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "postgres://u:p@localhost:5432/tasks", cfg.DatabaseURL)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.False(t, cfg.JWTSecretGenerated)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 48*time.Hour, cfg.EventRetention)
	assert.Equal(t, "0 3 * * *", cfg.EventPruneSchedule)
}

func TestLoad_LegacyVariables(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_PATH", "/var/lib/tasks.db")
	t.Setenv("JWT_SECRET_KEY", "legacy")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite:///var/lib/tasks.db", cfg.DatabaseURL)
	assert.Equal(t, "legacy", cfg.JWTSecret)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"bad port":             {"PORT": "http"},
		"port out of range":    {"PORT": "70000"},
		"bad ttl":              {"TOKEN_TTL": "soon"},
		"negative retention":   {"EVENT_RETENTION": "-1h"},
		"bad bcrypt cost":      {"BCRYPT_COST": "2"},
		"bad log format":       {"LOG_FORMAT": "xml"},
		"bad schedule":         {"EVENT_PRUNE_SCHEDULE": "every now and then"},
		"production no secret": {"APP_ENV": "production"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
