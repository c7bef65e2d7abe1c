package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"KEY_PROVIDER", "GATEWAY_CURRENCY", "GATEWAY_RATE_LIMIT", "AUDIT_DATABASE_URL", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Keys.Provider)
	assert.Equal(t, 5*time.Minute, cfg.Keys.CacheTTL)
	assert.Equal(t, "USD", cfg.Gateway.Currency)
	assert.Equal(t, 30*time.Second, cfg.Transport.Timeout)
	assert.Equal(t, 5.0, cfg.Transport.RateLimit)
	assert.Empty(t, cfg.Audit.DatabaseURL)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("KEY_PROVIDER", "vault")
	t.Setenv("VAULT_TOKEN", "s.token")
	t.Setenv("GATEWAY_CURRENCY", "CAD")
	t.Setenv("GATEWAY_RATE_LIMIT", "2.5")
	t.Setenv("GATEWAY_TIMEOUT_SECONDS", "10")
	t.Setenv("AUDIT_DB_MAX_CONNS", "not-a-number")
	t.Setenv("AUDIT_ENSURE_TABLE", "true")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "vault", cfg.Keys.Provider)
	assert.Equal(t, "s.token", cfg.Keys.VaultToken)
	assert.Equal(t, "CAD", cfg.Gateway.Currency)
	assert.Equal(t, 2.5, cfg.Transport.RateLimit)
	assert.Equal(t, 10*time.Second, cfg.Transport.Timeout)
	assert.Equal(t, int32(5), cfg.Audit.MaxConns)
	assert.True(t, cfg.Audit.EnsureTable)
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown key provider", env: map[string]string{"KEY_PROVIDER": "gcp"}},
		{name: "vault without token", env: map[string]string{"KEY_PROVIDER": "vault", "VAULT_TOKEN": ""}},
		{name: "bad currency", env: map[string]string{"GATEWAY_CURRENCY": "DOLLARS"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFromEnv()
			assert.Error(t, err)
		})
	}
}
