package common

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	unsetenv(t, "DB_URL", "HTTP_ADDR", "GRPC_ADDR", "DB_MAX_CONNS", "DB_MAX_CONN_LIFETIME", "LLM_PROVIDER",
		"LLM_TIMEOUT", "DISCHARGE_STRATEGY", "INBOX_DIR", "INBOX_DEBOUNCE", "LOG_LEVEL")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, ":9090", cfg.Server.GRPCAddr)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.MaxConnLifetime)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "auto", cfg.Extraction.DischargeStrategy)
	assert.Equal(t, 500*time.Millisecond, cfg.Inbox.Debounce)
	assert.False(t, cfg.StoreEnabled())
}

// unsetenv removes keys for the duration of the test. An empty value would
// count as set and skip the default.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DB_URL", "sqlite:policies.db")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("DISCHARGE_STRATEGY", "regex")
	t.Setenv("INBOX_DIR", "/srv/inbox")
	t.Setenv("OUTBOX_DIR", "/srv/outbox")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.StoreEnabled())
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, "regex", cfg.Extraction.DischargeStrategy)
	assert.Equal(t, "/srv/outbox", cfg.Inbox.OutDir)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string][2]string{
		"provider":   {"LLM_PROVIDER", "anthropic"},
		"strategy":   {"DISCHARGE_STRATEGY", "blend"},
		"log level":  {"LOG_LEVEL", "trace"},
		"not a time": {"LLM_TIMEOUT", "soon"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := LoadConfig()
			var ae *AppError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, "CONFIG_ERROR", ae.Code)
		})
	}
}

func TestLoadConfig_OutboxRequiredWithInbox(t *testing.T) {
	t.Setenv("INBOX_DIR", "/srv/inbox")
	t.Setenv("OUTBOX_DIR", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "OutDir")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
