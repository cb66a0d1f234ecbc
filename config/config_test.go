package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Breaker: BreakerConfig{FailureThreshold: 5, ResetTimeout: "30s"},
		Retry:   RetryConfig{MaxAttempts: 3, BaseDelay: "1s", MaxDelay: "30s", Multiplier: 2.0, Jitter: true},
		History: HistoryConfig{Capacity: 100},
		Logging: LoggingConfig{Level: LogLevelInfo},
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("accepts the defaults", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("rejects a zero failure threshold", func(t *testing.T) {
		cfg := validConfig()
		cfg.Breaker.FailureThreshold = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects a malformed reset timeout", func(t *testing.T) {
		cfg := validConfig()
		cfg.Breaker.ResetTimeout = "soon"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects zero retry attempts", func(t *testing.T) {
		cfg := validConfig()
		cfg.Retry.MaxAttempts = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects a multiplier below one", func(t *testing.T) {
		cfg := validConfig()
		cfg.Retry.Multiplier = 0.5
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects a zero history capacity", func(t *testing.T) {
		cfg := validConfig()
		cfg.History.Capacity = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects an unknown log level", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logging.Level = "verbose"
		assert.Error(t, cfg.Validate())
	})
}

func TestConfigOptions(t *testing.T) {
	t.Run("converts to boundary options", func(t *testing.T) {
		opts, err := validConfig().Options()
		require.NoError(t, err)
		assert.Len(t, opts, 3)
	})

	t.Run("fails on an unparsable duration", func(t *testing.T) {
		cfg := validConfig()
		cfg.Retry.BaseDelay = "fast"
		_, err := cfg.Options()
		assert.Error(t, err)
	})
}

func TestSlogLevel(t *testing.T) {
	levels := map[string]slog.Level{
		LogLevelDebug: slog.LevelDebug,
		LogLevelInfo:  slog.LevelInfo,
		LogLevelWarn:  slog.LevelWarn,
		LogLevelError: slog.LevelError,
	}

	for name, want := range levels {
		cfg := validConfig()
		cfg.Logging.Level = name
		assert.Equal(t, want, cfg.SlogLevel())
	}
}

func TestLoadDefaults(t *testing.T) {
	// No config file in the test working directory: Load falls back to
	// defaults plus environment overlays.
	t.Setenv("FAULTGATE_BREAKER_FAILURE_THRESHOLD", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Breaker.FailureThreshold)
	assert.Equal(t, "30s", cfg.Breaker.ResetTimeout)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 100, cfg.History.Capacity)

	resetTimeout, err := time.ParseDuration(cfg.Breaker.ResetTimeout)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, resetTimeout)
}
