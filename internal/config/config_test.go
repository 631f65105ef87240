package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsBadSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"no timeframes", func(c *Config) { c.Timeframes = nil }, "timeframes"},
		{"zero swing window", func(c *Config) { c.SwingWindow = 0 }, "swing_window"},
		{"lookback below window", func(c *Config) { c.SwingLookback = 2 }, "swing_lookback"},
		{"no cluster tolerance", func(c *Config) { c.ClusterTolerance = 0; c.ClusterToleranceATR = 0 }, "cluster_tolerance"},
		{"single-touch trendline", func(c *Config) { c.TrendlineTouches = 1 }, "trendline_touches"},
		{"macd fast above slow", func(c *Config) { c.MACDFast = 26; c.MACDSlow = 12 }, "macd_fast"},
		{"negative weight", func(c *Config) { c.Weights.MACD = -1 }, "weights.macd"},
		{"strong below weak", func(c *Config) { c.StrongThreshold = 1.0 }, "strong_threshold"},
		{"zero target ratio", func(c *Config) { c.TargetRatio = 0 }, "target_ratio"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var confErr *ConfigurationError
			require.True(t, errors.As(err, &confErr))
			assert.Equal(t, tt.field, confErr.Field)
		})
	}
}

func TestLoadAppliesYAMLOverrides(t *testing.T) {
	t.Setenv("SYMBOLS", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
symbols: ["BTCUSDT"]
swing_window: 3
weights:
  mtf_alignment: 2.0
strong_threshold: 5.0
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTCUSDT"}, cfg.Symbols)
	assert.Equal(t, 3, cfg.SwingWindow)
	assert.Equal(t, 2.0, cfg.Weights.MTFAlignment)
	assert.Equal(t, 5.0, cfg.StrongThreshold)
	assert.Equal(t, 14, cfg.ATRPeriod, "untouched fields keep their defaults")
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("SYMBOLS", "SOLUSDT,XRPUSDT")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"SOLUSDT", "XRPUSDT"}, cfg.Symbols)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(12345), cfg.TelegramChatID)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("swing_window: 0\n"), 0o644))

	_, err := Load(path)
	var confErr *ConfigurationError
	require.True(t, errors.As(err, &confErr))
}

func TestPrimary(t *testing.T) {
	assert.Equal(t, "15m", Default().Primary())
}
