package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "USD", cfg.Parse.ReportingCurrency)
		assert.Equal(t, 20, cfg.Parse.SampleRows)
		assert.Equal(t, 10, cfg.Parse.HeaderScanRows)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.True(t, cfg.Metrics.Enabled)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("REPORTING_CURRENCY", "eur")
		t.Setenv("PARSE_SAMPLE_ROWS", "50")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("METRICS_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "eur", cfg.Parse.ReportingCurrency)
		assert.Equal(t, 50, cfg.Parse.SampleRows)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.False(t, cfg.Metrics.Enabled)
	})

	t.Run("invalid currency fails", func(t *testing.T) {
		t.Setenv("REPORTING_CURRENCY", "NOPE")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("malformed numbers fall back", func(t *testing.T) {
		t.Setenv("PARSE_SAMPLE_ROWS", "lots")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 20, cfg.Parse.SampleRows)
	})
}
