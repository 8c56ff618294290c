package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
log_level = "debug"

[detector]
min_edge = 0.08
max_quote_age = "2m"

[portfolio]
initial_bankroll = 25000.0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.InDelta(t, 0.08, cfg.Detector.MinEdge, 1e-9)
	assert.Equal(t, 2*time.Minute, cfg.Detector.MaxQuoteAge.Duration)
	assert.InDelta(t, 25000, cfg.Portfolio.InitialBankroll, 1e-9)

	// Untouched sections keep their defaults.
	assert.InDelta(t, 0.25, cfg.Sizing.MaxKellyFraction, 1e-9)
	assert.InDelta(t, 0.7, cfg.Detector.MinConfidence, 1e-9)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_level = \"info\"\n"), 0o644))

	t.Setenv("BOOKENGINE_LOG_LEVEL", "warn")
	t.Setenv("BOOKENGINE_SIZING_MIN_STAKE", "25")
	t.Setenv("BOOKENGINE_PORTFOLIO_MAX_POSITIONS", "5")
	t.Setenv("BOOKENGINE_APP_POLL_INTERVAL", "10s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.InDelta(t, 25, cfg.Sizing.MinStake, 1e-9)
	assert.Equal(t, 5, cfg.Portfolio.MaxPositions)
	assert.Equal(t, 10*time.Second, cfg.App.PollInterval.Duration)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "loud"
	cfg.Detector.MinDecimalPrice = 0.5
	cfg.Sizing.MaxKellyFraction = 2.0
	cfg.Portfolio.InitialBankroll = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "min_decimal_price")
	assert.Contains(t, err.Error(), "max_kelly_fraction")
	assert.Contains(t, err.Error(), "initial_bankroll")
}

func TestValidateRejectsBadExposureLimits(t *testing.T) {
	cfg := Defaults()
	cfg.Risk.MaxEventExposure = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_event_exposure")
}
