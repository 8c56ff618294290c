// Package config defines the top-level configuration for the book engine and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by BOOKENGINE_* environment
// variables.
type Config struct {
	Detector  DetectorConfig  `toml:"detector"`
	Sizing    SizingConfig    `toml:"sizing"`
	Risk      RiskConfig      `toml:"risk"`
	Portfolio PortfolioConfig `toml:"portfolio"`
	App       AppConfig       `toml:"app"`
	LogLevel  string          `toml:"log_level"`
}

// DetectorConfig holds the opportunity qualification thresholds.
type DetectorConfig struct {
	MinEdge         float64  `toml:"min_edge"`          // minimum expected value per unit staked
	MinConfidence   float64  `toml:"min_confidence"`    // minimum model confidence
	MinDecimalPrice float64  `toml:"min_decimal_price"` // price band lower bound
	MaxDecimalPrice float64  `toml:"max_decimal_price"` // price band upper bound
	MaxQuoteAge     duration `toml:"max_quote_age"`     // quotes older than this are dropped
}

// SizingConfig holds the Kelly sizing parameters.
type SizingConfig struct {
	MaxKellyFraction float64 `toml:"max_kelly_fraction"` // hard cap on the raw Kelly fraction
	FractionalKelly  float64 `toml:"fractional_kelly"`   // multiplier for variance reduction, 0.5 = half Kelly
	MinKellyFraction float64 `toml:"min_kelly_fraction"` // floor applied to strictly positive fractions
	MaxBetFraction   float64 `toml:"max_bet_fraction"`   // per-bet ceiling as a share of total bankroll
	MinStake         float64 `toml:"min_stake"`          // minimum stake in currency units
}

// RiskConfig holds the portfolio risk limits and scoring thresholds.
type RiskConfig struct {
	MaxTotalExposure       float64 `toml:"max_total_exposure"`       // share of bankroll
	MaxEventExposure       float64 `toml:"max_event_exposure"`       // share of bankroll per event
	MaxParticipantExposure float64 `toml:"max_participant_exposure"` // share of bankroll per participant
	MaxDailyRiskRatio      float64 `toml:"max_daily_risk_ratio"`     // used / cap ratio that counts as a breach
	MaxDrawdown            float64 `toml:"max_drawdown"`             // boundary between high and extreme drawdown
}

// PortfolioConfig holds the ledger parameters.
type PortfolioConfig struct {
	InitialBankroll   float64 `toml:"initial_bankroll"`
	MaxPositions      int     `toml:"max_positions"`
	DailyRiskFraction float64 `toml:"daily_risk_fraction"` // daily cap as a share of current bankroll
	AutoCompound      bool    `toml:"auto_compound"`
	CompoundMultiple  float64 `toml:"compound_multiple"` // withdraw once profit exceeds this multiple of the initial bankroll
}

// AppConfig holds the snapshot-driven run loop parameters.
type AppConfig struct {
	SnapshotDir    string   `toml:"snapshot_dir"`
	PollInterval   duration `toml:"poll_interval"`
	StatusInterval duration `toml:"status_interval"`
}

// duration wraps time.Duration so the TOML decoder can parse strings like
// "5m" or "30s".
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the built-in configuration. Values match the reference
// setup: half Kelly capped at a quarter of bankroll, 5% per bet, 10% daily
// risk budget.
func Defaults() Config {
	return Config{
		Detector: DetectorConfig{
			MinEdge:         0.05,
			MinConfidence:   0.7,
			MinDecimalPrice: 1.3,
			MaxDecimalPrice: 5.0,
			MaxQuoteAge:     duration{5 * time.Minute},
		},
		Sizing: SizingConfig{
			MaxKellyFraction: 0.25,
			FractionalKelly:  0.5,
			MinKellyFraction: 0.01,
			MaxBetFraction:   0.05,
			MinStake:         10,
		},
		Risk: RiskConfig{
			MaxTotalExposure:       0.30,
			MaxEventExposure:       0.15,
			MaxParticipantExposure: 0.20,
			MaxDailyRiskRatio:      1.0,
			MaxDrawdown:            0.25,
		},
		Portfolio: PortfolioConfig{
			InitialBankroll:   10000,
			MaxPositions:      20,
			DailyRiskFraction: 0.10,
			AutoCompound:      false,
			CompoundMultiple:  2.0,
		},
		App: AppConfig{
			SnapshotDir:    "snapshots",
			PollInterval:   duration{30 * time.Second},
			StatusInterval: duration{5 * time.Minute},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Detector
	if c.Detector.MinEdge < 0 {
		errs = append(errs, "detector: min_edge must not be negative")
	}
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		errs = append(errs, fmt.Sprintf("detector: min_confidence must be in [0, 1], got %g", c.Detector.MinConfidence))
	}
	if c.Detector.MinDecimalPrice <= 1 {
		errs = append(errs, fmt.Sprintf("detector: min_decimal_price must be > 1, got %g", c.Detector.MinDecimalPrice))
	}
	if c.Detector.MaxDecimalPrice < c.Detector.MinDecimalPrice {
		errs = append(errs, "detector: max_decimal_price must be >= min_decimal_price")
	}
	if c.Detector.MaxQuoteAge.Duration <= 0 {
		errs = append(errs, "detector: max_quote_age must be positive")
	}

	// Sizing
	if c.Sizing.MaxKellyFraction <= 0 || c.Sizing.MaxKellyFraction > 1 {
		errs = append(errs, fmt.Sprintf("sizing: max_kelly_fraction must be in (0, 1], got %g", c.Sizing.MaxKellyFraction))
	}
	if c.Sizing.FractionalKelly <= 0 || c.Sizing.FractionalKelly > 1 {
		errs = append(errs, fmt.Sprintf("sizing: fractional_kelly must be in (0, 1], got %g", c.Sizing.FractionalKelly))
	}
	if c.Sizing.MinKellyFraction < 0 {
		errs = append(errs, "sizing: min_kelly_fraction must not be negative")
	}
	if c.Sizing.MaxBetFraction <= 0 || c.Sizing.MaxBetFraction > 1 {
		errs = append(errs, fmt.Sprintf("sizing: max_bet_fraction must be in (0, 1], got %g", c.Sizing.MaxBetFraction))
	}
	if c.Sizing.MinStake < 0 {
		errs = append(errs, "sizing: min_stake must not be negative")
	}

	// Risk
	for _, lim := range []struct {
		name  string
		value float64
	}{
		{"max_total_exposure", c.Risk.MaxTotalExposure},
		{"max_event_exposure", c.Risk.MaxEventExposure},
		{"max_participant_exposure", c.Risk.MaxParticipantExposure},
		{"max_drawdown", c.Risk.MaxDrawdown},
	} {
		if lim.value <= 0 || lim.value > 1 {
			errs = append(errs, fmt.Sprintf("risk: %s must be in (0, 1], got %g", lim.name, lim.value))
		}
	}
	if c.Risk.MaxDailyRiskRatio <= 0 {
		errs = append(errs, "risk: max_daily_risk_ratio must be positive")
	}

	// Portfolio
	if c.Portfolio.InitialBankroll <= 0 {
		errs = append(errs, fmt.Sprintf("portfolio: initial_bankroll must be positive, got %g", c.Portfolio.InitialBankroll))
	}
	if c.Portfolio.MaxPositions < 1 {
		errs = append(errs, fmt.Sprintf("portfolio: max_positions must be >= 1, got %d", c.Portfolio.MaxPositions))
	}
	if c.Portfolio.DailyRiskFraction <= 0 || c.Portfolio.DailyRiskFraction > 1 {
		errs = append(errs, fmt.Sprintf("portfolio: daily_risk_fraction must be in (0, 1], got %g", c.Portfolio.DailyRiskFraction))
	}
	if c.Portfolio.AutoCompound && c.Portfolio.CompoundMultiple <= 0 {
		errs = append(errs, "portfolio: compound_multiple must be positive when auto_compound is enabled")
	}

	// App
	if c.App.SnapshotDir == "" {
		errs = append(errs, "app: snapshot_dir must not be empty")
	}
	if c.App.PollInterval.Duration <= 0 {
		errs = append(errs, "app: poll_interval must be positive")
	}
	if c.App.StatusInterval.Duration <= 0 {
		errs = append(errs, "app: status_interval must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
