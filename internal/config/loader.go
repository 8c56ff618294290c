package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies BOOKENGINE_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known BOOKENGINE_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators tune limits at deploy time without touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Detector ──
	setFloat64(&cfg.Detector.MinEdge, "BOOKENGINE_DETECTOR_MIN_EDGE")
	setFloat64(&cfg.Detector.MinConfidence, "BOOKENGINE_DETECTOR_MIN_CONFIDENCE")
	setFloat64(&cfg.Detector.MinDecimalPrice, "BOOKENGINE_DETECTOR_MIN_DECIMAL_PRICE")
	setFloat64(&cfg.Detector.MaxDecimalPrice, "BOOKENGINE_DETECTOR_MAX_DECIMAL_PRICE")
	setDuration(&cfg.Detector.MaxQuoteAge, "BOOKENGINE_DETECTOR_MAX_QUOTE_AGE")

	// ── Sizing ──
	setFloat64(&cfg.Sizing.MaxKellyFraction, "BOOKENGINE_SIZING_MAX_KELLY_FRACTION")
	setFloat64(&cfg.Sizing.FractionalKelly, "BOOKENGINE_SIZING_FRACTIONAL_KELLY")
	setFloat64(&cfg.Sizing.MinKellyFraction, "BOOKENGINE_SIZING_MIN_KELLY_FRACTION")
	setFloat64(&cfg.Sizing.MaxBetFraction, "BOOKENGINE_SIZING_MAX_BET_FRACTION")
	setFloat64(&cfg.Sizing.MinStake, "BOOKENGINE_SIZING_MIN_STAKE")

	// ── Risk ──
	setFloat64(&cfg.Risk.MaxTotalExposure, "BOOKENGINE_RISK_MAX_TOTAL_EXPOSURE")
	setFloat64(&cfg.Risk.MaxEventExposure, "BOOKENGINE_RISK_MAX_EVENT_EXPOSURE")
	setFloat64(&cfg.Risk.MaxParticipantExposure, "BOOKENGINE_RISK_MAX_PARTICIPANT_EXPOSURE")
	setFloat64(&cfg.Risk.MaxDailyRiskRatio, "BOOKENGINE_RISK_MAX_DAILY_RISK_RATIO")
	setFloat64(&cfg.Risk.MaxDrawdown, "BOOKENGINE_RISK_MAX_DRAWDOWN")

	// ── Portfolio ──
	setFloat64(&cfg.Portfolio.InitialBankroll, "BOOKENGINE_PORTFOLIO_INITIAL_BANKROLL")
	setInt(&cfg.Portfolio.MaxPositions, "BOOKENGINE_PORTFOLIO_MAX_POSITIONS")
	setFloat64(&cfg.Portfolio.DailyRiskFraction, "BOOKENGINE_PORTFOLIO_DAILY_RISK_FRACTION")
	setBool(&cfg.Portfolio.AutoCompound, "BOOKENGINE_PORTFOLIO_AUTO_COMPOUND")
	setFloat64(&cfg.Portfolio.CompoundMultiple, "BOOKENGINE_PORTFOLIO_COMPOUND_MULTIPLE")

	// ── App ──
	setStr(&cfg.App.SnapshotDir, "BOOKENGINE_APP_SNAPSHOT_DIR")
	setDuration(&cfg.App.PollInterval, "BOOKENGINE_APP_POLL_INTERVAL")
	setDuration(&cfg.App.StatusInterval, "BOOKENGINE_APP_STATUS_INTERVAL")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "BOOKENGINE_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
