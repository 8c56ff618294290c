// Package app hosts the snapshot-driven run loop: it polls a directory for
// decision snapshots, feeds each one through the engine, and periodically
// logs the book's status.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oddslab/bookengine/internal/config"
	"github.com/oddslab/bookengine/internal/detector"
	"github.com/oddslab/bookengine/internal/engine"
	"github.com/oddslab/bookengine/internal/portfolio"
	"github.com/oddslab/bookengine/internal/risk"
	"github.com/oddslab/bookengine/internal/sizing"
)

// App owns the engine and the run loop configuration.
type App struct {
	cfg    *config.Config
	engine *engine.Engine
	logger *slog.Logger
}

// New wires the pipeline components from configuration.
func New(cfg *config.Config, logger *slog.Logger) *App {
	det := detector.New(detector.Config{
		MinEdge:         cfg.Detector.MinEdge,
		MinConfidence:   cfg.Detector.MinConfidence,
		MinDecimalPrice: cfg.Detector.MinDecimalPrice,
		MaxDecimalPrice: cfg.Detector.MaxDecimalPrice,
	}, logger)

	sizer := sizing.New(sizing.Config{
		MaxKellyFraction: cfg.Sizing.MaxKellyFraction,
		FractionalKelly:  cfg.Sizing.FractionalKelly,
		MinKellyFraction: cfg.Sizing.MinKellyFraction,
		MaxBetFraction:   cfg.Sizing.MaxBetFraction,
		MinStake:         cfg.Sizing.MinStake,
	}, logger)

	riskMgr := risk.New(risk.Config{
		MaxTotalExposure:       cfg.Risk.MaxTotalExposure,
		MaxEventExposure:       cfg.Risk.MaxEventExposure,
		MaxParticipantExposure: cfg.Risk.MaxParticipantExposure,
		MaxDailyRiskRatio:      cfg.Risk.MaxDailyRiskRatio,
		MaxDrawdown:            cfg.Risk.MaxDrawdown,
	}, logger)

	ledger := portfolio.New(portfolio.Config{
		InitialBankroll:        cfg.Portfolio.InitialBankroll,
		MaxPositions:           cfg.Portfolio.MaxPositions,
		DailyRiskFraction:      cfg.Portfolio.DailyRiskFraction,
		AutoCompound:           cfg.Portfolio.AutoCompound,
		CompoundMultiple:       cfg.Portfolio.CompoundMultiple,
		MaxTotalExposure:       cfg.Risk.MaxTotalExposure,
		MaxEventExposure:       cfg.Risk.MaxEventExposure,
		MaxParticipantExposure: cfg.Risk.MaxParticipantExposure,
	}, logger)

	eng := engine.New(det, sizer, riskMgr, ledger, cfg.Detector.MaxQuoteAge.Duration, logger)

	return &App{
		cfg:    cfg,
		engine: eng,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Engine exposes the wired engine, mainly for embedding callers.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Run starts the snapshot poll loop and the status reporter and blocks until
// the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("app started",
		slog.String("snapshot_dir", a.cfg.App.SnapshotDir),
		slog.Duration("poll_interval", a.cfg.App.PollInterval.Duration),
	)
	defer a.logger.Info("app stopped")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.pollLoop(ctx)
	})
	g.Go(func() error {
		return a.statusLoop(ctx)
	})

	return g.Wait()
}

// pollLoop scans the snapshot directory on a ticker and processes any new
// snapshot files.
func (a *App) pollLoop(ctx context.Context) error {
	ticker := time.NewTicker(a.cfg.App.PollInterval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.processDir(); err != nil {
				a.logger.Warn("snapshot scan failed", slog.String("error", err.Error()))
			}
		}
	}
}

// statusLoop periodically logs a one-line summary of the book.
func (a *App) statusLoop(ctx context.Context) error {
	ticker := time.NewTicker(a.cfg.App.StatusInterval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			st := a.engine.Status()
			a.logger.Info("book status",
				slog.Float64("bankroll", st.Portfolio.TotalBankroll),
				slog.Float64("available", st.Portfolio.AvailableBalance),
				slog.Float64("exposure", st.Portfolio.TotalExposure),
				slog.Int("open_positions", len(st.Portfolio.OpenPositions)),
				slog.Float64("roi", st.Performance.ROI),
				slog.Float64("drawdown", st.Drawdown),
				slog.String("drawdown_level", string(st.DrawdownLevel)),
				slog.Int("violations", len(st.Violations)),
			)
		}
	}
}

// processDir handles every unprocessed snapshot file in the configured
// directory, oldest name first.
func (a *App) processDir() error {
	entries, err := os.ReadDir(a.cfg.App.SnapshotDir)
	if err != nil {
		return fmt.Errorf("read snapshot dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(a.cfg.App.SnapshotDir, name)
		if err := a.processFile(path); err != nil {
			a.logger.Warn("snapshot processing failed",
				slog.String("file", name),
				slog.String("error", err.Error()),
			)
			continue
		}
		// Mark the file handled so the next scan skips it.
		if err := os.Rename(path, path+".done"); err != nil {
			a.logger.Warn("could not archive snapshot",
				slog.String("file", name),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// processFile decodes one snapshot and runs it through the engine.
func (a *App) processFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	predictions, quotes, events := snap.toDomain()
	positions := a.engine.Process(predictions, quotes, events)
	a.logger.Info("snapshot processed",
		slog.String("file", filepath.Base(path)),
		slog.Int("predictions", len(predictions)),
		slog.Int("committed", len(positions)),
	)
	return nil
}
