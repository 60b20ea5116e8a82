// Package app wires configuration, logging, the dataset store and the
// explorer service into the process entry points.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"explorer/internal/config"
	"explorer/internal/dataset"
	_ "explorer/internal/dataset/sources"
	"explorer/internal/logging"
	"explorer/internal/metrics"
	"explorer/internal/service"
)

// Version is reported by the MCP server and the CLI.
var Version = "dev"

// App owns the long-lived components of one process.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	closeLog func()

	store    *dataset.Store
	explorer *service.ExplorerService
	warmer   *service.Warmer
}

// New builds the App from cfg. No network access happens here: the dataset
// is fetched on first use or by the warmer.
func New(cfg *config.Config) (*App, error) {
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}
	logger, closeLog := logging.Setup(logging.Options{
		Level:  level,
		Format: cfg.Log.Format,
		SeqURL: cfg.Log.Seq,
	})

	store, err := dataset.Open(cfg.Dataset.Source, cfg.Dataset.SourceConfig(),
		dataset.WithLogger(logger),
		dataset.WithFetchObserver(metrics.ObserveFetch),
	)
	if err != nil {
		closeLog()
		return nil, err
	}

	explorer := service.NewExplorerService(store,
		service.WithLogger(logger),
		service.WithQueryObserver(func(status string, _ time.Duration) { metrics.ObserveQuery(status) }),
	)

	return &App{
		cfg:      cfg,
		logger:   logger,
		closeLog: closeLog,
		store:    store,
		explorer: explorer,
	}, nil
}

// Logger returns the process logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Explorer returns the explorer service.
func (a *App) Explorer() *service.ExplorerService { return a.explorer }

// Startup starts the background warmer when enabled.
func (a *App) Startup(ctx context.Context) error {
	if !a.cfg.Warmup.Enabled {
		return nil
	}
	a.warmer = service.NewWarmer(a.explorer, service.WarmerConfig{
		Schedule:  a.cfg.Warmup.Schedule,
		WatchPath: a.cfg.WatchPath(),
		Timeout:   a.cfg.Warmup.Timeout,
	}, service.LogEmitter{Logger: a.logger}, a.logger)
	if err := a.warmer.Start(ctx); err != nil {
		return fmt.Errorf("start warmer: %w", err)
	}
	return nil
}

// Shutdown stops background work and flushes the logs.
func (a *App) Shutdown(ctx context.Context) {
	if a.warmer != nil {
		a.warmer.Stop(ctx)
	}
	a.logger.Info("shutdown complete")
	a.closeLog()
}
