// Package app wires configuration, logging, storage and metrics for the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	alertsvc "github.com/zappabad/marketrush/internal/alert/service"
	"github.com/zappabad/marketrush/internal/config"
	gamesvc "github.com/zappabad/marketrush/internal/game/service"
	"github.com/zappabad/marketrush/internal/logger"
	"github.com/zappabad/marketrush/internal/observability"
	"github.com/zappabad/marketrush/internal/score"
)

// App holds the process-wide collaborators.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   score.Store
	Metrics *observability.Metrics

	metricsSrv *http.Server
	closeLog   func() error
}

// Bootstrap loads .env and the config file, then builds the logger, the
// score store and the metrics registry. A store that cannot be opened is
// replaced by a no-op one.
func Bootstrap(cfgPath string) (*App, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	log, closeLog, err := logger.Init(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &App{
		Config:   cfg,
		Logger:   log,
		Metrics:  observability.NewMetrics(""),
		closeLog: closeLog,
	}
	a.Store = openStore(cfg.Database.SQLitePath, log)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.Metrics.Handler())
		a.metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("metrics server stopped", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
		log.Info("serving metrics", "addr", cfg.MetricsAddr)
	}

	return a, nil
}

func openStore(path string, log *slog.Logger) score.Store {
	if path == "" {
		return score.NewNoopStore()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Warn("init sqlite store failed, using noop", "path", path, "error", err)
		return score.NewNoopStore()
	}
	st, err := score.NewSQLiteStore(path)
	if err != nil {
		log.Warn("init sqlite store failed, using noop", "path", path, "error", err)
		return score.NewNoopStore()
	}
	return st
}

// NewGameService starts a game service wired to the app's store, metrics and logger.
func (a *App) NewGameService() *gamesvc.Service {
	return gamesvc.NewService(a.Config.Service, gamesvc.Deps{
		Store:   a.Store,
		Metrics: a.Metrics,
		Logger:  a.Logger,
	})
}

// NewAlertService starts an alert service with the configured capacity.
func (a *App) NewAlertService() *alertsvc.AlertService {
	return alertsvc.NewAlertService(a.Config.Alerts)
}

// Close stops the metrics server and releases the store and log file.
func (a *App) Close() error {
	var errs []error
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		errs = append(errs, a.metricsSrv.Shutdown(ctx))
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.closeLog != nil {
		errs = append(errs, a.closeLog())
	}
	return errors.Join(errs...)
}
