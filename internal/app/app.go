// Package app provides the top-level application lifecycle for the
// cryptosift forecast pipeline. It wires together all dependencies
// (transport, pacing, provider clients, fetchers, engine, cache,
// notifications) and runs the pipeline in the configured mode.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cryptosift/cryptosift/internal/config"
	"github.com/cryptosift/cryptosift/internal/domain"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, selects the
// operating mode, and blocks until the run completes or the context is
// cancelled. On return the registered cleanup functions have been queued for
// Close.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("mode", a.cfg.Mode),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	switch strings.ToLower(a.cfg.Mode) {
	case "forecast":
		return a.forecastMode(ctx, deps)
	case "watch":
		return a.watchMode(ctx, deps)
	default:
		return fmt.Errorf("app: unsupported mode %q", a.cfg.Mode)
	}
}

// forecastMode executes a single forecast run.
func (a *App) forecastMode(ctx context.Context, deps *Dependencies) error {
	_, err := deps.Orchestrator.Run(ctx)
	return err
}

// watchMode repeats forecast runs on the configured interval until the
// context is cancelled. A run that aborts on an empty price fetch does not
// stop the watch; the next tick retries from scratch.
func (a *App) watchMode(ctx context.Context, deps *Dependencies) error {
	interval := a.cfg.Forecast.WatchInterval.Duration

	for {
		if _, err := deps.Orchestrator.Run(ctx); err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, domain.ErrNoPrices) {
				a.logger.WarnContext(ctx, "run aborted, waiting for next tick",
					slog.String("error", err.Error()),
				)
			} else {
				return err
			}
		}

		a.logger.InfoContext(ctx, "next run scheduled",
			slog.Duration("interval", interval),
		)

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Close runs all registered cleanup functions in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
