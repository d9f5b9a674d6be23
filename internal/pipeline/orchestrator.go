// Package pipeline sequences one forecast run: snapshot collection, asset
// price fetch, per-asset forecasting, and final aggregation.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cryptosift/cryptosift/internal/aggregate"
	"github.com/cryptosift/cryptosift/internal/domain"
	"github.com/cryptosift/cryptosift/internal/notify"
)

// Orchestrator owns the overall run. It depends only on the domain
// capability interfaces, never on concrete providers.
type Orchestrator struct {
	news     domain.NewsSource
	calendar domain.CalendarSource
	equity   domain.EquitySource
	prices   domain.PriceSource
	engine   domain.Forecaster

	cache       domain.SnapshotCache // nil disables snapshot reuse
	snapshotTTL time.Duration

	maxRetries  int // per-asset forecast attempts
	concurrency int // bounded per-asset fan-out, 1 = serial

	out      io.Writer
	notifier *notify.Notifier
	logger   *slog.Logger
}

// Config bundles the orchestrator's collaborators and tunables.
type Config struct {
	News     domain.NewsSource
	Calendar domain.CalendarSource
	Equity   domain.EquitySource
	Prices   domain.PriceSource
	Engine   domain.Forecaster

	Cache       domain.SnapshotCache
	SnapshotTTL time.Duration

	MaxRetries  int
	Concurrency int

	Out      io.Writer
	Notifier *notify.Notifier
	Logger   *slog.Logger
}

// NewOrchestrator creates an Orchestrator from cfg.
func NewOrchestrator(cfg Config) *Orchestrator {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{
		news:        cfg.News,
		calendar:    cfg.Calendar,
		equity:      cfg.Equity,
		prices:      cfg.Prices,
		engine:      cfg.Engine,
		cache:       cfg.Cache,
		snapshotTTL: cfg.SnapshotTTL,
		maxRetries:  cfg.MaxRetries,
		concurrency: concurrency,
		out:         cfg.Out,
		notifier:    cfg.Notifier,
		logger:      cfg.Logger.With(slog.String("component", "orchestrator")),
	}
}

// Run executes one full forecast run and returns the summary. An empty price
// fetch aborts the run with domain.ErrNoPrices; every other source failure
// degrades into sentinels or omissions.
func (o *Orchestrator) Run(ctx context.Context) (domain.Summary, error) {
	runID := uuid.NewString()
	log := o.logger.With(slog.String("run_id", runID))
	started := time.Now()

	log.InfoContext(ctx, "forecast run starting")

	snap := o.collectSnapshot(ctx, log)

	prices := o.prices.FetchPrices(ctx)
	if len(prices) == 0 {
		log.ErrorContext(ctx, "no asset prices fetched, aborting run")
		o.notify(ctx, "run_failed", "forecast run failed", "no asset prices could be fetched")
		return domain.Summary{RunID: runID}, domain.ErrNoPrices
	}

	results := o.forecastAll(ctx, log, prices, snap)

	summary, ok := aggregate.Build(runID, results)
	report := aggregate.Render(summary)

	fmt.Fprintln(o.out, report)
	o.notify(ctx, "run_completed", "forecast run completed", report)

	log.InfoContext(ctx, "forecast run finished",
		slog.Int("assets_priced", len(prices)),
		slog.Int("assets_forecast", len(results)),
		slog.Bool("has_predictions", ok),
		slog.Duration("elapsed", time.Since(started)),
	)

	return summary, ctx.Err()
}

// collectSnapshot assembles the read-only market context. The three source
// fetchers share no mutable state, so they run concurrently; each one's
// provider pacing stays serialized inside its own client. When a cache is
// configured, a fresh cached snapshot short-circuits the fetch.
func (o *Orchestrator) collectSnapshot(ctx context.Context, log *slog.Logger) domain.MarketSnapshot {
	if o.cache != nil {
		if snap, err := o.cache.Get(ctx); err == nil {
			log.InfoContext(ctx, "using cached market snapshot")
			return snap
		}
	}

	var snap domain.MarketSnapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap.NewsDigest = o.news.FetchNews(gctx)
		return nil
	})
	g.Go(func() error {
		snap.CalendarDigest = o.calendar.FetchCalendar(gctx)
		return nil
	})
	g.Go(func() error {
		snap.EquityIndices = o.equity.FetchEquities(gctx)
		return nil
	})
	_ = g.Wait() // fetchers degrade internally and never return errors

	if o.cache != nil && ctx.Err() == nil {
		if err := o.cache.Set(ctx, snap, o.snapshotTTL); err != nil {
			log.WarnContext(ctx, "snapshot cache write failed",
				slog.String("error", err.Error()),
			)
		}
	}

	return snap
}

// forecastAll runs the engine for every priced asset under the bounded
// concurrency cap, keeping results in input pair order. An asset whose every
// attempt fails is dropped; the rest of the run continues.
func (o *Orchestrator) forecastAll(ctx context.Context, log *slog.Logger, prices []domain.AssetPrice, snap domain.MarketSnapshot) []domain.ForecastResult {
	slots := make([]*domain.ForecastResult, len(prices))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i, price := range prices {
		i, price := i, price
		g.Go(func() error {
			res, ok := o.forecastOne(gctx, log, price, snap)
			if ok {
				slots[i] = &res
			}
			return nil
		})
	}
	_ = g.Wait()

	results := make([]domain.ForecastResult, 0, len(prices))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results
}

// forecastOne retries the engine up to the per-asset budget, keeping the
// first success.
func (o *Orchestrator) forecastOne(ctx context.Context, log *slog.Logger, price domain.AssetPrice, snap domain.MarketSnapshot) (domain.ForecastResult, bool) {
	for attempt := 1; attempt <= o.maxRetries; attempt++ {
		res, err := o.engine.Forecast(ctx, price, snap)
		if err == nil {
			return res, true
		}
		if ctx.Err() != nil {
			return domain.ForecastResult{}, false
		}
		log.WarnContext(ctx, "forecast attempt failed",
			slog.String("pair", price.PairID),
			slog.Int("attempt", attempt),
			slog.Int("max_retries", o.maxRetries),
			slog.String("error", err.Error()),
		)
	}

	log.ErrorContext(ctx, "asset dropped after exhausting forecast retries",
		slog.String("pair", price.PairID),
	)
	return domain.ForecastResult{}, false
}

// notify forwards a run-level event; delivery failures are already logged by
// the notifier and never affect the run outcome.
func (o *Orchestrator) notify(ctx context.Context, event, title, message string) {
	if o.notifier == nil {
		return
	}
	_ = o.notifier.Notify(ctx, event, title, message)
}
