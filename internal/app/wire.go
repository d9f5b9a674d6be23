package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cryptosift/cryptosift/internal/cache/redis"
	"github.com/cryptosift/cryptosift/internal/config"
	"github.com/cryptosift/cryptosift/internal/crypto"
	"github.com/cryptosift/cryptosift/internal/domain"
	"github.com/cryptosift/cryptosift/internal/fetch"
	"github.com/cryptosift/cryptosift/internal/forecast"
	"github.com/cryptosift/cryptosift/internal/notify"
	"github.com/cryptosift/cryptosift/internal/pacing"
	"github.com/cryptosift/cryptosift/internal/pipeline"
	"github.com/cryptosift/cryptosift/internal/platform/bocha"
	"github.com/cryptosift/cryptosift/internal/platform/coingecko"
	"github.com/cryptosift/cryptosift/internal/platform/coinmarketcal"
	"github.com/cryptosift/cryptosift/internal/platform/deepseek"
	"github.com/cryptosift/cryptosift/internal/platform/okx"
	"github.com/cryptosift/cryptosift/internal/platform/yahoo"
	"github.com/cryptosift/cryptosift/internal/transport"
)

// Dependencies bundles everything the application modes need to operate. It
// is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Orchestrator *pipeline.Orchestrator
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- Shared transport and pacing ---
	httpClient := transport.NewClient(
		transport.WithTimeout(cfg.HTTP.Timeout.Duration),
		transport.WithMaxRetries(cfg.HTTP.MaxRetries),
		transport.WithBackoffBase(cfg.HTTP.BackoffBase.Duration),
	)
	pacer := pacing.NewPacer(cfg.Pacing.Interval.Duration)

	// --- OKX credentials ---
	secret, err := crypto.LoadSecret(crypto.SecretConfig{
		RawSecret:           cfg.OKX.SecretKey,
		EncryptedSecretPath: cfg.OKX.EncryptedSecretPath,
		SecretPassword:      cfg.OKX.SecretPassword,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: okx secret: %w", err)
	}
	auth := &crypto.HMACAuth{
		Key:        cfg.OKX.ApiKey,
		Secret:     secret,
		Passphrase: cfg.OKX.Passphrase,
	}

	// --- Provider clients ---
	okxClient := okx.NewClient(cfg.OKX.BaseURL, auth, httpClient, pacer)
	searchClient := bocha.NewClient(cfg.Search.BaseURL, cfg.Search.ApiKey, httpClient, pacer)
	cmcClient := coinmarketcal.NewClient(
		cfg.Calendar.CoinMarketCal.BaseURL,
		cfg.Calendar.CoinMarketCal.Token,
		cfg.Calendar.CoinMarketCal.RangeDays,
		httpClient, pacer,
	)
	geckoClient := coingecko.NewClient(cfg.Calendar.CoinGecko.BaseURL, httpClient, pacer)
	yahooClient := yahoo.NewClient(cfg.Equity.BaseURL, httpClient, pacer)
	llmClient := deepseek.NewClient(cfg.LLM.BaseURL, cfg.LLM.ApiKey, cfg.LLM.Model, httpClient, pacer)

	// --- Fetchers ---
	newsFetcher := fetch.NewNewsFetcher(
		searchClient,
		cfg.Search.Queries,
		cfg.Search.ResultsPerQuery,
		cfg.Search.Freshness,
		cfg.Search.SnippetMaxLen,
		cfg.Search.MaxItems,
		logger,
	)
	calendarFetcher := fetch.NewCalendarFetcher(
		[]fetch.CalendarProvider{cmcClient, geckoClient},
		cfg.Calendar.MaxEvents,
		logger,
	)
	equityFetcher := fetch.NewEquityFetcher(yahooClient, cfg.Equity.Indices, cfg.Equity.MaxRetries, logger)
	priceFetcher := fetch.NewPriceFetcher(okxClient, cfg.Forecast.Pairs, logger)

	// --- Forecast engine ---
	engine := forecast.NewEngine(llmClient, cfg.Forecast.HorizonHours, logger)

	// --- Snapshot cache (optional) ---
	var snapshotCache domain.SnapshotCache
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		snapshotCache = redis.NewSnapshotCache(redisClient)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	notifier := notify.NewNotifier(senders, cfg.Notify.Events, logger)

	orchestrator := pipeline.NewOrchestrator(pipeline.Config{
		News:        newsFetcher,
		Calendar:    calendarFetcher,
		Equity:      equityFetcher,
		Prices:      priceFetcher,
		Engine:      engine,
		Cache:       snapshotCache,
		SnapshotTTL: cfg.Redis.SnapshotTTL.Duration,
		MaxRetries:  cfg.Forecast.MaxRetries,
		Concurrency: cfg.Forecast.Concurrency,
		Out:         os.Stdout,
		Notifier:    notifier,
		Logger:      logger,
	})

	return &Dependencies{Orchestrator: orchestrator}, cleanup, nil
}
