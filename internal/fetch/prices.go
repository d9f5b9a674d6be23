package fetch

import (
	"context"
	"log/slog"

	"github.com/cryptosift/cryptosift/internal/domain"
)

// Ticker is the slice of the price client the fetcher needs.
type Ticker interface {
	Ticker(ctx context.Context, instID string) (float64, error)
}

// PriceFetcher reads the last traded price for each configured trading pair.
type PriceFetcher struct {
	ticker Ticker
	pairs  []string
	logger *slog.Logger
}

// NewPriceFetcher creates an asset price fetcher.
func NewPriceFetcher(ticker Ticker, pairs []string, logger *slog.Logger) *PriceFetcher {
	return &PriceFetcher{
		ticker: ticker,
		pairs:  pairs,
		logger: logger.With(slog.String("component", "price_fetcher")),
	}
}

// FetchPrices returns prices for every pair that could be fetched, in
// configured pair order. A failed pair is logged and absent; whether an
// entirely empty result is fatal is the orchestrator's call.
func (f *PriceFetcher) FetchPrices(ctx context.Context) []domain.AssetPrice {
	out := make([]domain.AssetPrice, 0, len(f.pairs))

	for _, pair := range f.pairs {
		last, err := f.ticker.Ticker(ctx, pair)
		if err != nil {
			f.logger.WarnContext(ctx, "price unavailable",
				slog.String("pair", pair),
				slog.String("error", err.Error()),
			)
			continue
		}

		out = append(out, domain.AssetPrice{PairID: pair, LastPrice: last})

		f.logger.InfoContext(ctx, "price fetched",
			slog.String("pair", pair),
			slog.Float64("last", last),
		)
	}

	return out
}
