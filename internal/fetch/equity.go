package fetch

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/cryptosift/cryptosift/internal/domain"
	"github.com/cryptosift/cryptosift/internal/platform/yahoo"
)

// Quoter is the slice of the equity client the fetcher needs.
type Quoter interface {
	Quote(ctx context.Context, symbol string) (yahoo.Quote, error)
}

// EquityFetcher reads a fixed set of named indices, retrying each
// independently. The quote client paces its own calls, so the retry loop
// here never hammers the provider.
type EquityFetcher struct {
	quotes     Quoter
	indices    map[string]string // display name -> provider symbol
	maxRetries int
	logger     *slog.Logger
}

// NewEquityFetcher creates an equity index fetcher.
func NewEquityFetcher(quotes Quoter, indices map[string]string, maxRetries int, logger *slog.Logger) *EquityFetcher {
	return &EquityFetcher{
		quotes:     quotes,
		indices:    indices,
		maxRetries: maxRetries,
		logger:     logger.With(slog.String("component", "equity_fetcher")),
	}
}

// FetchEquities returns quotes for every index that could be fetched within
// its retry budget. change percent = (price - prevClose) / prevClose * 100,
// rounded to 2 decimals. An exhausted index is logged and omitted; an empty
// map is a degraded result, not an error.
func (f *EquityFetcher) FetchEquities(ctx context.Context) map[string]domain.EquityQuote {
	out := make(map[string]domain.EquityQuote, len(f.indices))

	// Stable iteration order keeps pacing and logs deterministic.
	names := make([]string, 0, len(f.indices))
	for name := range f.indices {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		symbol := f.indices[name]

		var (
			q   yahoo.Quote
			err error
		)
		for attempt := 1; attempt <= f.maxRetries; attempt++ {
			q, err = f.quotes.Quote(ctx, symbol)
			if err == nil {
				break
			}
			if ctx.Err() != nil {
				return out
			}
		}
		if err != nil {
			f.logger.WarnContext(ctx, "equity index unavailable",
				slog.String("index", name),
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
			continue
		}

		change := round2((q.Price - q.PreviousClose) / q.PreviousClose * 100)
		out[name] = domain.EquityQuote{
			Price:         round2(q.Price),
			ChangePercent: change,
		}

		f.logger.DebugContext(ctx, "equity index fetched",
			slog.String("index", name),
			slog.Float64("price", q.Price),
			slog.Float64("change_percent", change),
		)
	}

	if len(out) == 0 {
		f.logger.WarnContext(ctx, "no equity data fetched, continuing without it")
	}

	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
