package domain

import (
	"context"
	"time"
)

// NewsSource produces the joined news digest for the run. Implementations
// are best-effort: they return the no-news sentinel rather than an error
// when every query comes back empty.
type NewsSource interface {
	FetchNews(ctx context.Context) string
}

// CalendarSource produces the joined calendar digest for the run, falling
// back across providers in a fixed order.
type CalendarSource interface {
	FetchCalendar(ctx context.Context) string
}

// EquitySource produces the equity index mapping for the run. Indices that
// cannot be fetched are simply absent.
type EquitySource interface {
	FetchEquities(ctx context.Context) map[string]EquityQuote
}

// PriceSource produces last-traded prices for the configured trading pairs,
// in pair order. Pairs that cannot be fetched are simply absent.
type PriceSource interface {
	FetchPrices(ctx context.Context) []AssetPrice
}

// Forecaster runs the two-turn inference exchange for one asset against the
// shared snapshot and returns the parsed result.
type Forecaster interface {
	Forecast(ctx context.Context, price AssetPrice, snap MarketSnapshot) (ForecastResult, error)
}

// SnapshotCache stores the assembled market snapshot between closely spaced
// runs. Get returns ErrCacheMiss when no fresh snapshot exists.
type SnapshotCache interface {
	Get(ctx context.Context) (MarketSnapshot, error)
	Set(ctx context.Context, snap MarketSnapshot, ttl time.Duration) error
}
