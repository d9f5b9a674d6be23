package fetch

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cryptosift/cryptosift/internal/domain"
)

// NoEventsSentinel is returned when every calendar provider is exhausted.
const NoEventsSentinel = "no upcoming calendar events"

// CalendarProvider is one calendar source in the fallback order.
type CalendarProvider interface {
	Name() string
	Events(ctx context.Context, max int) ([]domain.CalendarEvent, error)
}

// CalendarFetcher tries providers in order and uses the first one that
// yields at least one event. Providers are never merged.
type CalendarFetcher struct {
	providers []CalendarProvider
	maxEvents int
	logger    *slog.Logger
}

// NewCalendarFetcher creates a calendar fetcher over the ordered providers.
func NewCalendarFetcher(providers []CalendarProvider, maxEvents int, logger *slog.Logger) *CalendarFetcher {
	return &CalendarFetcher{
		providers: providers,
		maxEvents: maxEvents,
		logger:    logger.With(slog.String("component", "calendar_fetcher")),
	}
}

// FetchCalendar returns the winning provider's events formatted as
// "date title (coins)" joined by "; ". A provider that errors or returns
// zero events falls through to the next; full exhaustion yields the
// no-events sentinel.
func (f *CalendarFetcher) FetchCalendar(ctx context.Context) string {
	for _, p := range f.providers {
		events, err := p.Events(ctx, f.maxEvents)
		if err != nil {
			f.logger.WarnContext(ctx, "calendar provider failed",
				slog.String("provider", p.Name()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if len(events) == 0 {
			f.logger.DebugContext(ctx, "calendar provider returned no events",
				slog.String("provider", p.Name()),
			)
			continue
		}

		f.logger.InfoContext(ctx, "calendar events fetched",
			slog.String("provider", p.Name()),
			slog.Int("count", len(events)),
		)

		lines := make([]string, 0, len(events))
		for _, e := range events {
			lines = append(lines, e.String())
		}
		return strings.Join(lines, "; ")
	}

	f.logger.WarnContext(ctx, "all calendar providers exhausted")
	return NoEventsSentinel
}
