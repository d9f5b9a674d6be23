// Package forecast drives the two-turn inference exchange that turns the
// market snapshot plus one asset's price into a probabilistic trend forecast.
package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cryptosift/cryptosift/internal/domain"
	"github.com/cryptosift/cryptosift/internal/platform/deepseek"
)

// Chatter is the slice of the inference client the engine needs.
type Chatter interface {
	Chat(ctx context.Context, messages []deepseek.Message) (string, error)
}

// Probability extraction patterns for the fixed elicitation template
// "Up X%, Down Y%, Flat Z%".
var (
	upRe   = regexp.MustCompile(`(?i)\bup\s*[::]?\s*(\d{1,3})\s*%`)
	downRe = regexp.MustCompile(`(?i)\bdown\s*[::]?\s*(\d{1,3})\s*%`)
	flatRe = regexp.MustCompile(`(?i)\bflat\s*[::]?\s*(\d{1,3})\s*%`)
)

// Engine produces one ForecastResult per asset. The two inference calls of a
// single forecast form one conversation and must not interleave with another
// asset's calls against the same provider; the provider client's pacer
// serializes them.
type Engine struct {
	llm          Chatter
	horizonHours int
	now          func() time.Time
	logger       *slog.Logger
}

// NewEngine creates a forecast engine for the given horizon.
func NewEngine(llm Chatter, horizonHours int, logger *slog.Logger) *Engine {
	return &Engine{
		llm:          llm,
		horizonHours: horizonHours,
		now:          time.Now,
		logger:       logger.With(slog.String("component", "forecast_engine")),
	}
}

// RoundTime buckets t for the "as-of" label and target-timestamp arithmetic:
// minutes < 15 round down to the hour, 15-44 to the half hour, 45+ up to the
// next full hour.
func RoundTime(t time.Time) time.Time {
	top := t.Truncate(time.Minute).Add(-time.Duration(t.Minute()) * time.Minute)
	switch m := t.Minute(); {
	case m < 15:
		return top
	case m < 45:
		return top.Add(30 * time.Minute)
	default:
		return top.Add(time.Hour)
	}
}

// Forecast runs the full exchange for one asset: build the context, elicit a
// narrative, elicit the probability triple, parse and validate it.
func (e *Engine) Forecast(ctx context.Context, price domain.AssetPrice, snap domain.MarketSnapshot) (domain.ForecastResult, error) {
	assetID := assetName(price.PairID)
	rounded := RoundTime(e.now())
	prompt := e.buildContext(assetID, price.LastPrice, rounded, snap)

	// Turn one: the narrative forecast, captured verbatim.
	narrative, err := e.llm.Chat(ctx, []deepseek.Message{
		{Role: deepseek.RoleUser, Content: prompt},
	})
	if err != nil {
		return domain.ForecastResult{}, fmt.Errorf("forecast %s: narrative: %w", assetID, err)
	}

	// Turn two: replay the exchange and demand the strict triple.
	probText, err := e.llm.Chat(ctx, []deepseek.Message{
		{Role: deepseek.RoleUser, Content: prompt},
		{Role: deepseek.RoleAssistant, Content: narrative},
		{Role: deepseek.RoleUser, Content: probabilityPrompt(assetID)},
	})
	if err != nil {
		return domain.ForecastResult{}, fmt.Errorf("forecast %s: probability elicitation: %w", assetID, err)
	}

	up, down, flat, err := parseProbabilities(probText)
	if err != nil {
		e.logger.WarnContext(ctx, "probability parse failed",
			slog.String("asset", assetID),
			slog.String("raw", probText),
		)
		return domain.ForecastResult{}, fmt.Errorf("forecast %s: %w", assetID, err)
	}

	trend, prob := domain.Dominant(up, down, flat)

	return domain.ForecastResult{
		AssetID:         assetID,
		PairID:          price.PairID,
		CurrentPrice:    price.LastPrice,
		Narrative:       narrative,
		UpProb:          up,
		DownProb:        down,
		FlatProb:        flat,
		DominantTrend:   trend,
		DominantProb:    prob,
		TargetTimestamp: rounded.Add(time.Duration(e.horizonHours) * time.Hour),
	}, nil
}

// buildContext composes the natural-language context for turn one.
func (e *Engine) buildContext(assetID string, price float64, rounded time.Time, snap domain.MarketSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "It is now %s local time. %s is trading at %s USD.\n",
		rounded.Format("2006-01-02 15:04"), assetID, formatPrice(price))
	fmt.Fprintf(&b, "Upcoming economic calendar: %s\n", snap.CalendarDigest)
	fmt.Fprintf(&b, "US equity reference: %s\n", equitySummary(snap.EquityIndices))
	fmt.Fprintf(&b, "Latest market news: %s\n", snap.NewsDigest)
	fmt.Fprintf(&b, "Taking all of the above into account, forecast the price trend of %s over the next %d hours.",
		assetID, e.horizonHours)

	return b.String()
}

// probabilityPrompt is the fixed turn-two template demanding the triple.
func probabilityPrompt(assetID string) string {
	return fmt.Sprintf(`Based on your price forecast for %s, give:
1. the probability the price rises above the current level
2. the probability the price falls below the current level
3. the probability the price stays flat (within +/-1%%)
The three must sum to 100%%. Answer strictly in the format "Up X%%, Down Y%%, Flat Z%%" and output nothing else.`, assetID)
}

// parseProbabilities extracts the Up/Down/Flat integers. A missing number or
// a triple that does not sum to 100 is a parse-validation failure; the asset
// is never silently given default probabilities.
func parseProbabilities(text string) (up, down, flat int, err error) {
	upM := upRe.FindStringSubmatch(text)
	downM := downRe.FindStringSubmatch(text)
	flatM := flatRe.FindStringSubmatch(text)
	if upM == nil || downM == nil || flatM == nil {
		return 0, 0, 0, domain.ErrParseFailed
	}

	up, _ = strconv.Atoi(upM[1])
	down, _ = strconv.Atoi(downM[1])
	flat, _ = strconv.Atoi(flatM[1])

	if up+down+flat != 100 {
		return 0, 0, 0, fmt.Errorf("triple %d+%d+%d != 100: %w", up, down, flat, domain.ErrParseFailed)
	}

	return up, down, flat, nil
}

// equitySummary renders the index mapping as "name price (up 0.35%)" lines
// joined by "; ", in sorted name order.
func equitySummary(indices map[string]domain.EquityQuote) string {
	if len(indices) == 0 {
		return "no equity data available"
	}

	names := make([]string, 0, len(indices))
	for name := range indices {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		q := indices[name]
		dir := "up"
		change := q.ChangePercent
		if change < 0 {
			dir = "down"
			change = -change
		}
		parts = append(parts, fmt.Sprintf("%s %.2f (%s %.2f%%)", name, q.Price, dir, change))
	}

	return strings.Join(parts, "; ")
}

// assetName derives the short asset id from a trading pair, "BTC-USDT" -> "btc".
func assetName(pairID string) string {
	base, _, _ := strings.Cut(pairID, "-")
	return strings.ToLower(base)
}

// formatPrice renders a price at full precision without trailing zeros.
func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
