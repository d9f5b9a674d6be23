package domain

import "time"

// Trend is the elicited price-trend category for a forecast horizon.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// ForecastResult is one completed per-asset forecast. It is created by the
// forecast engine on a successful parse and never mutated afterwards.
type ForecastResult struct {
	AssetID      string  // short asset name, e.g. "btc"
	PairID       string  // full instrument id, e.g. "BTC-USDT"
	CurrentPrice float64
	Narrative    string // verbatim first-turn model output

	UpProb   int // integers in [0,100]; the three sum to 100
	DownProb int
	FlatProb int

	DominantTrend Trend
	DominantProb  int

	TargetTimestamp time.Time // rounded run time + horizon
}

// Dominant returns the trend with the strictly greatest probability,
// evaluated in the fixed order (up, down, flat) so exact ties resolve to the
// earlier-listed trend.
func Dominant(up, down, flat int) (Trend, int) {
	trend, prob := TrendUp, up
	if down > prob {
		trend, prob = TrendDown, down
	}
	if flat > prob {
		trend, prob = TrendFlat, flat
	}
	return trend, prob
}

// Summary is the final reduction over all per-asset results. PerAsset keeps
// input order; TopPick is the result with the maximum dominant probability,
// earliest occurrence winning ties.
type Summary struct {
	RunID    string
	PerAsset []ForecastResult
	TopPick  ForecastResult
}

// TopPick selects the summary highlight from results. ok is false when
// results is empty.
func TopPick(results []ForecastResult) (ForecastResult, bool) {
	if len(results) == 0 {
		return ForecastResult{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.DominantProb > best.DominantProb {
			best = r
		}
	}
	return best, true
}
