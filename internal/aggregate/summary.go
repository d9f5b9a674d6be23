// Package aggregate reduces the per-asset forecast results into the final
// textual report.
package aggregate

import (
	"fmt"
	"strings"

	"github.com/cryptosift/cryptosift/internal/domain"
)

// NoPredictionsSentinel is the report body when no asset produced a valid
// forecast.
const NoPredictionsSentinel = "no valid predictions"

// Build reduces results into a Summary. ok is false when results is empty,
// in which case Render falls back to the sentinel.
func Build(runID string, results []domain.ForecastResult) (domain.Summary, bool) {
	top, ok := domain.TopPick(results)
	if !ok {
		return domain.Summary{RunID: runID}, false
	}
	return domain.Summary{
		RunID:    runID,
		PerAsset: results,
		TopPick:  top,
	}, true
}

// Render produces the textual report: one line per asset plus a highlight
// line for the top pick. An empty summary renders the sentinel.
func Render(s domain.Summary) string {
	if len(s.PerAsset) == 0 {
		return NoPredictionsSentinel
	}

	var b strings.Builder

	b.WriteString("===== forecast results =====\n")
	for _, r := range s.PerAsset {
		fmt.Fprintf(&b, "%s (current %s): up %d%%, down %d%%, flat %d%% -> dominant: %s (%d%%)\n",
			r.AssetID, formatPrice(r.CurrentPrice), r.UpProb, r.DownProb, r.FlatProb,
			r.DominantTrend, r.DominantProb)
	}

	b.WriteString("\n===== top pick =====\n")
	fmt.Fprintf(&b, "%s: %s (%d%%)\n", s.TopPick.AssetID, s.TopPick.DominantTrend, s.TopPick.DominantProb)
	fmt.Fprintf(&b, "target time: %s", s.TopPick.TargetTimestamp.Format("2006-01-02 15:04"))

	return b.String()
}

func formatPrice(p float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.15f", p), "0"), ".")
}
