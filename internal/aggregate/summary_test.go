package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptosift/cryptosift/internal/domain"
)

func result(asset string, up, down, flat int, price float64) domain.ForecastResult {
	trend, prob := domain.Dominant(up, down, flat)
	return domain.ForecastResult{
		AssetID:         asset,
		PairID:          asset + "-USDT",
		CurrentPrice:    price,
		UpProb:          up,
		DownProb:        down,
		FlatProb:        flat,
		DominantTrend:   trend,
		DominantProb:    prob,
		TargetTimestamp: time.Date(2026, 8, 31, 18, 30, 0, 0, time.UTC),
	}
}

func TestBuildPicksHighestDominant(t *testing.T) {
	results := []domain.ForecastResult{
		result("btc", 55, 30, 15, 64250.5),
		result("sol", 10, 70, 20, 148.2),
		result("eth", 40, 35, 25, 3100),
	}

	s, ok := Build("run-1", results)

	require.True(t, ok)
	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, "sol", s.TopPick.AssetID)
	assert.Equal(t, domain.TrendDown, s.TopPick.DominantTrend)
	assert.Len(t, s.PerAsset, 3)
}

func TestBuildEmptyResults(t *testing.T) {
	s, ok := Build("run-2", nil)

	assert.False(t, ok)
	assert.Equal(t, "run-2", s.RunID)
	assert.Empty(t, s.PerAsset)
}

func TestRenderReport(t *testing.T) {
	results := []domain.ForecastResult{
		result("btc", 55, 30, 15, 64250.5),
		result("pepe", 20, 20, 60, 0.00000812),
	}
	s, ok := Build("run-3", results)
	require.True(t, ok)

	got := Render(s)

	want := "===== forecast results =====\n" +
		"btc (current 64250.5): up 55%, down 30%, flat 15% -> dominant: up (55%)\n" +
		"pepe (current 0.00000812): up 20%, down 20%, flat 60% -> dominant: flat (60%)\n" +
		"\n===== top pick =====\n" +
		"pepe: flat (60%)\n" +
		"target time: 2026-08-31 18:30"
	assert.Equal(t, want, got)
}

func TestRenderEmptySummaryIsSentinel(t *testing.T) {
	s, _ := Build("run-4", nil)

	assert.Equal(t, NoPredictionsSentinel, Render(s))
}
