package forecast

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptosift/cryptosift/internal/domain"
	"github.com/cryptosift/cryptosift/internal/platform/deepseek"
)

func TestRoundTime(t *testing.T) {
	base := func(min int) time.Time {
		return time.Date(2026, 8, 31, 10, min, 42, 12345, time.Local)
	}

	tests := []struct {
		minute   int
		wantHour int
		wantMin  int
	}{
		{0, 10, 0},
		{14, 10, 0},
		{15, 10, 30},
		{30, 10, 30},
		{44, 10, 30},
		{45, 11, 0},
		{59, 11, 0},
	}

	for _, tt := range tests {
		got := RoundTime(base(tt.minute))
		assert.Equal(t, tt.wantHour, got.Hour(), "minute=%d", tt.minute)
		assert.Equal(t, tt.wantMin, got.Minute(), "minute=%d", tt.minute)
		assert.Zero(t, got.Second(), "minute=%d", tt.minute)
		assert.Zero(t, got.Nanosecond(), "minute=%d", tt.minute)
	}
}

func TestParseProbabilities(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		up      int
		down    int
		flat    int
		wantErr bool
	}{
		{"canonical", "Up 40%, Down 35%, Flat 25%", 40, 35, 25, false},
		{"lowercase with prose", "I expect: up 55%, down 30%, flat 15% overall.", 55, 30, 15, false},
		{"colon separated", "Up: 20%, Down: 70%, Flat: 10%", 20, 70, 10, false},
		{"missing flat", "Up 60%, Down 40%", 0, 0, 0, true},
		{"missing all", "the market looks uncertain", 0, 0, 0, true},
		{"does not sum to 100", "Up 50%, Down 40%, Flat 20%", 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, down, flat, err := parseProbabilities(tt.text)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrParseFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.up, up)
			assert.Equal(t, tt.down, down)
			assert.Equal(t, tt.flat, flat)
		})
	}
}

// scriptedChatter replays canned responses and records every conversation it
// was sent.
type scriptedChatter struct {
	responses []string
	calls     [][]deepseek.Message
}

func (s *scriptedChatter) Chat(_ context.Context, messages []deepseek.Message) (string, error) {
	s.calls = append(s.calls, messages)
	if len(s.calls) > len(s.responses) {
		return "", errors.New("no scripted response left")
	}
	return s.responses[len(s.calls)-1], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestForecastTwoTurnExchange(t *testing.T) {
	chat := &scriptedChatter{responses: []string{
		"btc looks mildly bullish on ETF inflows.",
		"Up 45%, Down 30%, Flat 25%",
	}}

	engine := NewEngine(chat, 8, testLogger())
	engine.now = func() time.Time {
		return time.Date(2026, 8, 31, 10, 20, 0, 0, time.Local)
	}

	snap := domain.MarketSnapshot{
		NewsDigest:     "ETF inflows hit a record: data shows...",
		CalendarDigest: "2026-09-03 Mainnet upgrade (Solana)",
		EquityIndices: map[string]domain.EquityQuote{
			"S&P 500": {Price: 6400.12, ChangePercent: -0.42},
		},
	}

	res, err := engine.Forecast(context.Background(), domain.AssetPrice{PairID: "BTC-USDT", LastPrice: 109321.5}, snap)
	require.NoError(t, err)

	assert.Equal(t, "btc", res.AssetID)
	assert.Equal(t, "BTC-USDT", res.PairID)
	assert.Equal(t, 109321.5, res.CurrentPrice)
	assert.Equal(t, "btc looks mildly bullish on ETF inflows.", res.Narrative)
	assert.Equal(t, 45, res.UpProb)
	assert.Equal(t, 30, res.DownProb)
	assert.Equal(t, 25, res.FlatProb)
	assert.Equal(t, 100, res.UpProb+res.DownProb+res.FlatProb)
	assert.Equal(t, domain.TrendUp, res.DominantTrend)
	assert.Equal(t, 45, res.DominantProb)

	// 10:20 rounds to 10:30; +8h horizon.
	want := time.Date(2026, 8, 31, 18, 30, 0, 0, time.Local)
	assert.Equal(t, want, res.TargetTimestamp)

	// The second call must replay the first exchange as one conversation.
	require.Len(t, chat.calls, 2)
	require.Len(t, chat.calls[0], 1)
	require.Len(t, chat.calls[1], 3)
	assert.Equal(t, deepseek.RoleUser, chat.calls[1][0].Role)
	assert.Equal(t, chat.calls[0][0].Content, chat.calls[1][0].Content)
	assert.Equal(t, deepseek.RoleAssistant, chat.calls[1][1].Role)
	assert.Equal(t, "btc looks mildly bullish on ETF inflows.", chat.calls[1][1].Content)
	assert.Equal(t, deepseek.RoleUser, chat.calls[1][2].Role)
	assert.Contains(t, chat.calls[1][2].Content, `"Up X%, Down Y%, Flat Z%"`)

	// The context embeds every snapshot ingredient.
	prompt := chat.calls[0][0].Content
	assert.Contains(t, prompt, "btc is trading at 109321.5 USD")
	assert.Contains(t, prompt, "2026-08-31 10:30")
	assert.Contains(t, prompt, "Mainnet upgrade")
	assert.Contains(t, prompt, "S&P 500 6400.12 (down 0.42%)")
	assert.Contains(t, prompt, "ETF inflows hit a record")
	assert.Contains(t, prompt, "next 8 hours")
}

func TestForecastUnparsableProbabilities(t *testing.T) {
	chat := &scriptedChatter{responses: []string{
		"some narrative",
		"hard to say, really",
	}}

	engine := NewEngine(chat, 8, testLogger())

	_, err := engine.Forecast(context.Background(), domain.AssetPrice{PairID: "ETH-USDT", LastPrice: 4000}, domain.MarketSnapshot{})
	require.ErrorIs(t, err, domain.ErrParseFailed)
}

func TestEquitySummaryEmpty(t *testing.T) {
	assert.Equal(t, "no equity data available", equitySummary(nil))
}
