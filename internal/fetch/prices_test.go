package fetch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cryptosift/cryptosift/internal/domain"
)

type stubTicker struct {
	prices map[string]float64
}

func (s *stubTicker) Ticker(_ context.Context, instID string) (float64, error) {
	p, ok := s.prices[instID]
	if !ok {
		return 0, errors.New("instrument not found")
	}
	return p, nil
}

func TestFetchPricesPreservesPairOrder(t *testing.T) {
	ticker := &stubTicker{prices: map[string]float64{
		"BTC-USDT": 64250.5,
		"SOL-USDT": 148.2,
		"ETH-USDT": 3100,
	}}
	f := NewPriceFetcher(ticker, []string{"SOL-USDT", "BTC-USDT", "ETH-USDT"}, testLogger())

	got := f.FetchPrices(context.Background())

	assert.Equal(t, []domain.AssetPrice{
		{PairID: "SOL-USDT", LastPrice: 148.2},
		{PairID: "BTC-USDT", LastPrice: 64250.5},
		{PairID: "ETH-USDT", LastPrice: 3100},
	}, got)
}

func TestFetchPricesFailedPairOmitted(t *testing.T) {
	ticker := &stubTicker{prices: map[string]float64{"BTC-USDT": 64250.5}}
	f := NewPriceFetcher(ticker, []string{"BTC-USDT", "PEPE-USDT"}, testLogger())

	got := f.FetchPrices(context.Background())

	assert.Equal(t, []domain.AssetPrice{{PairID: "BTC-USDT", LastPrice: 64250.5}}, got)
}

func TestFetchPricesAllFailedYieldsEmptySlice(t *testing.T) {
	f := NewPriceFetcher(&stubTicker{}, []string{"BTC-USDT"}, testLogger())

	assert.Empty(t, f.FetchPrices(context.Background()))
}
