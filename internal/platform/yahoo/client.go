// Package yahoo is the REST client for the Yahoo Finance quote API, used for
// equity index context.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/cryptosift/cryptosift/internal/domain"
	"github.com/cryptosift/cryptosift/internal/pacing"
	"github.com/cryptosift/cryptosift/internal/transport"
)

const providerKey = "yahoo"

// Quote is one symbol's regular-market reading.
type Quote struct {
	Price         float64
	PreviousClose float64
}

// Client queries the v7 quote endpoint per symbol.
type Client struct {
	baseURL string
	http    *transport.Client
	pacer   *pacing.Pacer
}

// NewClient creates a Yahoo Finance client.
//
// baseURL is the API root, e.g. "https://query1.finance.yahoo.com".
func NewClient(baseURL string, http *transport.Client, pacer *pacing.Pacer) *Client {
	return &Client{
		baseURL: baseURL,
		http:    http,
		pacer:   pacer,
	}
}

// quoteResponse is the provider envelope for /v7/finance/quote.
type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"quoteResponse"`
}

// Quote returns the latest price and previous close for one symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (Quote, error) {
	if err := c.pacer.Wait(ctx, providerKey); err != nil {
		return Quote{}, fmt.Errorf("yahoo: pacing: %w", err)
	}

	params := url.Values{}
	params.Set("symbols", symbol)
	fullURL := c.baseURL + "/v7/finance/quote?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("yahoo: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	// The quote API rejects requests without a browser-like user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; cryptosift/1.0)")

	resp, err := c.http.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("yahoo: get quote %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Quote{}, fmt.Errorf("yahoo: read response: %w", err)
	}

	var qr quoteResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return Quote{}, fmt.Errorf("yahoo: decode response: %w", err)
	}

	if len(qr.QuoteResponse.Result) == 0 {
		return Quote{}, fmt.Errorf("yahoo: quote %s: empty result: %w", symbol, domain.ErrNoData)
	}

	r := qr.QuoteResponse.Result[0]
	if r.RegularMarketPreviousClose == 0 {
		return Quote{}, fmt.Errorf("yahoo: quote %s: missing previous close: %w", symbol, domain.ErrBadResponse)
	}

	return Quote{
		Price:         r.RegularMarketPrice,
		PreviousClose: r.RegularMarketPreviousClose,
	}, nil
}
