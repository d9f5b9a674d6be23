// Package okx is the REST client for the OKX market-data API.
package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cryptosift/cryptosift/internal/crypto"
	"github.com/cryptosift/cryptosift/internal/domain"
	"github.com/cryptosift/cryptosift/internal/pacing"
	"github.com/cryptosift/cryptosift/internal/transport"
)

// providerKey identifies this provider to the pacer.
const providerKey = "okx"

const tickerPath = "/api/v5/market/ticker"

// Client is the signed OKX REST client.
type Client struct {
	baseURL string
	auth    *crypto.HMACAuth
	http    *transport.Client
	pacer   *pacing.Pacer
}

// NewClient creates an OKX client.
//
// baseURL is the API root, e.g. "https://www.okx.com".
func NewClient(baseURL string, auth *crypto.HMACAuth, http *transport.Client, pacer *pacing.Pacer) *Client {
	return &Client{
		baseURL: baseURL,
		auth:    auth,
		http:    http,
		pacer:   pacer,
	}
}

// Ticker returns the last traded price for the given instrument id. Success
// requires the provider code "0" and a non-empty data array; anything else is
// domain.ErrNoData or domain.ErrBadResponse.
func (c *Client) Ticker(ctx context.Context, instID string) (float64, error) {
	if err := c.pacer.Wait(ctx, providerKey); err != nil {
		return 0, fmt.Errorf("okx: pacing: %w", err)
	}

	params := url.Values{}
	params.Set("instId", instID)
	path := tickerPath
	fullURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, fmt.Errorf("okx: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	// Signature covers the request path without the query string, matching
	// the provider's public-endpoint convention.
	for k, v := range c.auth.Headers(http.MethodGet, path, "") {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("okx: get ticker %s: %w", instID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("okx: read ticker response: %w", err)
	}

	var tr tickerResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return 0, fmt.Errorf("okx: decode ticker: %w", err)
	}

	if tr.Code != "0" {
		return 0, fmt.Errorf("okx: ticker %s: code %s (%s): %w", instID, tr.Code, tr.Msg, domain.ErrNoData)
	}
	if len(tr.Data) == 0 {
		return 0, fmt.Errorf("okx: ticker %s: empty data: %w", instID, domain.ErrNoData)
	}

	last, err := strconv.ParseFloat(tr.Data[0].Last, 64)
	if err != nil {
		return 0, fmt.Errorf("okx: ticker %s: bad last price %q: %w", instID, tr.Data[0].Last, domain.ErrBadResponse)
	}

	return last, nil
}
