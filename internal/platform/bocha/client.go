// Package bocha is the REST client for the Bocha web-search API.
package bocha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cryptosift/cryptosift/internal/pacing"
	"github.com/cryptosift/cryptosift/internal/transport"
)

const providerKey = "bocha"

// WebPage is one search hit.
type WebPage struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Client is the bearer-authenticated search client.
type Client struct {
	baseURL string
	apiKey  string
	http    *transport.Client
	pacer   *pacing.Pacer
}

// NewClient creates a search client.
//
// baseURL is the full search endpoint, e.g. "https://api.bochaai.com/v1/web-search".
func NewClient(baseURL, apiKey string, http *transport.Client, pacer *pacing.Pacer) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    http,
		pacer:   pacer,
	}
}

// searchRequest is the provider request body.
type searchRequest struct {
	Query     string `json:"query"`
	Count     int    `json:"count"`
	Freshness string `json:"freshness"`
}

// searchResponse nests results at data.webPages.value.
type searchResponse struct {
	Data struct {
		WebPages struct {
			Value []WebPage `json:"value"`
		} `json:"webPages"`
	} `json:"data"`
}

// Search runs one paced query and returns up to count recent results within
// the freshness window.
func (c *Client) Search(ctx context.Context, query string, count int, freshness string) ([]WebPage, error) {
	if err := c.pacer.Wait(ctx, providerKey); err != nil {
		return nil, fmt.Errorf("bocha: pacing: %w", err)
	}

	payload, err := json.Marshal(searchRequest{
		Query:     query,
		Count:     count,
		Freshness: freshness,
	})
	if err != nil {
		return nil, fmt.Errorf("bocha: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("bocha: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bocha: search %q: %w", query, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("bocha: read response: %w", err)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("bocha: decode response: %w", err)
	}

	return sr.Data.WebPages.Value, nil
}
