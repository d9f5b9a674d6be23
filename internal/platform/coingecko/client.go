// Package coingecko is the REST client for the CoinGecko events API, the
// fallback calendar provider.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cryptosift/cryptosift/internal/domain"
	"github.com/cryptosift/cryptosift/internal/pacing"
	"github.com/cryptosift/cryptosift/internal/transport"
)

const providerKey = "coingecko"

// Client queries the CoinGecko upcoming-events endpoint. No credentials are
// required.
type Client struct {
	baseURL string
	http    *transport.Client
	pacer   *pacing.Pacer
}

// NewClient creates a CoinGecko client.
//
// baseURL is the API root, e.g. "https://api.coingecko.com/api/v3".
func NewClient(baseURL string, http *transport.Client, pacer *pacing.Pacer) *Client {
	return &Client{
		baseURL: baseURL,
		http:    http,
		pacer:   pacer,
	}
}

// Name identifies the provider in fallback logging.
func (c *Client) Name() string { return providerKey }

// eventsResponse nests events at data.upcoming_events, a different shape
// from the primary provider.
type eventsResponse struct {
	Data struct {
		UpcomingEvents []struct {
			Title struct {
				En string `json:"en"`
			} `json:"title"`
			StartDate string `json:"start_date"`
		} `json:"upcoming_events"`
	} `json:"data"`
}

// Events returns up to max upcoming events. CoinGecko events carry no coin
// tags, so Coins is always empty.
func (c *Client) Events(ctx context.Context, max int) ([]domain.CalendarEvent, error) {
	if err := c.pacer.Wait(ctx, providerKey); err != nil {
		return nil, fmt.Errorf("coingecko: pacing: %w", err)
	}

	fullURL := c.baseURL + "/events?upcoming_events_only=true"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("coingecko: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko: get events: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("coingecko: read response: %w", err)
	}

	var er eventsResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return nil, fmt.Errorf("coingecko: decode response: %w", err)
	}

	events := make([]domain.CalendarEvent, 0, max)
	for _, e := range er.Data.UpcomingEvents {
		if len(events) >= max {
			break
		}
		title := e.Title.En
		if title == "" {
			title = "untitled"
		}
		date := e.StartDate
		if date == "" {
			date = "date unknown"
		}
		events = append(events, domain.CalendarEvent{Title: title, Date: date})
	}

	return events, nil
}
