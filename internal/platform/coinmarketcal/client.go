// Package coinmarketcal is the REST client for the CoinMarketCal events API,
// the primary calendar provider.
package coinmarketcal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cryptosift/cryptosift/internal/domain"
	"github.com/cryptosift/cryptosift/internal/pacing"
	"github.com/cryptosift/cryptosift/internal/transport"
)

const providerKey = "coinmarketcal"

// Client queries the CoinMarketCal events endpoint.
type Client struct {
	baseURL   string
	token     string
	rangeDays int
	http      *transport.Client
	pacer     *pacing.Pacer
}

// NewClient creates a CoinMarketCal client.
//
// baseURL is the API root, e.g. "https://api.coinmarketcal.com/v1".
// rangeDays bounds the look-ahead window for events.
func NewClient(baseURL, token string, rangeDays int, http *transport.Client, pacer *pacing.Pacer) *Client {
	return &Client{
		baseURL:   baseURL,
		token:     token,
		rangeDays: rangeDays,
		http:      http,
		pacer:     pacer,
	}
}

// Name identifies the provider in fallback logging.
func (c *Client) Name() string { return providerKey }

// eventsResponse is the provider envelope: data[] of localized titles.
type eventsResponse struct {
	Data []struct {
		Title struct {
			En string `json:"en"`
		} `json:"title"`
		DateEvent string `json:"date_event"`
		Coins     []struct {
			Name string `json:"name"`
		} `json:"coins"`
	} `json:"data"`
}

// Events returns up to max upcoming events inside the configured window.
func (c *Client) Events(ctx context.Context, max int) ([]domain.CalendarEvent, error) {
	if err := c.pacer.Wait(ctx, providerKey); err != nil {
		return nil, fmt.Errorf("coinmarketcal: pacing: %w", err)
	}

	now := time.Now()
	params := url.Values{}
	params.Set("max", strconv.Itoa(max))
	params.Set("dateRangeStart", now.Format("2006-01-02"))
	params.Set("dateRangeEnd", now.AddDate(0, 0, c.rangeDays).Format("2006-01-02"))
	params.Set("access_token", c.token)

	fullURL := c.baseURL + "/events?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("coinmarketcal: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coinmarketcal: get events: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("coinmarketcal: read response: %w", err)
	}

	var er eventsResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return nil, fmt.Errorf("coinmarketcal: decode response: %w", err)
	}

	events := make([]domain.CalendarEvent, 0, len(er.Data))
	for _, e := range er.Data {
		if len(events) >= max {
			break
		}
		title := e.Title.En
		if title == "" {
			title = "untitled"
		}
		date := e.DateEvent
		if date == "" {
			date = "date unknown"
		}
		coins := make([]string, 0, len(e.Coins))
		for _, coin := range e.Coins {
			if strings.TrimSpace(coin.Name) != "" {
				coins = append(coins, coin.Name)
			}
		}
		events = append(events, domain.CalendarEvent{Title: title, Date: date, Coins: coins})
	}

	return events, nil
}
