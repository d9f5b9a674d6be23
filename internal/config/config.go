// Package config defines the top-level configuration for the cryptosift
// forecast pipeline and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by SIFT_* environment variables.
type Config struct {
	Forecast FcastConfig    `toml:"forecast"`
	HTTP     HTTPConfig     `toml:"http"`
	Pacing   PacingConfig   `toml:"pacing"`
	OKX      OKXConfig      `toml:"okx"`
	Search   SearchConfig   `toml:"search"`
	Calendar CalendarConfig `toml:"calendar"`
	Equity   EquityConfig   `toml:"equity"`
	LLM      LLMConfig      `toml:"llm"`
	Redis    RedisConfig    `toml:"redis"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// FcastConfig holds the run-level forecasting parameters.
type FcastConfig struct {
	Pairs         []string `toml:"pairs"`          // trading pairs in forecast order
	HorizonHours  int      `toml:"horizon_hours"`  // forecast horizon
	MaxRetries    int      `toml:"max_retries"`    // per-asset forecast attempts
	Concurrency   int      `toml:"concurrency"`    // bounded per-asset fan-out, 1 = serial
	WatchInterval duration `toml:"watch_interval"` // delay between runs in watch mode
}

// HTTPConfig holds the shared resilient-transport parameters.
type HTTPConfig struct {
	Timeout     duration `toml:"timeout"`      // per-request timeout
	MaxRetries  int      `toml:"max_retries"`  // transient-status retry budget
	BackoffBase duration `toml:"backoff_base"` // first retry delay, doubles per attempt
}

// PacingConfig holds the per-provider pacing parameters.
type PacingConfig struct {
	Interval duration `toml:"interval"` // minimum delay between calls to one provider
}

// OKXConfig holds the asset-price provider credentials and endpoint.
type OKXConfig struct {
	BaseURL             string `toml:"base_url"`
	ApiKey              string `toml:"api_key"`
	SecretKey           string `toml:"secret_key"`
	Passphrase          string `toml:"passphrase"`
	EncryptedSecretPath string `toml:"encrypted_secret_path"`
	SecretPassword      string `toml:"secret_password"`
}

// SearchConfig holds the news search provider parameters.
type SearchConfig struct {
	BaseURL         string   `toml:"base_url"`
	ApiKey          string   `toml:"api_key"`
	Queries         []string `toml:"queries"`
	ResultsPerQuery int      `toml:"results_per_query"`
	Freshness       string   `toml:"freshness"`
	SnippetMaxLen   int      `toml:"snippet_max_len"`
	MaxItems        int      `toml:"max_items"`
}

// CalendarConfig holds the ordered calendar provider parameters.
type CalendarConfig struct {
	MaxEvents     int                 `toml:"max_events"`
	CoinMarketCal CoinMarketCalConfig `toml:"coinmarketcal"`
	CoinGecko     CoinGeckoConfig     `toml:"coingecko"`
}

// CoinMarketCalConfig holds the primary calendar provider credentials.
type CoinMarketCalConfig struct {
	BaseURL   string `toml:"base_url"`
	Token     string `toml:"token"`
	RangeDays int    `toml:"range_days"`
}

// CoinGeckoConfig holds the fallback calendar provider endpoint.
type CoinGeckoConfig struct {
	BaseURL string `toml:"base_url"`
}

// EquityConfig holds the equity index provider parameters. Indices maps a
// display name to the provider symbol, e.g. "S&P 500" -> "^GSPC".
type EquityConfig struct {
	BaseURL    string            `toml:"base_url"`
	Indices    map[string]string `toml:"indices"`
	MaxRetries int               `toml:"max_retries"`
}

// LLMConfig holds the AI inference provider parameters.
type LLMConfig struct {
	BaseURL string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// RedisConfig holds the optional snapshot-cache connection parameters.
type RedisConfig struct {
	Enabled     bool     `toml:"enabled"`
	Addr        string   `toml:"addr"`
	Password    string   `toml:"password"`
	DB          int      `toml:"db"`
	SnapshotTTL duration `toml:"snapshot_ttl"`
}

// NotifyConfig holds notification channel settings. A channel is active when
// its credentials are non-empty.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// ("30s", "5m") via encoding.TextUnmarshaler.
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so BurntSushi/toml can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Forecast: FcastConfig{
			Pairs:         []string{"SOL-USDT", "BTC-USDT", "ETH-USDT", "PEPE-USDT", "DOGE-USDT"},
			HorizonHours:  8,
			MaxRetries:    3,
			Concurrency:   1,
			WatchInterval: duration{time.Hour},
		},
		HTTP: HTTPConfig{
			Timeout:     duration{60 * time.Second},
			MaxRetries:  3,
			BackoffBase: duration{2 * time.Second},
		},
		Pacing: PacingConfig{
			Interval: duration{3 * time.Second},
		},
		OKX: OKXConfig{
			BaseURL: "https://www.okx.com",
		},
		Search: SearchConfig{
			BaseURL: "https://api.bochaai.com/v1/web-search",
			Queries: []string{
				"BTC ETH SOL price analysis",
				"PEPE DOGE meme coin news",
				"crypto market Fed policy",
				"SOL technical analysis latest upgrade",
				"cryptocurrency regulation news",
			},
			ResultsPerQuery: 5,
			Freshness:       "oneDay",
			SnippetMaxLen:   150,
			MaxItems:        20,
		},
		Calendar: CalendarConfig{
			MaxEvents: 5,
			CoinMarketCal: CoinMarketCalConfig{
				BaseURL:   "https://api.coinmarketcal.com/v1",
				RangeDays: 7,
			},
			CoinGecko: CoinGeckoConfig{
				BaseURL: "https://api.coingecko.com/api/v3",
			},
		},
		Equity: EquityConfig{
			BaseURL: "https://query1.finance.yahoo.com",
			Indices: map[string]string{
				"Dow Jones Industrial Average": "^DJI",
				"Nasdaq Composite":             "^IXIC",
				"S&P 500":                      "^GSPC",
			},
			MaxRetries: 3,
		},
		LLM: LLMConfig{
			BaseURL: "https://api.deepseek.com",
			Model:   "deepseek-chat",
		},
		Redis: RedisConfig{
			Enabled:     false,
			Addr:        "localhost:6379",
			DB:          0,
			SnapshotTTL: duration{10 * time.Minute},
		},
		Notify: NotifyConfig{
			Events: []string{"run_completed", "run_failed"},
		},
		Mode:     "forecast",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"forecast": true,
	"watch":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: forecast, watch)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Forecast
	if len(c.Forecast.Pairs) == 0 {
		errs = append(errs, "forecast: pairs must not be empty")
	}
	if c.Forecast.HorizonHours <= 0 {
		errs = append(errs, fmt.Sprintf("forecast: horizon_hours must be positive, got %d", c.Forecast.HorizonHours))
	}
	if c.Forecast.MaxRetries < 1 {
		errs = append(errs, "forecast: max_retries must be at least 1")
	}
	if c.Forecast.Concurrency < 1 {
		errs = append(errs, "forecast: concurrency must be at least 1")
	}
	if c.Mode == "watch" && c.Forecast.WatchInterval.Duration <= 0 {
		errs = append(errs, "forecast: watch_interval must be positive in watch mode")
	}

	// HTTP
	if c.HTTP.Timeout.Duration <= 0 {
		errs = append(errs, "http: timeout must be positive")
	}
	if c.HTTP.MaxRetries < 0 {
		errs = append(errs, "http: max_retries must not be negative")
	}
	if c.HTTP.BackoffBase.Duration <= 0 {
		errs = append(errs, "http: backoff_base must be positive")
	}

	// Pacing
	if c.Pacing.Interval.Duration < 0 {
		errs = append(errs, "pacing: interval must not be negative")
	}

	// OKX — a secret must come from exactly one source.
	if c.OKX.ApiKey == "" {
		errs = append(errs, "okx: api_key must not be empty")
	}
	if c.OKX.SecretKey == "" && c.OKX.EncryptedSecretPath == "" {
		errs = append(errs, "okx: either secret_key or encrypted_secret_path must be set")
	}
	if c.OKX.EncryptedSecretPath != "" && c.OKX.SecretPassword == "" {
		errs = append(errs, "okx: secret_password is required when encrypted_secret_path is set")
	}
	if c.OKX.Passphrase == "" {
		errs = append(errs, "okx: passphrase must not be empty")
	}

	// Search
	if c.Search.ApiKey == "" {
		errs = append(errs, "search: api_key must not be empty")
	}
	if len(c.Search.Queries) == 0 {
		errs = append(errs, "search: queries must not be empty")
	}
	if c.Search.ResultsPerQuery <= 0 {
		errs = append(errs, "search: results_per_query must be positive")
	}
	if c.Search.MaxItems <= 0 {
		errs = append(errs, "search: max_items must be positive")
	}

	// Calendar
	if c.Calendar.MaxEvents <= 0 {
		errs = append(errs, "calendar: max_events must be positive")
	}

	// Equity
	if len(c.Equity.Indices) == 0 {
		errs = append(errs, "equity: indices must not be empty")
	}
	if c.Equity.MaxRetries < 1 {
		errs = append(errs, "equity: max_retries must be at least 1")
	}

	// LLM
	if c.LLM.ApiKey == "" {
		errs = append(errs, "llm: api_key must not be empty")
	}
	if c.LLM.Model == "" {
		errs = append(errs, "llm: model must not be empty")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.SnapshotTTL.Duration <= 0 {
			errs = append(errs, "redis: snapshot_ttl must be positive when enabled")
		}
	}

	// Notify — Telegram needs both token and chat id.
	tk := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tk != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
