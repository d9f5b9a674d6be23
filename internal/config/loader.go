package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SIFT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SIFT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Forecast ──
	setStringSlice(&cfg.Forecast.Pairs, "SIFT_FORECAST_PAIRS")
	setInt(&cfg.Forecast.HorizonHours, "SIFT_FORECAST_HORIZON_HOURS")
	setInt(&cfg.Forecast.MaxRetries, "SIFT_FORECAST_MAX_RETRIES")
	setInt(&cfg.Forecast.Concurrency, "SIFT_FORECAST_CONCURRENCY")
	setDuration(&cfg.Forecast.WatchInterval, "SIFT_FORECAST_WATCH_INTERVAL")

	// ── HTTP ──
	setDuration(&cfg.HTTP.Timeout, "SIFT_HTTP_TIMEOUT")
	setInt(&cfg.HTTP.MaxRetries, "SIFT_HTTP_MAX_RETRIES")
	setDuration(&cfg.HTTP.BackoffBase, "SIFT_HTTP_BACKOFF_BASE")

	// ── Pacing ──
	setDuration(&cfg.Pacing.Interval, "SIFT_PACING_INTERVAL")

	// ── OKX ──
	setStr(&cfg.OKX.BaseURL, "SIFT_OKX_BASE_URL")
	setStr(&cfg.OKX.ApiKey, "SIFT_OKX_API_KEY")
	setStr(&cfg.OKX.SecretKey, "SIFT_OKX_SECRET_KEY")
	setStr(&cfg.OKX.Passphrase, "SIFT_OKX_PASSPHRASE")
	setStr(&cfg.OKX.EncryptedSecretPath, "SIFT_OKX_ENCRYPTED_SECRET_PATH")
	setStr(&cfg.OKX.SecretPassword, "SIFT_OKX_SECRET_PASSWORD")

	// ── Search ──
	setStr(&cfg.Search.BaseURL, "SIFT_SEARCH_BASE_URL")
	setStr(&cfg.Search.ApiKey, "SIFT_SEARCH_API_KEY")
	setStringSlice(&cfg.Search.Queries, "SIFT_SEARCH_QUERIES")
	setInt(&cfg.Search.ResultsPerQuery, "SIFT_SEARCH_RESULTS_PER_QUERY")
	setStr(&cfg.Search.Freshness, "SIFT_SEARCH_FRESHNESS")
	setInt(&cfg.Search.SnippetMaxLen, "SIFT_SEARCH_SNIPPET_MAX_LEN")
	setInt(&cfg.Search.MaxItems, "SIFT_SEARCH_MAX_ITEMS")

	// ── Calendar ──
	setInt(&cfg.Calendar.MaxEvents, "SIFT_CALENDAR_MAX_EVENTS")
	setStr(&cfg.Calendar.CoinMarketCal.BaseURL, "SIFT_CALENDAR_COINMARKETCAL_BASE_URL")
	setStr(&cfg.Calendar.CoinMarketCal.Token, "SIFT_CALENDAR_COINMARKETCAL_TOKEN")
	setInt(&cfg.Calendar.CoinMarketCal.RangeDays, "SIFT_CALENDAR_COINMARKETCAL_RANGE_DAYS")
	setStr(&cfg.Calendar.CoinGecko.BaseURL, "SIFT_CALENDAR_COINGECKO_BASE_URL")

	// ── Equity ──
	setStr(&cfg.Equity.BaseURL, "SIFT_EQUITY_BASE_URL")
	setInt(&cfg.Equity.MaxRetries, "SIFT_EQUITY_MAX_RETRIES")

	// ── LLM ──
	setStr(&cfg.LLM.BaseURL, "SIFT_LLM_BASE_URL")
	setStr(&cfg.LLM.ApiKey, "SIFT_LLM_API_KEY")
	setStr(&cfg.LLM.Model, "SIFT_LLM_MODEL")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "SIFT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "SIFT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SIFT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SIFT_REDIS_DB")
	setDuration(&cfg.Redis.SnapshotTTL, "SIFT_REDIS_SNAPSHOT_TTL")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SIFT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SIFT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SIFT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "SIFT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "SIFT_MODE")
	setStr(&cfg.LogLevel, "SIFT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
