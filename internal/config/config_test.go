package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validBase fills in the credentials Defaults leaves empty.
func validBase() Config {
	cfg := Defaults()
	cfg.OKX.ApiKey = "k"
	cfg.OKX.SecretKey = "s"
	cfg.OKX.Passphrase = "p"
	cfg.Search.ApiKey = "sk"
	cfg.LLM.ApiKey = "lk"
	return cfg
}

func TestDefaultsValidateWithCredentials(t *testing.T) {
	cfg := validBase()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8, cfg.Forecast.HorizonHours)
	assert.Equal(t, 2*time.Second, cfg.HTTP.BackoffBase.Duration)
	assert.Equal(t, 3*time.Second, cfg.Pacing.Interval.Duration)
	assert.Len(t, cfg.Forecast.Pairs, 5)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := validBase()
	cfg.Mode = "replay"
	cfg.Forecast.Pairs = nil
	cfg.Forecast.HorizonHours = 0

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown mode "replay"`)
	assert.Contains(t, err.Error(), "pairs must not be empty")
	assert.Contains(t, err.Error(), "horizon_hours must be positive")
}

func TestValidateSecretSourceRules(t *testing.T) {
	cfg := validBase()
	cfg.OKX.SecretKey = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "either secret_key or encrypted_secret_path")

	cfg.OKX.EncryptedSecretPath = "/etc/sift/okx.enc"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret_password is required")

	cfg.OKX.SecretPassword = "pw"
	assert.NoError(t, cfg.Validate())
}

func TestValidateTelegramPairing(t *testing.T) {
	cfg := validBase()
	cfg.Notify.TelegramToken = "tok"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be set together")

	cfg.Notify.TelegramChatID = "123"
	assert.NoError(t, cfg.Validate())
}

func TestValidateWatchModeNeedsInterval(t *testing.T) {
	cfg := validBase()
	cfg.Mode = "watch"
	cfg.Forecast.WatchInterval = duration{}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch_interval must be positive")
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
mode = "watch"

[forecast]
pairs = ["BTC-USDT"]
horizon_hours = 4
watch_interval = "30m"

[http]
timeout = "15s"

[okx]
api_key = "file-key"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "watch", cfg.Mode)
	assert.Equal(t, []string{"BTC-USDT"}, cfg.Forecast.Pairs)
	assert.Equal(t, 4, cfg.Forecast.HorizonHours)
	assert.Equal(t, 30*time.Minute, cfg.Forecast.WatchInterval.Duration)
	assert.Equal(t, 15*time.Second, cfg.HTTP.Timeout.Duration)
	assert.Equal(t, "file-key", cfg.OKX.ApiKey)
	// Untouched sections keep their defaults.
	assert.Equal(t, "https://www.okx.com", cfg.OKX.BaseURL)
	assert.Equal(t, 3, cfg.Forecast.MaxRetries)
}

func TestLoadEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[okx]
api_key = "file-key"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("SIFT_OKX_API_KEY", "env-key")
	t.Setenv("SIFT_FORECAST_PAIRS", "ETH-USDT, DOGE-USDT")
	t.Setenv("SIFT_HTTP_TIMEOUT", "45s")
	t.Setenv("SIFT_REDIS_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.OKX.ApiKey)
	assert.Equal(t, []string{"ETH-USDT", "DOGE-USDT"}, cfg.Forecast.Pairs)
	assert.Equal(t, 45*time.Second, cfg.HTTP.Timeout.Duration)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestRedactedConfigMasksSecrets(t *testing.T) {
	cfg := validBase()
	cfg.OKX.SecretKey = "super-secret"
	cfg.LLM.ApiKey = "llm-secret"
	cfg.Notify.TelegramToken = "tg-secret"
	cfg.Notify.TelegramChatID = "42"

	red := RedactedConfig(&cfg)

	assert.Equal(t, "***", red.OKX.SecretKey)
	assert.Equal(t, "***", red.LLM.ApiKey)
	assert.Equal(t, "***", red.Notify.TelegramToken)
	// Non-secret fields pass through untouched.
	assert.Equal(t, cfg.OKX.BaseURL, red.OKX.BaseURL)
	assert.Equal(t, "42", red.Notify.TelegramChatID)
}
