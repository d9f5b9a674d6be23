package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	if out.OKX.ApiKey != "" {
		out.OKX.ApiKey = "***"
	}
	if out.OKX.SecretKey != "" {
		out.OKX.SecretKey = "***"
	}
	if out.OKX.Passphrase != "" {
		out.OKX.Passphrase = "***"
	}
	if out.OKX.SecretPassword != "" {
		out.OKX.SecretPassword = "***"
	}
	if out.Search.ApiKey != "" {
		out.Search.ApiKey = "***"
	}
	if out.Calendar.CoinMarketCal.Token != "" {
		out.Calendar.CoinMarketCal.Token = "***"
	}
	if out.LLM.ApiKey != "" {
		out.LLM.ApiKey = "***"
	}
	if out.Redis.Password != "" {
		out.Redis.Password = "***"
	}
	if out.Notify.TelegramToken != "" {
		out.Notify.TelegramToken = "***"
	}
	if out.Notify.DiscordWebhookURL != "" {
		out.Notify.DiscordWebhookURL = "***"
	}

	return out
}
