package okx

// tickerResponse is the provider envelope for /api/v5/market/ticker.
type tickerResponse struct {
	Code string       `json:"code"`
	Msg  string       `json:"msg"`
	Data []tickerData `json:"data"`
}

// tickerData is one instrument reading. Prices arrive as decimal strings.
type tickerData struct {
	InstID string `json:"instId"`
	Last   string `json:"last"`
	AskPx  string `json:"askPx"`
	BidPx  string `json:"bidPx"`
	Ts     string `json:"ts"`
}
