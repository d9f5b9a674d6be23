package domain

// EquityQuote is one equity index reading used as macro context.
type EquityQuote struct {
	Price         float64 // last regular-market price
	ChangePercent float64 // change vs previous close, rounded to 2 decimals
}

// MarketSnapshot is the read-only market context assembled once per run and
// shared by every per-asset forecast. It is never mutated after construction.
type MarketSnapshot struct {
	NewsDigest     string                 // joined news lines, or the no-news sentinel
	EquityIndices  map[string]EquityQuote // index display name -> quote
	CalendarDigest string                 // joined calendar lines, or the no-events sentinel
}

// AssetPrice is the last traded price for one tracked trading pair.
type AssetPrice struct {
	PairID    string  // instrument id, e.g. "BTC-USDT"
	LastPrice float64 // last traded price in quote currency, >= 0
}

// CalendarEvent is one upcoming calendar entry from whichever provider won
// the fallback order this run.
type CalendarEvent struct {
	Title string
	Date  string
	Coins []string // affected coins; empty when the provider has no coin tags
}

// String renders the event in the digest form "date title (coins)".
func (e CalendarEvent) String() string {
	if len(e.Coins) == 0 {
		return e.Date + " " + e.Title
	}
	out := e.Date + " " + e.Title + " ("
	for i, c := range e.Coins {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out + ")"
}
