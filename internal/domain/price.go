package domain

// PriceSnapshot is a fiat quote for the native token at a point in time.
// Corresponds to price_snapshots table in ClickHouse.
type PriceSnapshot struct {
	Symbol      string  // quoted asset, e.g. SOL
	Currency    string  // fiat currency, e.g. USD
	PriceUSD    float64 // price of one token in Currency
	FetchedAtMs int64   // Unix timestamp in milliseconds
	Source      string  // quote source name
}
