// Package price provides the SOL/USD quote source and the time-bounded cache in front of it.
package price

import "context"

// Quote is one price observation from a quote source.
type Quote struct {
	Symbol   string  // e.g. SOL
	Currency string  // e.g. USD
	Value    float64 // price of 1 Symbol in Currency
}

// QuoteSource fetches the latest price of symbol in convert.
type QuoteSource interface {
	Quote(ctx context.Context, symbol, convert string) (Quote, error)
	Name() string
}
