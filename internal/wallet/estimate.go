package wallet

import "github.com/shopspring/decimal"

const (
	// RentPerAccountSOL is the rent-exempt deposit of one 165-byte token account.
	RentPerAccountSOL = 0.00203928

	// PlatformFee is the share kept by the claiming platform.
	PlatformFee = 0.25
)

// Estimate is the reclaimable amount for a number of empty accounts.
// Values are unrounded; use the display helpers for presentation.
type Estimate struct {
	EmptyAccounts int
	GrossSOL      float64
	NetSOL        float64
	PriceUSD      float64
	NetUSD        float64
}

// EstimateReclaim computes the fee-adjusted SOL and fiat value of closing n empty accounts.
// A zero price yields a zero fiat value.
func EstimateReclaim(n int, priceUSD float64) Estimate {
	if n < 0 {
		n = 0
	}
	gross := float64(n) * RentPerAccountSOL
	net := gross * (1 - PlatformFee)
	return Estimate{
		EmptyAccounts: n,
		GrossSOL:      gross,
		NetSOL:        net,
		PriceUSD:      priceUSD,
		NetUSD:        net * priceUSD,
	}
}

// SOLDisplay returns the net SOL amount rounded to 5 decimals.
func (e Estimate) SOLDisplay() string {
	return decimal.NewFromFloat(e.NetSOL).StringFixed(5)
}

// USDDisplay returns the fiat amount rounded to 2 decimals.
func (e Estimate) USDDisplay() string {
	return decimal.NewFromFloat(e.NetUSD).StringFixed(2)
}
