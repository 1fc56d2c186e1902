package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateReclaim(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		price    float64
		wantNet  float64
		wantUSD  float64
		solShown string
		usdShown string
	}{
		{"three accounts at 150", 3, 150, 0.00458838, 0.688257, "0.00459", "0.69"},
		{"one account", 1, 100, 0.00152946, 0.152946, "0.00153", "0.15"},
		{"zero price", 5, 0, 0.0076473, 0, "0.00765", "0.00"},
		{"no accounts", 0, 150, 0, 0, "0.00000", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := EstimateReclaim(tt.n, tt.price)
			assert.InDelta(t, tt.wantNet, e.NetSOL, 1e-12)
			assert.InDelta(t, tt.wantUSD, e.NetUSD, 1e-9)
			assert.Equal(t, tt.solShown, e.SOLDisplay())
			assert.Equal(t, tt.usdShown, e.USDDisplay())
		})
	}
}

func TestEstimateReclaim_NetIsGrossLessFee(t *testing.T) {
	for n := 1; n <= 50; n++ {
		e := EstimateReclaim(n, 1)
		assert.InDelta(t, float64(n)*RentPerAccountSOL, e.GrossSOL, 1e-12)
		assert.InDelta(t, e.GrossSOL*(1-PlatformFee), e.NetSOL, 1e-12)
		assert.InDelta(t, e.NetSOL, e.NetUSD, 1e-12)
	}
}

func TestEstimateReclaim_NegativeCount(t *testing.T) {
	e := EstimateReclaim(-2, 150)
	assert.Equal(t, 0, e.EmptyAccounts)
	assert.Zero(t, e.NetSOL)
}
