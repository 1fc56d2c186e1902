package price

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinMarketCap_Quote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/cryptocurrency/quotes/latest", r.URL.Path)
		assert.Equal(t, "SOL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "USD", r.URL.Query().Get("convert"))
		assert.Equal(t, "test-key", r.Header.Get("X-CMC_PRO_API_KEY"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": {"error_code": 0, "error_message": null},
			"data": {"SOL": {"symbol": "SOL", "quote": {"USD": {"price": 151.37, "volume_24h": 1}}}}
		}`))
	}))
	defer server.Close()

	cmc := NewCoinMarketCap(server.URL, "test-key", time.Second)
	q, err := cmc.Quote(context.Background(), "sol", "usd")
	require.NoError(t, err)
	assert.Equal(t, Quote{Symbol: "SOL", Currency: "USD", Value: 151.37}, q)
	assert.Equal(t, "coinmarketcap", cmc.Name())
}

func TestCoinMarketCap_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"rate limited", http.StatusTooManyRequests, `{}`, "rate limited"},
		{"unauthorized with message", http.StatusUnauthorized,
			`{"status": {"error_code": 1002, "error_message": "API key missing."}}`, "API key missing."},
		{"server error", http.StatusInternalServerError, `oops`, "http 500"},
		{"malformed json", http.StatusOK, `{not json`, "decode"},
		{"missing symbol", http.StatusOK, `{"data": {}}`, "missing 'SOL'"},
		{"missing fiat", http.StatusOK, `{"data": {"SOL": {"quote": {"EUR": {"price": 1}}}}}`, "missing fiat 'USD'"},
		{"zero price", http.StatusOK, `{"data": {"SOL": {"quote": {"USD": {"price": 0}}}}}`, "non-positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewCoinMarketCap(server.URL, "k", time.Second).Quote(context.Background(), "SOL", "USD")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCoinMarketCap_Defaults(t *testing.T) {
	cmc := NewCoinMarketCap("", "k", 0)
	assert.Equal(t, DefaultCoinMarketCapURL, cmc.baseURL)
	assert.Equal(t, 10*time.Second, cmc.client.Timeout)
}
