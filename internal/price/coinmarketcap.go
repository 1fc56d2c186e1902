package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CoinMarketCap docs: https://coinmarketcap.com/api/documentation/v1/
// Auth header: "X-CMC_PRO_API_KEY: <KEY>"
// Endpoint used: /v1/cryptocurrency/quotes/latest?symbol=<symbol>&convert=<fiat>

const DefaultCoinMarketCapURL = "https://pro-api.coinmarketcap.com"

type CoinMarketCap struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type cmcStatus struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type cmcResp struct {
	Status cmcStatus `json:"status"`
	Data   map[string]struct {
		Quote map[string]struct {
			Price float64 `json:"price"`
		} `json:"quote"`
	} `json:"data"`
}

func NewCoinMarketCap(baseURL, apiKey string, timeout time.Duration) *CoinMarketCap {
	if baseURL == "" {
		baseURL = DefaultCoinMarketCapURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &CoinMarketCap{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		client: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
	}
}

func (c *CoinMarketCap) Name() string { return "coinmarketcap" }

func (c *CoinMarketCap) Quote(ctx context.Context, symbol, convert string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	convert = strings.ToUpper(strings.TrimSpace(convert))
	if symbol == "" {
		symbol = "SOL"
	}
	if convert == "" {
		convert = "USD"
	}
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("convert", convert)

	u := fmt.Sprintf("%s/v1/cryptocurrency/quotes/latest?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Quote{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Quote{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Quote{}, fmt.Errorf("coinmarketcap: read body: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return Quote{}, fmt.Errorf("coinmarketcap: rate limited (%d)", resp.StatusCode)
	}
	if resp.StatusCode/100 != 2 {
		var data cmcResp
		if json.Unmarshal(body, &data) == nil && data.Status.ErrorMessage != "" {
			return Quote{}, fmt.Errorf("coinmarketcap: http %d: %s", resp.StatusCode, data.Status.ErrorMessage)
		}
		return Quote{}, fmt.Errorf("coinmarketcap: http %d", resp.StatusCode)
	}

	var data cmcResp
	if err := json.Unmarshal(body, &data); err != nil {
		return Quote{}, fmt.Errorf("coinmarketcap: decode: %w", err)
	}
	entry, ok := data.Data[symbol]
	if !ok {
		return Quote{}, fmt.Errorf("coinmarketcap: missing '%s' key", symbol)
	}
	quote, ok := entry.Quote[convert]
	if !ok {
		return Quote{}, fmt.Errorf("coinmarketcap: missing fiat '%s'", convert)
	}
	if quote.Price <= 0 {
		return Quote{}, fmt.Errorf("coinmarketcap: non-positive price %v", quote.Price)
	}
	return Quote{Symbol: symbol, Currency: convert, Value: quote.Price}, nil
}
