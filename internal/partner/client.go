// Package partner reads referral statistics from the claiming platform.
package partner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rent-reclaim-bot/internal/observability"
)

var (
	// ErrNoReferralCode is returned when the referral link has no ref parameter.
	ErrNoReferralCode = errors.New("could not extract referral code")

	// ErrReferralNotFound is returned when the platform does not know the referral code.
	ErrReferralNotFound = errors.New("referral code not found")
)

// StatsPath is appended to the referral link's origin when no stats URL is configured.
const StatsPath = "/api/partner-stats"

// Stats is the partner dashboard returned by the platform.
type Stats struct {
	UserCount        int     `json:"userCount"`
	TransactionCount int     `json:"transactionCount"`
	TotalEarningsSOL float64 `json:"totalEarningsSOL"`
}

// ReferralCode extracts the ref query parameter from a referral link.
func ReferralCode(referralURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(referralURL))
	if err != nil {
		return "", ErrNoReferralCode
	}
	code := strings.TrimSpace(u.Query().Get("ref"))
	if code == "" {
		return "", ErrNoReferralCode
	}
	return code, nil
}

// DefaultStatsURL derives the stats endpoint from the referral link's scheme and host.
func DefaultStatsURL(referralURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(referralURL))
	if err != nil {
		return "", fmt.Errorf("parse referral link: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("referral link %q has no host", referralURL)
	}
	return u.Scheme + "://" + u.Host + StatsPath, nil
}

// Client calls the partner stats endpoint.
type Client struct {
	statsURL string
	client   *http.Client
}

// NewClient creates a client for statsURL.
func NewClient(statsURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		statsURL: statsURL,
		client:   &http.Client{Timeout: timeout},
	}
}

// Stats fetches the dashboard for code.
func (c *Client) Stats(ctx context.Context, code string) (*Stats, error) {
	u, err := url.Parse(c.statsURL)
	if err != nil {
		return nil, fmt.Errorf("parse stats url: %w", err)
	}
	q := u.Query()
	q.Set("ref", code)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		observability.RecordPartnerStats("error")
		return nil, fmt.Errorf("partner stats request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		observability.RecordPartnerStats("not_found")
		return nil, ErrReferralNotFound
	case resp.StatusCode/100 != 2:
		observability.RecordPartnerStats("error")
		return nil, fmt.Errorf("partner stats: http %d", resp.StatusCode)
	}

	var stats Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		observability.RecordPartnerStats("error")
		return nil, fmt.Errorf("decode partner stats: %w", err)
	}

	observability.RecordPartnerStats("ok")
	return &stats, nil
}
