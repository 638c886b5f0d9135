package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// KnownCoins maps common ticker aliases to CoinGecko coin IDs so the
// frequent ones resolve without a search round-trip.
var KnownCoins = map[string]string{
	"btc":           "bitcoin",
	"bitcoin":       "bitcoin",
	"eth":           "ethereum",
	"ethereum":      "ethereum",
	"aipg":          "ai-power-grid",
	"ai power grid": "ai-power-grid",
}

// CoinGeckoClient fetches spot prices and coin lookups from the public
// CoinGecko API.
type CoinGeckoClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type simplePriceEntry struct {
	USD       decimal.Decimal `json:"usd"`
	USDChange float64         `json:"usd_24h_change"`
}

type searchResponse struct {
	Coins []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"coins"`
}

// NewCoinGeckoClient creates a client for the CoinGecko REST API. The
// API key is optional; the public tier works without one at lower rate
// limits.
func NewCoinGeckoClient(baseURL, apiKey string) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}
	return &CoinGeckoClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

func (c *CoinGeckoClient) newRequest(ctx context.Context, endpoint string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}
	return req, nil
}

// GetPrice returns a formatted USD price line for the given coin ID, or
// None when CoinGecko does not know the coin.
func (c *CoinGeckoClient) GetPrice(ctx context.Context, coinID string) (mo.Option[string], error) {
	log.Printf("📋 Starting price lookup for coin: %s", coinID)

	if coinID == "" {
		return mo.None[string](), fmt.Errorf("coin ID cannot be empty")
	}

	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_24hr_change=true",
		c.baseURL, url.QueryEscape(coinID))
	req, err := c.newRequest(ctx, endpoint)
	if err != nil {
		return mo.None[string](), fmt.Errorf("failed to create price request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mo.None[string](), fmt.Errorf("failed to fetch price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mo.None[string](), fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var parsed map[string]simplePriceEntry
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return mo.None[string](), fmt.Errorf("failed to decode price response: %w", err)
	}

	entry, ok := parsed[coinID]
	if !ok {
		log.Printf("📋 Completed successfully - no price data for coin: %s", coinID)
		return mo.None[string](), nil
	}

	line := fmt.Sprintf("%s: %s", coinID, FormatUSD(entry.USD))
	if entry.USDChange != 0 {
		line += fmt.Sprintf(" (%+.2f%%)", entry.USDChange)
	}
	log.Printf("📋 Completed successfully - fetched price for coin: %s", coinID)
	return mo.Some(line), nil
}

// SearchCoin resolves a free-text query to a CoinGecko coin ID. Known
// aliases short-circuit without hitting the API.
func (c *CoinGeckoClient) SearchCoin(ctx context.Context, query string) (mo.Option[string], error) {
	log.Printf("📋 Starting coin search for query: %s", query)

	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return mo.None[string](), fmt.Errorf("query cannot be empty")
	}
	if id, ok := KnownCoins[normalized]; ok {
		return mo.Some(id), nil
	}

	endpoint := fmt.Sprintf("%s/search?query=%s", c.baseURL, url.QueryEscape(normalized))
	req, err := c.newRequest(ctx, endpoint)
	if err != nil {
		return mo.None[string](), fmt.Errorf("failed to create search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mo.None[string](), fmt.Errorf("failed to search coins: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mo.None[string](), fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return mo.None[string](), fmt.Errorf("failed to decode search response: %w", err)
	}

	if len(parsed.Coins) == 0 {
		log.Printf("📋 Completed successfully - no coins matched query: %s", query)
		return mo.None[string](), nil
	}

	log.Printf("📋 Completed successfully - resolved query %s to coin: %s", query, parsed.Coins[0].ID)
	return mo.Some(parsed.Coins[0].ID), nil
}

// FormatUSD renders a USD price with precision scaled to its magnitude:
// sub-cent prices keep up to six decimals, sub-dollar prices up to four,
// and larger prices get two decimals with thousands separators. Trailing
// zeros are stripped on the small tiers.
func FormatUSD(price decimal.Decimal) string {
	switch {
	case price.LessThan(decimal.NewFromFloat(0.01)):
		return "$" + stripTrailingZeros(price.StringFixed(6))
	case price.LessThan(decimal.NewFromInt(1)):
		return "$" + stripTrailingZeros(price.StringFixed(4))
	default:
		return "$" + groupThousands(price.StringFixed(2))
	}
}

func stripTrailingZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func groupThousands(s string) string {
	intPart, fracPart, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	out := b.String()
	if neg {
		out = "-" + out
	}
	if fracPart != "" {
		out += "." + fracPart
	}
	return out
}
