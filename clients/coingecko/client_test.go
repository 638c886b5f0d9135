package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		expected string
	}{
		{name: "sub-cent uses six decimals", price: "0.00012345", expected: "$0.000123"},
		{name: "sub-cent strips trailing zeros", price: "0.0001", expected: "$0.0001"},
		{name: "sub-dollar uses four decimals", price: "0.4271", expected: "$0.4271"},
		{name: "sub-dollar strips trailing zeros", price: "0.5", expected: "$0.5"},
		{name: "dollar range uses two decimals", price: "3.5", expected: "$3.50"},
		{name: "thousands are grouped", price: "67312.129", expected: "$67,312.13"},
		{name: "millions are grouped", price: "1234567.8", expected: "$1,234,567.80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := decimal.NewFromString(tt.price)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, FormatUSD(price))
		})
	}
}

func TestGetPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		assert.Equal(t, "true", r.URL.Query().Get("include_24hr_change"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":67312.13,"usd_24h_change":-2.417}}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, "")
	price, err := client.GetPrice(context.Background(), "bitcoin")
	require.NoError(t, err)
	require.True(t, price.IsPresent())
	assert.Equal(t, "bitcoin: $67,312.13 (-2.42%)", price.MustGet())
}

func TestGetPriceUnknownCoin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, "")
	price, err := client.GetPrice(context.Background(), "no-such-coin")
	require.NoError(t, err)
	assert.True(t, price.IsAbsent())
}

func TestSearchCoin(t *testing.T) {
	t.Run("known alias skips the API", func(t *testing.T) {
		client := NewCoinGeckoClient("http://localhost:1", "")
		id, err := client.SearchCoin(context.Background(), "AIPG")
		require.NoError(t, err)
		assert.Equal(t, "ai-power-grid", id.MustGet())
	})

	t.Run("falls back to search endpoint", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search", r.URL.Path)
			assert.Equal(t, "dogecoin", r.URL.Query().Get("query"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"coins":[{"id":"dogecoin","name":"Dogecoin","symbol":"doge"}]}`))
		}))
		defer server.Close()

		client := NewCoinGeckoClient(server.URL, "")
		id, err := client.SearchCoin(context.Background(), "Dogecoin")
		require.NoError(t, err)
		assert.Equal(t, "dogecoin", id.MustGet())
	})

	t.Run("no match returns none", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"coins":[]}`))
		}))
		defer server.Close()

		client := NewCoinGeckoClient(server.URL, "")
		id, err := client.SearchCoin(context.Background(), "zzzz")
		require.NoError(t, err)
		assert.True(t, id.IsAbsent())
	})
}
