package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKlinesParsesAndSorts(t *testing.T) {
	// rows intentionally out of order: the client must sort oldest first
	payload := `[
		[1700003600000, "101.0", "103.0", "100.0", "102.0", "55.5", 0, "0", 0, "0", "0", "0"],
		[1700000000000, "100.0", "102.0", "99.0", "101.0", "42.0", 0, "0", 0, "0", "0", "0"]
	]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "15m", r.URL.Query().Get("interval"))
		w.Write([]byte(payload))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	candles, err := client.GetKlines(context.Background(), "BTCUSDT", "15m", 2)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	assert.True(t, candles[0].Timestamp.Before(candles[1].Timestamp))
	assert.Equal(t, 100.0, candles[0].Open)
	assert.Equal(t, 102.0, candles[0].High)
	assert.Equal(t, 99.0, candles[0].Low)
	assert.Equal(t, 101.0, candles[0].Close)
	assert.Equal(t, 42.0, candles[0].Volume)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), candles[0].Timestamp)
}

func TestGetKlinesEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.GetKlines(context.Background(), "BTCUSDT", "15m", 100)
	require.Error(t, err)
}

func TestGetRetriesAfterServerError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[[1700000000000, "100.0", "102.0", "99.0", "101.0", "42.0"]]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	candles, err := client.GetKlines(context.Background(), "BTCUSDT", "15m", 1)
	require.NoError(t, err)
	assert.Len(t, candles, 1)
	assert.GreaterOrEqual(t, calls, 2)
}

func TestGetTickerStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
		w.Write([]byte(`[
			{"symbol": "BTCUSDT", "quoteVolume": "1000000.5"},
			{"symbol": "ETHBTC", "quoteVolume": "300.0"}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	stats, err := client.GetTickerStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "BTCUSDT", stats[0].Symbol)
	assert.Equal(t, "1000000.5", stats[0].QuoteVolume)
}
