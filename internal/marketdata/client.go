package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Alias1177/LevelBot/models"
)

// HTTPStatusError represents an error due to a non-200 HTTP status code
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return "non-200 status code: " + http.StatusText(e.StatusCode)
}

// Client fetches klines and ticker stats from a Binance-compatible REST API,
// with rate limiting and exponential retry. The evaluation core never calls
// it — bars are fetched up front and handed over as plain slices.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewClient creates a new API client with rate limiting
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 5), // 5 requests per second
		logger:  log.With().Str("component", "marketdata").Logger(),
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	endpoint := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var resp *http.Response
	operation := func() error {
		var err error
		resp, err = c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("HTTP request failed: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return &HTTPStatusError{StatusCode: resp.StatusCode}
		}
		return nil
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx)); err != nil {
		return nil, fmt.Errorf("after retries: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

// GetKlines fetches up to limit candles for one symbol and interval, sorted
// oldest first.
func (c *Client) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("interval", interval)
	query.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/api/v3/klines", query)
	if err != nil {
		return nil, err
	}

	// kline rows are heterogeneous arrays: open time, then OHLCV as strings
	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		c.logger.Error().Err(err).Str("symbol", symbol).Msg("Error parsing klines JSON")
		return nil, fmt.Errorf("parsing klines: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty data returned for %s %s", symbol, interval)
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("malformed kline row for %s", symbol)
		}
		var openTime int64
		if err := json.Unmarshal(row[0], &openTime); err != nil {
			return nil, fmt.Errorf("parsing kline open time: %w", err)
		}
		values := make([]float64, 5)
		for i := 1; i <= 5; i++ {
			var s string
			if err := json.Unmarshal(row[i], &s); err != nil {
				return nil, fmt.Errorf("parsing kline field %d: %w", i, err)
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("parsing kline field %d: %w", i, err)
			}
			values[i-1] = v
		}
		candles = append(candles, models.Candle{
			Timestamp: time.UnixMilli(openTime).UTC(),
			Open:      values[0],
			High:      values[1],
			Low:       values[2],
			Close:     values[3],
			Volume:    values[4],
		})
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})

	c.logger.Debug().Str("symbol", symbol).Str("interval", interval).Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}

// TickerStat is one row of the 24h ticker endpoint.
type TickerStat struct {
	Symbol      string `json:"symbol"`
	QuoteVolume string `json:"quoteVolume"`
}

// GetTickerStats fetches 24h stats for all symbols.
func (c *Client) GetTickerStats(ctx context.Context) ([]TickerStat, error) {
	body, err := c.get(ctx, "/api/v3/ticker/24hr", url.Values{})
	if err != nil {
		return nil, err
	}
	var stats []TickerStat
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("parsing ticker stats: %w", err)
	}
	return stats, nil
}
