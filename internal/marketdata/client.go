// Package marketdata fetches quotes and daily price history from a
// Yahoo-style chart API. All requests go through a shared rate limiter and a
// retry loop; the provider enforces per-IP limits aggressively.
package marketdata

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"research-tracker-go/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Quote is the latest known price for a ticker.
type Quote struct {
	Ticker string
	Price  float64
	Time   time.Time
}

// Bar is one daily close.
type Bar struct {
	Date  time.Time
	Close float64
}

// QuoteClient defines the interface for the market data provider.
type QuoteClient interface {
	GetQuote(ticker string) (*Quote, error)
	GetDailyHistory(ticker string, start, end time.Time) ([]Bar, error)
}

// Client is a REST client for the chart API.
// It implements the QuoteClient interface.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure Client implements the interface
var _ QuoteClient = (*Client)(nil)

// NewClient creates a new market data client.
func NewClient(cfg *config.MarketData, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("User-Agent", "research-tracker/1.0")

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// chartResponse mirrors the provider's chart payload. Close values are
// pointers because the provider reports holidays and halts as nulls.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && resp.StatusCode() != 0 {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 {
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		// Exponential backoff: 1s, 2s, 4s, unless the provider said otherwise.
		if retryAfter == 0 {
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

// GetQuote fetches the latest price for a ticker.
func (c *Client) GetQuote(ticker string) (*Quote, error) {
	var chart chartResponse

	req := c.client.R().
		SetResult(&chart).
		SetQueryParams(map[string]string{
			"range":    "1d",
			"interval": "1d",
		})
	ctx := context.Background()

	_, err := c.doRequest(ctx, "GET", "/v8/finance/chart/"+ticker, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", ticker, err)
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("provider error for %s: %s", ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("no quote data for %s", ticker)
	}

	meta := chart.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("no usable price for %s", ticker)
	}

	return &Quote{
		Ticker: ticker,
		Price:  meta.RegularMarketPrice,
		Time:   time.Unix(meta.RegularMarketTime, 0).UTC(),
	}, nil
}

// GetDailyHistory fetches daily closes for a ticker between start and end
// (inclusive). Days without a close (holidays, halts) are omitted.
func (c *Client) GetDailyHistory(ticker string, start, end time.Time) ([]Bar, error) {
	var chart chartResponse

	req := c.client.R().
		SetResult(&chart).
		SetQueryParams(map[string]string{
			"period1":  strconv.FormatInt(start.Unix(), 10),
			"period2":  strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10), // provider end is exclusive
			"interval": "1d",
		})
	ctx := context.Background()

	_, err := c.doRequest(ctx, "GET", "/v8/finance/chart/"+ticker, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get history for %s: %w", ticker, err)
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("provider error for %s: %s", ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	closes := result.Indicators.Quote[0].Close

	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue
		}
		day := time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)
		bars = append(bars, Bar{Date: day, Close: *closes[i]})
	}

	return bars, nil
}
