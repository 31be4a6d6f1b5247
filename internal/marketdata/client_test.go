package marketdata

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestClient creates a test server and a Client configured to use it.
func setupTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)

	c := &Client{
		client:  resty.New().SetBaseURL(server.URL),
		logger:  zap.NewNop(),
		limiter: rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
	}

	return c, server
}

func TestGetQuote(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		now := time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC)
		mockResponse := fmt.Sprintf(`{"chart":{"result":[{
			"meta":{"symbol":"AAPL","regularMarketPrice":201.45,"regularMarketTime":%d}
		}],"error":null}}`, now.Unix())

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
			assert.Equal(t, "1d", r.URL.Query().Get("range"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(mockResponse))
		})

		c, server := setupTestClient(handler)
		defer server.Close()

		quote, err := c.GetQuote("AAPL")
		require.NoError(t, err)
		assert.Equal(t, "AAPL", quote.Ticker)
		assert.InDelta(t, 201.45, quote.Price, 1e-9)
		assert.Equal(t, now, quote.Time)
	})

	t.Run("ProviderError", func(t *testing.T) {
		mockResponse := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(mockResponse))
		})

		c, server := setupTestClient(handler)
		defer server.Close()

		_, err := c.GetQuote("NOPE")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "delisted")
	})

	t.Run("RetriesOnServerError", func(t *testing.T) {
		var calls atomic.Int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"AAPL","regularMarketPrice":200,"regularMarketTime":1748894400}}],"error":null}}`))
		})

		c, server := setupTestClient(handler)
		defer server.Close()

		quote, err := c.GetQuote("AAPL")
		require.NoError(t, err)
		assert.InDelta(t, 200, quote.Price, 1e-9)
		assert.Equal(t, int32(2), calls.Load())
	})
}

func TestGetDailyHistory(t *testing.T) {
	day1 := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	day3 := day1.AddDate(0, 0, 2)

	// Middle day has a null close (holiday) and must be dropped.
	mockResponse := fmt.Sprintf(`{"chart":{"result":[{
		"meta":{"symbol":"AAPL"},
		"timestamp":[%d,%d,%d],
		"indicators":{"quote":[{"close":[200.5,null,202.25]}]}
	}],"error":null}}`, day1.Unix(), day2.Unix(), day3.Unix())

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		assert.NotEmpty(t, r.URL.Query().Get("period2"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(mockResponse))
	})

	c, server := setupTestClient(handler)
	defer server.Close()

	bars, err := c.GetDailyHistory("AAPL", day1.AddDate(0, 0, -1), day3)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.InDelta(t, 200.5, bars[0].Close, 1e-9)
	assert.InDelta(t, 202.25, bars[1].Close, 1e-9)
	assert.Equal(t, day1.Truncate(24*time.Hour), bars[0].Date)
	assert.Equal(t, day3.Truncate(24*time.Hour), bars[1].Date)
}
