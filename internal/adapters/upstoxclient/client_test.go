package upstoxclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperTrader/internal/domain"
	"paperTrader/internal/ports"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

var ist = time.FixedZone("IST", 5*3600+30*60)

func writeToken(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "access_token.txt")
	require.NoError(t, os.WriteFile(path, []byte("test-token\n"), 0600))
	return path
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		BaseURL:         server.URL,
		AccessTokenFile: writeToken(t),
		Timeout:         2 * time.Second,
		IntervalMinutes: 5,
		Logger:          nopLogger{},
	})
	require.NoError(t, err)
	return client
}

func candleRow(ts time.Time, open, high, low, closePrice, volume float64) string {
	return fmt.Sprintf(`["%s", %g, %g, %g, %g, %g, 0]`,
		ts.Format(time.RFC3339), open, high, low, closePrice, volume)
}

// sessionRows builds count five-minute candles starting at open, newest
// first, the order the API serves them in.
func sessionRows(open time.Time, count int, price float64) []string {
	rows := make([]string, count)
	for i := 0; i < count; i++ {
		ts := open.Add(time.Duration(count-1-i) * 5 * time.Minute)
		rows[i] = candleRow(ts, price, price+1, price-1, price, 1000)
	}
	return rows
}

func candlePayload(rows []string) string {
	return fmt.Sprintf(`{"status":"success","data":{"candles":[%s]}}`, strings.Join(rows, ","))
}

// candlesJSON mirrors the v2 intraday payload: rows newest first.
const candlesJSON = `{
	"status": "success",
	"data": {
		"candles": [
			["2026-08-28T10:10:00+05:30", 101.0, 102.0, 100.5, 101.5, 1200.0, 0],
			["2026-08-28T10:05:00+05:30", 100.5, 101.5, 100.0, 101.0, 1100.0, 0],
			["2026-08-28T10:00:00+05:30", 100.0, 101.0, 99.5, 100.5, 1000.0, 0]
		]
	}
}`

func TestNew_MissingTokenFile(t *testing.T) {
	_, err := New(Config{
		BaseURL:         "http://localhost",
		AccessTokenFile: filepath.Join(t.TempDir(), "nope.txt"),
		IntervalMinutes: 5,
		Logger:          nopLogger{},
	})

	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

func TestGetLatestBars_OrderedOldestFirst(t *testing.T) {
	var gotPath, gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, candlesJSON)
	}))

	bars, err := client.GetLatestBars(context.Background(), "TRENT", 3)

	require.NoError(t, err)
	assert.Equal(t, "/historical-candle/intraday/NSE_EQ:TRENT/5minute", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)

	require.Len(t, bars, 3)
	assert.True(t, bars[0].Timestamp.Before(bars[1].Timestamp))
	assert.True(t, bars[1].Timestamp.Before(bars[2].Timestamp))
	assert.Equal(t, "TRENT", bars[0].Symbol)
	assert.InDelta(t, 100.5, bars[0].Close, 1e-9)
	assert.InDelta(t, 101.5, bars[2].Close, 1e-9)
}

func TestGetLatestBars_TruncatesToN(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, candlesJSON)
	}))

	bars, err := client.GetLatestBars(context.Background(), "TRENT", 2)

	require.NoError(t, err)
	require.Len(t, bars, 2)
	// The newest bars survive truncation.
	assert.InDelta(t, 101.0, bars[0].Close, 1e-9)
	assert.InDelta(t, 101.5, bars[1].Close, 1e-9)
}

func TestGetLatestBars_TopsUpFromRangedHistory(t *testing.T) {
	// One NSE session holds 75 five-minute bars, so a 200-bar request must
	// reach past the intraday endpoint into the date-ranged history.
	today := time.Date(2026, 8, 28, 9, 15, 0, 0, ist)
	todayRows := sessionRows(today, 75, 100)
	priorRows := append(
		sessionRows(today.AddDate(0, 0, -1), 75, 98),
		sessionRows(today.AddDate(0, 0, -2), 75, 96)...,
	)

	var rangedPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasPrefix(r.URL.Path, "/historical-candle/intraday/") {
			fmt.Fprint(w, candlePayload(todayRows))
			return
		}
		rangedPath = r.URL.Path
		fmt.Fprint(w, candlePayload(priorRows))
	}))
	client.now = func() time.Time { return time.Date(2026, 8, 28, 15, 30, 0, 0, ist) }

	bars, err := client.GetLatestBars(context.Background(), "TRENT", 200)

	require.NoError(t, err)
	assert.Equal(t, "/historical-candle/NSE_EQ:TRENT/5minute/2026-08-28/2026-08-25", rangedPath)

	require.Len(t, bars, 200)
	assert.GreaterOrEqual(t, len(bars), 100, "deep history must satisfy the feature minimum")
	for i := 1; i < len(bars); i++ {
		assert.True(t, bars[i-1].Timestamp.Before(bars[i].Timestamp))
	}
	newest := bars[len(bars)-1]
	assert.True(t, newest.Timestamp.Equal(today.Add(74*5*time.Minute)))
	assert.InDelta(t, 100.0, newest.Close, 1e-9)
	// The oldest two days' surplus fell off the front.
	assert.InDelta(t, 96.0, bars[0].Close, 1e-9)
}

func TestGetLatestBars_NoTopUpWhenIntradaySuffices(t *testing.T) {
	var requests int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, candlesJSON)
	}))

	bars, err := client.GetLatestBars(context.Background(), "TRENT", 3)

	require.NoError(t, err)
	assert.Len(t, bars, 3)
	assert.Equal(t, 1, requests)
}

func TestGetLatestBars_DeduplicatesOverlap(t *testing.T) {
	// The ranged endpoint may serve today's opening bars again; the
	// intraday copy wins and no timestamp repeats.
	today := time.Date(2026, 8, 28, 9, 15, 0, 0, ist)
	intradayRows := sessionRows(today, 3, 100)
	rangedRows := append(
		[]string{candleRow(today, 90, 91, 89, 90, 500)},
		sessionRows(today.AddDate(0, 0, -1), 2, 98)...,
	)

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasPrefix(r.URL.Path, "/historical-candle/intraday/") {
			fmt.Fprint(w, candlePayload(intradayRows))
			return
		}
		fmt.Fprint(w, candlePayload(rangedRows))
	}))
	client.now = func() time.Time { return time.Date(2026, 8, 28, 10, 0, 0, 0, ist) }

	bars, err := client.GetLatestBars(context.Background(), "TRENT", 10)

	require.NoError(t, err)
	require.Len(t, bars, 5)
	seen := make(map[int64]bool)
	for _, b := range bars {
		assert.False(t, seen[b.Timestamp.Unix()], "duplicate bar at %v", b.Timestamp)
		seen[b.Timestamp.Unix()] = true
	}
	var opening *domain.Bar
	for _, b := range bars {
		if b.Timestamp.Equal(today) {
			opening = b
		}
	}
	require.NotNil(t, opening)
	assert.InDelta(t, 100.0, opening.Close, 1e-9, "intraday copy wins the overlap")
}

func TestGetLatestBars_RangedFailureIsUnavailable(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/historical-candle/intraday/") {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, candlesJSON)
			return
		}
		http.Error(w, "upstream busy", http.StatusServiceUnavailable)
	}))

	_, err := client.GetLatestBars(context.Background(), "TRENT", 200)

	assert.ErrorIs(t, err, ports.ErrUnavailable)
}

func TestGetCurrentBar_ReturnsNewest(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, candlesJSON)
	}))

	bar, err := client.GetCurrentBar(context.Background(), "TRENT")

	require.NoError(t, err)
	assert.InDelta(t, 101.5, bar.Close, 1e-9)
	assert.InDelta(t, 1200.0, bar.Volume, 1e-9)
}

func TestGetCurrentBar_EmptyPayloadIsUnavailable(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"success","data":{"candles":[]}}`)
	}))

	_, err := client.GetCurrentBar(context.Background(), "TRENT")

	assert.ErrorIs(t, err, ports.ErrUnavailable)
}

func TestGetCurrentBar_HTTPErrorIsUnavailable(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream busy", http.StatusServiceUnavailable)
	}))

	_, err := client.GetCurrentBar(context.Background(), "TRENT")

	assert.ErrorIs(t, err, ports.ErrUnavailable)
}

func TestIntradayCandles_SkipsMalformedRows(t *testing.T) {
	payload := `{
		"status": "success",
		"data": {
			"candles": [
				["2026-08-28T10:05:00+05:30", 100.5, 101.5, 100.0, 101.0, 1100.0, 0],
				["not-a-timestamp", 1.0, 2.0, 0.5, 1.5, 10.0, 0],
				["2026-08-28T10:00:00+05:30", "bad", 101.0, 99.5, 100.5, 1000.0, 0]
			]
		}
	}`
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, payload)
	}))

	bars, err := client.GetLatestBars(context.Background(), "TRENT", 10)

	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.InDelta(t, 101.0, bars[0].Close, 1e-9)
}

func TestIsMarketOpen(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected bool
	}{
		{"open", `{"status":"success","data":{"market_open":true}}`, true},
		{"closed", `{"status":"success","data":{"market_open":false}}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/market/status", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, tt.body)
			}))

			open, err := client.IsMarketOpen(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, open)
		})
	}
}

func TestIsMarketOpen_FallsBackToQuoteProbe(t *testing.T) {
	var probeQuery string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/market/status":
			http.Error(w, "not found", http.StatusNotFound)
		case "/market-quote/ltp":
			probeQuery = r.URL.Query().Get("instrument_key")
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"status":"success","data":{"NSE_EQ:RELIANCE":{"last_price":2950.5}}}`)
		default:
			http.Error(w, "unexpected path", http.StatusBadRequest)
		}
	}))

	open, err := client.IsMarketOpen(context.Background())

	require.NoError(t, err)
	assert.True(t, open, "a venue answering live quotes is trading")
	assert.Equal(t, "NSE_EQ:RELIANCE", probeQuery)
}

func TestIsMarketOpen_ProbeAlsoFailsIsUnavailable(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))

	_, err := client.IsMarketOpen(context.Background())

	assert.ErrorIs(t, err, ports.ErrUnavailable)
}
