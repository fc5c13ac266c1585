// Package upstoxclient implements ports.QuoteSource against the Upstox v2
// market-data REST API.
package upstoxclient

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"paperTrader/internal/domain"
	"paperTrader/internal/ports"
)

// lookbackDays bounds the date-ranged history fetch. Three calendar days
// reach back past a weekend to the previous trading sessions.
const lookbackDays = 3

// Config holds configuration for the Upstox client.
type Config struct {
	BaseURL         string
	AccessTokenFile string
	Timeout         time.Duration
	IntervalMinutes int    // Bar interval requested from the candle endpoints
	ExchangeSegment string // Instrument-key prefix, e.g. "NSE_EQ"
	ProbeSymbol     string // Symbol quoted by the market-status fallback
	Logger          ports.Logger
}

// Client is a QuoteSource backed by the Upstox REST API.
type Client struct {
	http            *resty.Client
	logger          ports.Logger
	interval        string
	exchangeSegment string
	probeSymbol     string

	now func() time.Time // Injected for tests
}

// New creates a client, reading the bearer token from the configured file.
// A missing token file is a fatal startup condition.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Upstox client")
	}
	if cfg.IntervalMinutes <= 0 {
		return nil, fmt.Errorf("interval minutes must be positive")
	}

	token, err := os.ReadFile(cfg.AccessTokenFile)
	if err != nil {
		return nil, fmt.Errorf("%w: read access token %s: %v", ports.ErrConfigurationError, cfg.AccessTokenFile, err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	segment := cfg.ExchangeSegment
	if segment == "" {
		segment = "NSE_EQ"
	}
	probe := cfg.ProbeSymbol
	if probe == "" {
		probe = "RELIANCE"
	}

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetAuthToken(strings.TrimSpace(string(token))).
		SetHeader("accept", "application/json")

	return &Client{
		http:            http,
		logger:          cfg.Logger,
		interval:        fmt.Sprintf("%dminute", cfg.IntervalMinutes),
		exchangeSegment: segment,
		probeSymbol:     probe,
		now:             time.Now,
	}, nil
}

// instrumentKey maps a plain symbol onto the API's instrument identifier.
// One convention is used everywhere; callers only ever see the symbol.
func (c *Client) instrumentKey(symbol string) string {
	return c.exchangeSegment + ":" + symbol
}

type candleResponse struct {
	Status string `json:"status"`
	Data   struct {
		Candles [][]interface{} `json:"candles"`
	} `json:"data"`
}

type marketStatusResponse struct {
	Status string `json:"status"`
	Data   struct {
		MarketOpen bool `json:"market_open"`
	} `json:"data"`
}

type ltpResponse struct {
	Status string `json:"status"`
	Data   map[string]struct {
		LastPrice float64 `json:"last_price"`
	} `json:"data"`
}

// GetCurrentBar retrieves the latest intraday bar for a symbol. Any
// transport failure or empty payload maps to ports.ErrUnavailable.
func (c *Client) GetCurrentBar(ctx context.Context, symbol string) (*domain.Bar, error) {
	bars, err := c.intradayCandles(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no intraday candles for %s", ports.ErrUnavailable, symbol)
	}
	return bars[len(bars)-1], nil
}

// GetLatestBars retrieves up to n recent bars, oldest to newest. The
// intraday endpoint covers only the current session (75 five-minute bars at
// most), so deeper requests top up from the date-ranged endpoint over the
// previous trading days.
func (c *Client) GetLatestBars(ctx context.Context, symbol string, n int) ([]*domain.Bar, error) {
	bars, err := c.intradayCandles(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(bars) < n {
		hist, err := c.rangedCandles(ctx, symbol)
		if err != nil {
			return nil, err
		}
		bars = mergeBars(hist, bars)
	}
	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	return bars, nil
}

// IsMarketOpen queries the venue's market status. When the status endpoint
// is unavailable it falls back to quoting the probe symbol: a venue that
// answers live quotes is trading.
func (c *Client) IsMarketOpen(ctx context.Context) (bool, error) {
	var out marketStatusResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/market/status")
	if err == nil && !resp.IsError() {
		return out.Data.MarketOpen, nil
	}

	if _, ltpErr := c.lastTradedPrice(ctx, c.probeSymbol); ltpErr != nil {
		return false, fmt.Errorf("%w: market status unavailable and quote probe failed: %v", ports.ErrUnavailable, ltpErr)
	}
	return true, nil
}

// lastTradedPrice fetches the live quote for one symbol.
func (c *Client) lastTradedPrice(ctx context.Context, symbol string) (float64, error) {
	var out ltpResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetQueryParam("instrument_key", c.instrumentKey(symbol)).
		Get("/market-quote/ltp")
	if err != nil {
		return 0, fmt.Errorf("%w: quote for %s: %v", ports.ErrUnavailable, symbol, err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("%w: quote request for %s returned %s", ports.ErrUnavailable, symbol, resp.Status())
	}
	for _, quote := range out.Data {
		return quote.LastPrice, nil
	}
	return 0, fmt.Errorf("%w: no quote for %s", ports.ErrUnavailable, symbol)
}

// intradayCandles fetches the current session's candles.
func (c *Client) intradayCandles(ctx context.Context, symbol string) ([]*domain.Bar, error) {
	return c.candles(ctx, symbol, "/historical-candle/intraday/{instrumentKey}/{interval}", nil)
}

// rangedCandles fetches candles for the previous lookbackDays calendar days.
func (c *Client) rangedCandles(ctx context.Context, symbol string) ([]*domain.Bar, error) {
	now := c.now()
	return c.candles(ctx, symbol, "/historical-candle/{instrumentKey}/{interval}/{toDate}/{fromDate}", map[string]string{
		"toDate":   now.Format("2006-01-02"),
		"fromDate": now.AddDate(0, 0, -lookbackDays).Format("2006-01-02"),
	})
}

func (c *Client) candles(ctx context.Context, symbol, path string, pathParams map[string]string) ([]*domain.Bar, error) {
	var out candleResponse
	req := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetPathParam("instrumentKey", c.instrumentKey(symbol)).
		SetPathParam("interval", c.interval)
	for k, v := range pathParams {
		req.SetPathParam(k, v)
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch candles for %s: %v", ports.ErrUnavailable, symbol, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: candle request for %s returned %s", ports.ErrUnavailable, symbol, resp.Status())
	}

	bars := make([]*domain.Bar, 0, len(out.Data.Candles))
	for _, raw := range out.Data.Candles {
		bar, err := parseCandle(symbol, raw)
		if err != nil {
			c.logger.Warn(ctx, "Skipping malformed candle", map[string]interface{}{"symbol": symbol, "error": err.Error()})
			continue
		}
		bars = append(bars, bar)
	}

	// The API returns newest first; callers expect oldest to newest.
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}

// mergeBars combines ranged history with the intraday session, keeping the
// intraday copy wherever the two overlap.
func mergeBars(hist, intraday []*domain.Bar) []*domain.Bar {
	seen := make(map[int64]struct{}, len(intraday))
	for _, b := range intraday {
		seen[b.Timestamp.Unix()] = struct{}{}
	}

	merged := make([]*domain.Bar, 0, len(hist)+len(intraday))
	for _, b := range hist {
		if _, dup := seen[b.Timestamp.Unix()]; !dup {
			merged = append(merged, b)
		}
	}
	merged = append(merged, intraday...)
	sort.Slice(merged, func(i, j int) bool { return merged[i].Timestamp.Before(merged[j].Timestamp) })
	return merged
}

// parseCandle decodes one candle row:
// [timestamp, open, high, low, close, volume, openInterest].
func parseCandle(symbol string, raw []interface{}) (*domain.Bar, error) {
	if len(raw) < 6 {
		return nil, fmt.Errorf("candle row has %d fields, want at least 6", len(raw))
	}

	tsStr, ok := raw[0].(string)
	if !ok {
		return nil, fmt.Errorf("candle timestamp is not a string")
	}
	ts, err := time.Parse(time.RFC3339, tsStr)
	if err != nil {
		return nil, fmt.Errorf("parse candle timestamp %q: %w", tsStr, err)
	}

	vals := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, ok := raw[i+1].(float64)
		if !ok {
			return nil, fmt.Errorf("candle field %d is not numeric", i+1)
		}
		vals[i] = v
	}

	return &domain.Bar{
		Timestamp: ts,
		Symbol:    symbol,
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}
