// Package binanceclient implements ports.QuoteSource against Binance spot
// market data, for running the loop on a 24/7 crypto venue.
package binanceclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"

	"paperTrader/internal/domain"
	"paperTrader/internal/ports"
)

// Config holds configuration for the Binance client.
type Config struct {
	APIKey          string
	SecretKey       string
	UseTestnet      bool
	IntervalMinutes int
	Logger          ports.Logger
}

// Client is a QuoteSource backed by Binance spot klines.
type Client struct {
	client   *binance.Client
	logger   ports.Logger
	interval string
}

// New creates a Binance-backed quote source. Market data requires no
// signed endpoints, so empty keys are accepted.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.IntervalMinutes <= 0 {
		return nil, fmt.Errorf("interval minutes must be positive")
	}

	binance.UseTestnet = cfg.UseTestnet
	return &Client{
		client:   binance.NewClient(cfg.APIKey, cfg.SecretKey),
		logger:   cfg.Logger,
		interval: fmt.Sprintf("%dm", cfg.IntervalMinutes),
	}, nil
}

// GetCurrentBar retrieves the latest kline for a symbol.
func (c *Client) GetCurrentBar(ctx context.Context, symbol string) (*domain.Bar, error) {
	bars, err := c.GetLatestBars(ctx, symbol, 1)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no klines for %s", ports.ErrUnavailable, symbol)
	}
	return bars[len(bars)-1], nil
}

// GetLatestBars retrieves up to n recent klines, oldest to newest (the
// order Binance already returns).
func (c *Client) GetLatestBars(ctx context.Context, symbol string, n int) ([]*domain.Bar, error) {
	klines, err := c.client.NewKlinesService().
		Symbol(symbol).
		Interval(c.interval).
		Limit(n).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch klines for %s: %v", ports.ErrUnavailable, symbol, err)
	}

	bars := make([]*domain.Bar, 0, len(klines))
	for _, k := range klines {
		bar, err := toBar(symbol, k)
		if err != nil {
			c.logger.Warn(ctx, "Skipping malformed kline", map[string]interface{}{"symbol": symbol, "error": err.Error()})
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// IsMarketOpen always reports true: crypto venues trade around the clock.
func (c *Client) IsMarketOpen(ctx context.Context) (bool, error) {
	return true, nil
}

func toBar(symbol string, k *binance.Kline) (*domain.Bar, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return nil, fmt.Errorf("parse open %q: %w", k.Open, err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return nil, fmt.Errorf("parse high %q: %w", k.High, err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return nil, fmt.Errorf("parse low %q: %w", k.Low, err)
	}
	closePrice, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("parse close %q: %w", k.Close, err)
	}
	volume, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return nil, fmt.Errorf("parse volume %q: %w", k.Volume, err)
	}

	return &domain.Bar{
		Timestamp: time.UnixMilli(k.OpenTime),
		Symbol:    symbol,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
	}, nil
}
