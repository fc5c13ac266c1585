package binanceclient

import (
	"context"
	"testing"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{IntervalMinutes: 5})
	assert.Error(t, err, "logger is required")

	_, err = New(Config{IntervalMinutes: 0, Logger: nopLogger{}})
	assert.Error(t, err, "interval must be positive")

	client, err := New(Config{IntervalMinutes: 5, Logger: nopLogger{}})
	require.NoError(t, err)
	assert.Equal(t, "5m", client.interval)
}

func TestIsMarketOpen_AlwaysTrue(t *testing.T) {
	client, err := New(Config{IntervalMinutes: 5, Logger: nopLogger{}})
	require.NoError(t, err)

	open, err := client.IsMarketOpen(context.Background())
	require.NoError(t, err)
	assert.True(t, open)
}

func TestToBar(t *testing.T) {
	openTime := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	k := &binance.Kline{
		OpenTime: openTime.UnixMilli(),
		Open:     "100.5",
		High:     "101.5",
		Low:      "99.5",
		Close:    "101.0",
		Volume:   "1234.56",
	}

	bar, err := toBar("BTCUSDT", k)

	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", bar.Symbol)
	assert.True(t, bar.Timestamp.Equal(openTime))
	assert.InDelta(t, 100.5, bar.Open, 1e-9)
	assert.InDelta(t, 101.5, bar.High, 1e-9)
	assert.InDelta(t, 99.5, bar.Low, 1e-9)
	assert.InDelta(t, 101.0, bar.Close, 1e-9)
	assert.InDelta(t, 1234.56, bar.Volume, 1e-9)
}

func TestToBar_MalformedField(t *testing.T) {
	k := &binance.Kline{
		OpenTime: time.Now().UnixMilli(),
		Open:     "not-a-number",
		High:     "101.5",
		Low:      "99.5",
		Close:    "101.0",
		Volume:   "1234.56",
	}

	_, err := toBar("BTCUSDT", k)
	assert.Error(t, err)
}
