package domain

import "time"

// Bar represents a single OHLCV sample for a fixed interval.
type Bar struct {
	Timestamp time.Time // Start time of the interval
	Symbol    string    // Instrument identifier
	Open      float64   // Opening price
	High      float64   // Highest price
	Low       float64   // Lowest price
	Close     float64   // Closing price
	Volume    float64   // Traded volume
}
