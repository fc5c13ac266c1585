// Package csvlog implements the append-only CSV trade log sink. The first
// write of a session creates the day's file with a header; later writes
// append rows only.
package csvlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"paperTrader/internal/domain"
	"paperTrader/internal/ports"
)

var header = []string{
	"id", "symbol", "entry_time", "entry_price", "exit_time", "exit_price",
	"confidence", "atr_pct", "stop_loss", "take_profit", "pnl",
	"exit_reason", "duration_minutes",
}

// Log writes closed-trade records to one CSV file per day.
type Log struct {
	mu     sync.Mutex
	path   string
	logger ports.Logger
}

// New creates the log directory if needed and returns a sink writing to
// live_trades_YYYYMMDD.csv inside it.
func New(dir string, now time.Time, logger ports.Logger) (*Log, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for CSV trade log")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("live_trades_%s.csv", now.Format("20060102")))
	return &Log{path: path, logger: logger}, nil
}

// Path returns the file this session appends to.
func (l *Log) Path() string { return l.path }

// Append writes one record, creating the file with a header on first use.
// Delivery is at-least-once; a crash between the trade closing and the
// flush may drop or duplicate a row, which downstream tooling tolerates.
func (l *Log) Append(ctx context.Context, rec domain.TradeRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, statErr := os.Stat(l.path)
	writeHeader := os.IsNotExist(statErr)

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open trade log %s: %w", l.path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write trade log header: %w", err)
		}
	}
	if err := w.Write(row(rec)); err != nil {
		return fmt.Errorf("write trade log row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush trade log: %w", err)
	}

	l.logger.Debug(ctx, "Trade record appended", map[string]interface{}{"id": rec.ID, "file": l.path})
	return nil
}

func row(rec domain.TradeRecord) []string {
	return []string{
		rec.ID,
		rec.Symbol,
		rec.EntryTime,
		f(rec.EntryPrice),
		rec.ExitTime,
		f(rec.ExitPrice),
		f(rec.Confidence),
		f(rec.ATRPct),
		f(rec.StopLoss),
		f(rec.TakeProfit),
		f(rec.PNL),
		rec.ExitReason,
		f(rec.DurationMinutes),
	}
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
