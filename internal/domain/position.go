package domain

import (
	"math"
	"time"
)

// PositionParams are the per-position slices of the trading configuration,
// fixed at construction time so a Position evaluates its own exits and P&L
// without reaching back into global config.
type PositionParams struct {
	StopLossATRMult float64       // Stop distance in ATR-percent multiples
	TakeProfitPct   float64       // Target above entry, in percent
	TimeStop        time.Duration // Maximum holding duration
	CostPct         float64       // Round-trip cost deducted from gross return, in percent
	PositionSize    float64       // Notional size used for P&L conversion
}

// Position is a single simulated trade. It is open from construction until
// the first (and only) Close call; exit fields are unset before that and
// immutable after.
type Position struct {
	ID         string
	Symbol     string
	EntryPrice float64
	EntryTime  time.Time
	Confidence float64 // Model output at entry, in [0,1]
	ATRPct     float64 // Volatility at entry, percent of price

	StopLoss   float64 // Derived once at construction
	TakeProfit float64 // Derived once at construction

	Status     PositionStatus
	ExitPrice  float64
	ExitTime   time.Time
	ExitReason ExitReason
	PNL        float64

	params PositionParams
}

// NewPosition creates an open position with stop and target levels derived
// from the entry price. Inputs are not range-checked: a non-positive atrPct
// yields a stop at or above the entry price, which the decision engine's
// volatility floor prevents in practice.
func NewPosition(id, symbol string, entryPrice float64, entryTime time.Time, confidence, atrPct float64, params PositionParams) *Position {
	return &Position{
		ID:         id,
		Symbol:     symbol,
		EntryPrice: entryPrice,
		EntryTime:  entryTime,
		Confidence: confidence,
		ATRPct:     atrPct,
		StopLoss:   entryPrice * (1 - params.StopLossATRMult*atrPct/100),
		TakeProfit: entryPrice * (1 + params.TakeProfitPct/100),
		Status:     StatusOpen,
		params:     params,
	}
}

// IsOpen reports whether the position has not been closed yet.
func (p *Position) IsOpen() bool {
	return p.Status == StatusOpen
}

// CheckExit evaluates the exit rules against the latest bar and closes the
// position on the first rule that matches. The order is fixed: stop-loss,
// then take-profit, then time-stop. The bar's high/low detect intrabar
// touches even though the loop only observes bar-close granularity; a touch
// anywhere in the bar counts. Returns true when the position closed on this
// call. The caller must not invoke CheckExit on a closed position.
func (p *Position) CheckExit(currentPrice, high, low float64, now time.Time) bool {
	if low <= p.StopLoss {
		p.Close(p.StopLoss, ExitReasonStopLoss, now)
		return true
	}

	if high >= p.TakeProfit {
		p.Close(p.TakeProfit, ExitReasonTakeProfit, now)
		return true
	}

	if now.Sub(p.EntryTime) >= p.params.TimeStop {
		p.Close(currentPrice, ExitReasonTimeStop, now)
		return true
	}

	return false
}

// Close finalizes the position at the given exit price and computes its
// P&L. It is the only mutator of the exit fields; forcing a close at the
// entry price (end of day) is just a normal call with ExitReasonEODClose.
// Close must be invoked at most once per position.
func (p *Position) Close(exitPrice float64, reason ExitReason, exitTime time.Time) {
	p.ExitPrice = exitPrice
	p.ExitReason = reason
	p.ExitTime = exitTime
	p.Status = StatusClosed

	grossReturnPct := (p.ExitPrice - p.EntryPrice) / p.EntryPrice * 100
	netReturnPct := grossReturnPct - p.params.CostPct
	p.PNL = netReturnPct * p.params.PositionSize / 100
}

// Duration returns the holding time of a closed position.
func (p *Position) Duration() time.Duration {
	return p.ExitTime.Sub(p.EntryTime)
}

// TradeRecord is the flat, rounded representation of a closed position used
// by the trade log sink and the trade-history repository.
type TradeRecord struct {
	ID              string
	Symbol          string
	EntryTime       string
	EntryPrice      float64
	ExitTime        string
	ExitPrice       float64
	Confidence      float64
	ATRPct          float64
	StopLoss        float64
	TakeProfit      float64
	PNL             float64
	ExitReason      string
	DurationMinutes float64
}

const recordTimeLayout = "2006-01-02 15:04:05"

// Record produces the persistence view of the position. Exit fields of a
// still-open position come through as zero values and an empty reason.
func (p *Position) Record() TradeRecord {
	rec := TradeRecord{
		ID:         p.ID,
		Symbol:     p.Symbol,
		EntryTime:  p.EntryTime.Format(recordTimeLayout),
		EntryPrice: round(p.EntryPrice, 2),
		Confidence: round(p.Confidence, 4),
		ATRPct:     round(p.ATRPct, 4),
		StopLoss:   round(p.StopLoss, 2),
		TakeProfit: round(p.TakeProfit, 2),
		ExitReason: string(p.ExitReason),
	}
	if !p.ExitTime.IsZero() {
		rec.ExitTime = p.ExitTime.Format(recordTimeLayout)
		rec.ExitPrice = round(p.ExitPrice, 2)
		rec.PNL = round(p.PNL, 2)
		rec.DurationMinutes = round(p.Duration().Minutes(), 1)
	}
	return rec
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
