package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"paperTrader/internal/domain"
)

func closedPosition(t *testing.T, symbol string, entry, exit float64, reason domain.ExitReason) *domain.Position {
	t.Helper()
	entryTime := time.Date(2026, 8, 28, 10, 0, 0, 0, time.Local)
	params := domain.PositionParams{
		StopLossATRMult: 2.0,
		TakeProfitPct:   40.0,
		TimeStop:        60 * time.Minute,
		CostPct:         0.10,
		PositionSize:    10000,
	}
	pos := domain.NewPosition("t-"+symbol, symbol, entry, entryTime, 0.8, 1.0, params)
	pos.Close(exit, reason, entryTime.Add(30*time.Minute))
	return pos
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Zero(t, s.Trades)
	assert.Zero(t, s.WinRate)
	assert.Zero(t, s.TotalPnL)
	assert.False(t, s.HasProfitFactor)
}

func TestSummarize_MixedWinnersAndLosers(t *testing.T) {
	closed := []*domain.Position{
		closedPosition(t, "A", 100, 104, domain.ExitReasonTakeProfit), // +390.00
		closedPosition(t, "B", 100, 104, domain.ExitReasonTakeProfit), // +390.00
		closedPosition(t, "C", 100, 98, domain.ExitReasonStopLoss),    // -210.00
		closedPosition(t, "D", 100, 95, domain.ExitReasonStopLoss),    // -510.00
	}

	s := Summarize(closed)

	assert.Equal(t, 4, s.Trades)
	assert.Equal(t, 2, s.Wins)
	assert.InDelta(t, 50.0, s.WinRate, 1e-9)
	assert.InDelta(t, 60.0, s.TotalPnL, 1e-6)
	assert.InDelta(t, 15.0, s.AvgPnL, 1e-6)
	assert.True(t, s.HasProfitFactor)
	assert.InDelta(t, 780.0/720.0, s.ProfitFactor, 1e-6)
}

func TestSummarize_AllWinnersHasNoProfitFactor(t *testing.T) {
	closed := []*domain.Position{
		closedPosition(t, "A", 100, 104, domain.ExitReasonTakeProfit),
		closedPosition(t, "B", 100, 106, domain.ExitReasonTakeProfit),
	}

	s := Summarize(closed)

	assert.Equal(t, 2, s.Wins)
	assert.InDelta(t, 100.0, s.WinRate, 1e-9)
	assert.False(t, s.HasProfitFactor, "profit factor is undefined without losers")
}

func TestSummarize_AllLosersHasNoProfitFactor(t *testing.T) {
	closed := []*domain.Position{
		closedPosition(t, "A", 100, 98, domain.ExitReasonStopLoss),
		closedPosition(t, "B", 100, 97, domain.ExitReasonStopLoss),
	}

	s := Summarize(closed)

	assert.Zero(t, s.Wins)
	assert.Zero(t, s.WinRate)
	assert.Negative(t, s.TotalPnL)
	assert.False(t, s.HasProfitFactor, "profit factor is undefined without winners")
}
