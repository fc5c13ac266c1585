package app

import "paperTrader/internal/domain"

// Summary is the end-of-day rollup derived purely from closed trades.
type Summary struct {
	Trades          int
	Wins            int
	WinRate         float64 // Percent of trades with positive P&L
	TotalPnL        float64
	AvgPnL          float64
	ProfitFactor    float64 // Gross wins over absolute gross losses
	HasProfitFactor bool    // Defined only when both winners and losers exist
}

// Summarize computes the run summary from the closed-trade collection.
func Summarize(closed []*domain.Position) Summary {
	var s Summary
	s.Trades = len(closed)
	if s.Trades == 0 {
		return s
	}

	var grossWins, grossLosses float64
	for _, pos := range closed {
		s.TotalPnL += pos.PNL
		if pos.PNL > 0 {
			s.Wins++
			grossWins += pos.PNL
		} else if pos.PNL < 0 {
			grossLosses += pos.PNL
		}
	}

	s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
	s.AvgPnL = s.TotalPnL / float64(s.Trades)
	if grossWins > 0 && grossLosses < 0 {
		s.ProfitFactor = grossWins / -grossLosses
		s.HasProfitFactor = true
	}
	return s
}
