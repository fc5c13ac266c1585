package app

import (
	"sync"
	"time"

	"paperTrader/internal/domain"
	"paperTrader/internal/risk"
)

// Session owns the mutable trading-day state: open positions, closed
// trades, P&L counters, and the last-loss timestamp. There is no ambient
// state; the engine and controller share one Session by reference. All
// mutators take the internal mutex, so a parallelized tick would still
// serialize correctly, though the shipped loop is single-threaded.
//
// Counters are never reset within the process: a Session spans exactly one
// trading day and the controller terminates at market close.
type Session struct {
	mu              sync.Mutex
	activePositions []*domain.Position
	closedTrades    []*domain.Position
	dailyPnL        float64
	totalPnL        float64
	tradeCountToday int
	lastLossTime    time.Time
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{
		activePositions: make([]*domain.Position, 0),
		closedTrades:    make([]*domain.Position, 0),
	}
}

// SeedTradeCount initializes the daily trade counter, used when restarting
// mid-day so the daily-trade limit counts trades from before the restart.
func (s *Session) SeedTradeCount(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if count > s.tradeCountToday {
		s.tradeCountToday = count
	}
}

// Open registers a new position and counts the entry.
func (s *Session) Open(pos *domain.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activePositions = append(s.activePositions, pos)
	s.tradeCountToday++
}

// Settle moves a just-closed position from the active set to the closed
// trades and folds its P&L into the daily and total accumulators. A losing
// trade stamps the cooldown clock.
func (s *Session) Settle(pos *domain.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.activePositions {
		if p == pos {
			s.activePositions = append(s.activePositions[:i], s.activePositions[i+1:]...)
			break
		}
	}
	s.closedTrades = append(s.closedTrades, pos)
	s.dailyPnL += pos.PNL
	s.totalPnL += pos.PNL
	if pos.PNL < 0 {
		s.lastLossTime = pos.ExitTime
	}
}

// ActiveCount returns the number of open positions across all symbols.
func (s *Session) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activePositions)
}

// ActiveForSymbol returns a stable snapshot of the open positions for one
// symbol; exit checks iterate the snapshot while Settle removes from the
// live slice.
func (s *Session) ActiveForSymbol(symbol string) []*domain.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Position, 0)
	for _, p := range s.activePositions {
		if p.Symbol == symbol {
			out = append(out, p)
		}
	}
	return out
}

// ActiveCountForSymbol counts open positions for one symbol.
func (s *Session) ActiveCountForSymbol(symbol string) int {
	return len(s.ActiveForSymbol(symbol))
}

// DrainActive removes and returns every open position, used by the
// end-of-day forced liquidation.
func (s *Session) DrainActive() []*domain.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	drained := s.activePositions
	s.activePositions = make([]*domain.Position, 0)
	return drained
}

// ClosedTrades returns a snapshot of the closed trades, in close order.
func (s *Session) ClosedTrades() []*domain.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Position, len(s.closedTrades))
	copy(out, s.closedTrades)
	return out
}

// RiskStats snapshots the fields the risk gate evaluates.
func (s *Session) RiskStats() risk.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return risk.Stats{
		DailyPnL:        s.dailyPnL,
		TradeCountToday: s.tradeCountToday,
		LastLossTime:    s.lastLossTime,
	}
}

// DailyPnL returns the running daily P&L.
func (s *Session) DailyPnL() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dailyPnL
}

// TotalPnL returns the running total P&L.
func (s *Session) TotalPnL() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPnL
}

// TradeCountToday returns the number of entries so far today.
func (s *Session) TradeCountToday() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tradeCountToday
}
