// Package risk implements the entry gate that enforces the daily risk
// limits: loss floor, trade cap, and post-loss cooldown.
package risk

import (
	"fmt"
	"time"

	"paperTrader/config"
)

// Stats is the snapshot of session state the gate evaluates. The gate
// itself is stateless; the session owns these numbers.
type Stats struct {
	DailyPnL        float64
	TradeCountToday int
	LastLossTime    time.Time // Zero value means no loss has occurred yet
}

// Gate decides whether new entries are permitted. It has no side effects
// and is re-evaluated on every entry attempt, never cached.
type Gate struct {
	limits config.RiskLimits
}

// NewGate creates a gate for the given limits.
func NewGate(limits config.RiskLimits) *Gate {
	return &Gate{limits: limits}
}

// Allows reports whether a new entry is permitted right now. When blocked,
// reason describes which limit tripped.
func (g *Gate) Allows(now time.Time, stats Stats) (allowed bool, reason string) {
	// Loss floor is inclusive: a day exactly at the floor is done.
	if stats.DailyPnL <= g.limits.MaxDailyLoss {
		return false, fmt.Sprintf("daily loss limit reached (%.2f <= %.2f)", stats.DailyPnL, g.limits.MaxDailyLoss)
	}

	if stats.TradeCountToday >= g.limits.MaxDailyTrades {
		return false, fmt.Sprintf("daily trade limit reached (%d/%d)", stats.TradeCountToday, g.limits.MaxDailyTrades)
	}

	if !stats.LastLossTime.IsZero() {
		if since := now.Sub(stats.LastLossTime); since < g.limits.CooldownAfterLoss {
			return false, fmt.Sprintf("in post-loss cooldown (%.1fm of %v)", since.Minutes(), g.limits.CooldownAfterLoss)
		}
	}

	return true, ""
}
