package config

import (
	"strings"
	"time"

	"paperTrader/internal/domain"
)

// Profile selects which override set applies on top of the base trading
// parameters and risk limits.
type Profile string

const (
	ProfileConservative Profile = "conservative"
	ProfileBalanced     Profile = "balanced"
	ProfileAggressive   Profile = "aggressive"
)

// ParseProfile maps a profile name to a Profile. Unknown names fall back to
// the balanced base explicitly; ok is false so the caller can log the
// fallback instead of silently accepting a typo.
func ParseProfile(name string) (p Profile, ok bool) {
	switch Profile(strings.ToLower(strings.TrimSpace(name))) {
	case ProfileConservative:
		return ProfileConservative, true
	case ProfileBalanced:
		return ProfileBalanced, true
	case ProfileAggressive:
		return ProfileAggressive, true
	default:
		return ProfileBalanced, false
	}
}

// TradingParams are the process-wide, read-only trading parameters resolved
// once at startup. Never mutated during a session.
type TradingParams struct {
	ConfThreshold      float64 // Minimum model confidence for an entry
	CostPct            float64 // Round-trip cost in percent of notional
	MaxTradesPerSymbol int     // Cap on concurrently open positions per symbol
	MaxTotalPositions  int     // Cap on concurrently open positions overall
	PositionSize       float64 // Notional size per position
	StopLossATRMult    float64 // Stop distance in ATR-percent multiples
	TakeProfitPct      float64 // Target above entry, percent
	TimeStopMinutes    int     // Maximum holding time
	MinATRPct          float64 // Volatility floor for entries
}

// PositionParams extracts the slices of the parameters a Position needs for
// its own exit evaluation and P&L computation.
func (p TradingParams) PositionParams() domain.PositionParams {
	return domain.PositionParams{
		StopLossATRMult: p.StopLossATRMult,
		TakeProfitPct:   p.TakeProfitPct,
		TimeStop:        time.Duration(p.TimeStopMinutes) * time.Minute,
		CostPct:         p.CostPct,
		PositionSize:    p.PositionSize,
	}
}

// RiskLimits are the process-wide, read-only daily risk limits.
type RiskLimits struct {
	MaxDailyLoss      float64       // Loss floor, a negative number
	MaxDailyTrades    int           // Cap on entries per day
	CooldownAfterLoss time.Duration // Wait after a losing trade before new entries
}

// ResolveParams overlays the profile-specific overrides onto the balanced
// base parameters.
func ResolveParams(profile Profile) TradingParams {
	params := TradingParams{
		ConfThreshold:      0.55,
		CostPct:            0.10,
		MaxTradesPerSymbol: 2,
		MaxTotalPositions:  8,
		PositionSize:       10000,
		StopLossATRMult:    2.0,
		TakeProfitPct:      0.40,
		TimeStopMinutes:    60,
		MinATRPct:          0.6,
	}

	switch profile {
	case ProfileConservative:
		params.ConfThreshold = 0.62
		params.MaxTotalPositions = 5
		params.PositionSize = 8000
		params.StopLossATRMult = 1.8
		params.TakeProfitPct = 0.30
		params.TimeStopMinutes = 45
		params.MinATRPct = 0.8
	case ProfileAggressive:
		params.ConfThreshold = 0.48
		params.MaxTradesPerSymbol = 3
		params.MaxTotalPositions = 12
		params.PositionSize = 15000
		params.StopLossATRMult = 2.5
		params.TakeProfitPct = 0.60
		params.TimeStopMinutes = 90
		params.MinATRPct = 0.4
	}

	return params
}

// ResolveLimits overlays the profile-specific overrides onto the balanced
// base risk limits.
func ResolveLimits(profile Profile) RiskLimits {
	limits := RiskLimits{
		MaxDailyLoss:      -1000,
		MaxDailyTrades:    20,
		CooldownAfterLoss: 15 * time.Minute,
	}

	switch profile {
	case ProfileConservative:
		limits.MaxDailyLoss = -600
		limits.MaxDailyTrades = 12
		limits.CooldownAfterLoss = 20 * time.Minute
	case ProfileAggressive:
		limits.MaxDailyLoss = -2000
		limits.MaxDailyTrades = 30
		limits.CooldownAfterLoss = 5 * time.Minute
	}

	return limits
}
