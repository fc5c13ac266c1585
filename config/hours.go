package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a local wall-clock time of day, stored as minutes after
// midnight. Comparisons are date-agnostic, matching how the trading-hours
// boundaries are configured ("09:15", "15:30").
type ClockTime int

// ParseClockTime parses an "HH:MM" string.
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q: want HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in clock time %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in clock time %q", s)
	}
	return ClockTime(hour*60 + minute), nil
}

// ClockTimeOf truncates a timestamp to its local minute of day.
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// TradingHours holds the wall-clock boundaries of one trading day.
// MarketOpen <= TradingStart <= TradingEnd <= MarketClose.
type TradingHours struct {
	MarketOpen   ClockTime // Venue opens
	TradingStart ClockTime // First minute the bot may trade
	TradingEnd   ClockTime // Last minute the bot may trade
	MarketClose  ClockTime // Venue closes; triggers end-of-day
}

// InTradingWindow reports whether now falls inside the bot's active window.
// Both boundaries are inclusive.
func (h TradingHours) InTradingWindow(now time.Time) bool {
	c := ClockTimeOf(now)
	return c >= h.TradingStart && c <= h.TradingEnd
}

// AtOrPastClose reports whether now has reached the market close.
func (h TradingHours) AtOrPastClose(now time.Time) bool {
	return ClockTimeOf(now) >= h.MarketClose
}

// SessionMinutes is the venue session length, used for time-of-day features.
func (h TradingHours) SessionMinutes() int {
	return int(h.MarketClose - h.MarketOpen)
}

// MinutesIntoSession returns how far into the venue session now is, clamped
// to [0, SessionMinutes].
func (h TradingHours) MinutesIntoSession(now time.Time) int {
	m := int(ClockTimeOf(now) - h.MarketOpen)
	if m < 0 {
		return 0
	}
	if max := h.SessionMinutes(); m > max {
		return max
	}
	return m
}
