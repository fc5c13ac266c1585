package ports

import (
	"context"

	"paperTrader/internal/domain"
)

// QuoteSource defines the market-data interface the decision engine polls.
// Implementations wrap transient failures (network errors, empty payloads)
// in ErrUnavailable so callers can distinguish "skip this tick" from a
// genuine fault.
type QuoteSource interface {
	// GetCurrentBar retrieves the latest bar for a symbol.
	GetCurrentBar(ctx context.Context, symbol string) (*domain.Bar, error)

	// GetLatestBars retrieves up to n recent bars for a symbol, ordered
	// oldest to newest. The result may be shorter than n.
	GetLatestBars(ctx context.Context, symbol string, n int) ([]*domain.Bar, error)

	// IsMarketOpen reports whether the venue is currently trading.
	IsMarketOpen(ctx context.Context) (bool, error)
}
