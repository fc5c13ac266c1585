package ports

import (
	"context"

	"paperTrader/internal/domain"
)

// TradeLog is the append-only sink for closed-trade records. Delivery is
// at-least-once; there is no dedup key.
type TradeLog interface {
	Append(ctx context.Context, rec domain.TradeRecord) error
}

// TradeRepository stores closed trades durably and answers the queries the
// session needs at startup and shutdown.
type TradeRepository interface {
	// CreateTrade saves a closed-trade record.
	CreateTrade(ctx context.Context, rec domain.TradeRecord) error

	// CountToday counts trades entered today, across all symbols. Used to
	// seed the daily trade counter after a mid-day restart.
	CountToday(ctx context.Context) (int, error)

	// FindBySymbol retrieves the most recent trades for a symbol, newest
	// first, up to limit.
	FindBySymbol(ctx context.Context, symbol string, limit int) ([]domain.TradeRecord, error)
}
