package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paperTrader/config"
	"paperTrader/internal/domain"
	"paperTrader/internal/ports"
)

// TradingService is the session controller: the polling loop over the
// symbol set with time-of-day gating, periodic status reporting, and
// end-of-day forced liquidation. One service instance serves one trading
// day; it terminates after the end-of-day branch runs.
type TradingService struct {
	cfg       *config.Config
	logger    ports.Logger
	engine    *Engine
	session   *Session
	quotes    ports.QuoteSource
	tradeRepo ports.TradeRepository

	now func() time.Time // Injected for tests
}

// NewTradingService creates the session controller.
func NewTradingService(cfg *config.Config, logger ports.Logger, engine *Engine, session *Session, quotes ports.QuoteSource, tradeRepo ports.TradeRepository) (*TradingService, error) {
	if cfg == nil || logger == nil || engine == nil || session == nil || quotes == nil {
		return nil, fmt.Errorf("missing required dependencies for TradingService")
	}
	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("symbol universe is empty")
	}

	return &TradingService{
		cfg:       cfg,
		logger:    logger,
		engine:    engine,
		session:   session,
		quotes:    quotes,
		tradeRepo: tradeRepo,
		now:       time.Now,
	}, nil
}

// Start runs the polling loop until market close or an operator stop.
// Cancellation is a drain, not an abort: both paths run the end-of-day
// finalization (force-close, log flush, summary) before returning.
func (s *TradingService) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting paper trading session", map[string]interface{}{
		"symbols":      len(s.cfg.Symbols),
		"profile":      string(s.cfg.Profile),
		"confFloor":    s.cfg.Params.ConfThreshold,
		"maxPositions": s.cfg.Params.MaxTotalPositions,
		"positionSize": s.cfg.Params.PositionSize,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	// Seed the daily trade counter from the trade history so a mid-day
	// restart keeps the daily-trade limit honest.
	if s.tradeRepo != nil {
		count, err := s.tradeRepo.CountToday(ctx)
		if err != nil {
			return fmt.Errorf("count today's trades: %w", err)
		}
		s.session.SeedTradeCount(count)
		s.logger.Info(ctx, "Initial state synchronized", map[string]interface{}{"tradesToday": count})
	}

	for {
		if ctx.Err() != nil {
			s.logger.Info(ctx, "Shutdown requested, finalizing session")
			s.endOfDay(context.Background())
			return nil
		}

		now := s.now()
		if s.cfg.Hours.AtOrPastClose(now) {
			s.endOfDay(ctx)
			return nil
		}

		if !s.cfg.Hours.InTradingWindow(now) {
			s.logger.Debug(ctx, "Outside trading window", map[string]interface{}{"now": config.ClockTimeOf(now).String()})
			s.sleep(ctx, s.cfg.IdleInterval)
			continue
		}

		// Wall-clock hours govern; the venue check only catches holidays.
		// An errored status check does not stall the loop.
		if open, err := s.quotes.IsMarketOpen(ctx); err == nil && !open {
			s.logger.Info(ctx, "Venue reports market closed, idling")
			s.sleep(ctx, s.cfg.IdleInterval)
			continue
		}

		s.runTick(ctx)
		s.printStatus(ctx)
		s.sleep(ctx, s.cfg.PollInterval)
	}
}

// runTick processes every symbol once, in the fixed universe order so cap
// enforcement stays deterministic. A fault in one symbol is logged and the
// rest of the tick continues.
func (s *TradingService) runTick(ctx context.Context) {
	for _, symbol := range s.cfg.Symbols {
		if ctx.Err() != nil {
			return
		}
		if err := s.engine.ProcessSymbol(ctx, symbol, s.now()); err != nil {
			s.logger.Error(ctx, err, "Symbol processing failed", map[string]interface{}{"symbol": symbol})
		}
	}
}

// endOfDay force-closes every open position at its own entry price (a
// cost-only loss), records each, and logs the run summary. Always runs,
// even with zero trades.
func (s *TradingService) endOfDay(ctx context.Context) {
	now := s.now()
	s.logger.Info(ctx, "End of day: closing open positions", map[string]interface{}{"open": s.session.ActiveCount()})

	for _, pos := range s.session.DrainActive() {
		pos.Close(pos.EntryPrice, domain.ExitReasonEODClose, now)
		s.session.Settle(pos)
		s.engine.record(ctx, pos)
	}

	summary := Summarize(s.session.ClosedTrades())
	fields := map[string]interface{}{
		"trades":   summary.Trades,
		"wins":     summary.Wins,
		"winRate":  fmt.Sprintf("%.1f%%", summary.WinRate),
		"totalPnL": fmt.Sprintf("%+.2f", summary.TotalPnL),
		"avgPnL":   fmt.Sprintf("%+.2f", summary.AvgPnL),
	}
	if summary.HasProfitFactor {
		fields["profitFactor"] = fmt.Sprintf("%.2f", summary.ProfitFactor)
	}
	s.logger.Info(ctx, "End of day summary", fields)
}

func (s *TradingService) printStatus(ctx context.Context) {
	s.logger.Info(ctx, "Status", map[string]interface{}{
		"active":      s.session.ActiveCount(),
		"tradesToday": s.session.TradeCountToday(),
		"dailyPnL":    fmt.Sprintf("%+.2f", s.session.DailyPnL()),
	})
}

// sleep waits for d or until the context is cancelled.
func (s *TradingService) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
