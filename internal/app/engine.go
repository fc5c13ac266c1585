package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"paperTrader/config"
	"paperTrader/internal/domain"
	"paperTrader/internal/ids"
	"paperTrader/internal/ports"
	"paperTrader/internal/risk"
)

// Engine runs the per-symbol decision cycle: exit evaluation of open
// positions, risk gating, feature computation, scoring, and conditional
// entry. One Engine serves the whole symbol set; per-tick sequencing is
// the controller's job.
type Engine struct {
	params      config.TradingParams
	historyBars int
	logger      ports.Logger
	quotes      ports.QuoteSource
	features    ports.FeatureEngine
	scorer      ports.Scorer
	tradeLog    ports.TradeLog
	tradeRepo   ports.TradeRepository
	gate        *risk.Gate
	session     *Session
}

// EngineDeps bundles the collaborators an Engine needs.
type EngineDeps struct {
	Params      config.TradingParams
	HistoryBars int
	Logger      ports.Logger
	Quotes      ports.QuoteSource
	Features    ports.FeatureEngine
	Scorer      ports.Scorer
	TradeLog    ports.TradeLog
	TradeRepo   ports.TradeRepository
	Gate        *risk.Gate
	Session     *Session
}

// NewEngine creates a decision engine.
func NewEngine(deps EngineDeps) (*Engine, error) {
	if deps.Logger == nil || deps.Quotes == nil || deps.Features == nil ||
		deps.Scorer == nil || deps.TradeLog == nil || deps.Gate == nil || deps.Session == nil {
		return nil, fmt.Errorf("missing required dependencies for Engine")
	}
	if deps.Params.MaxTotalPositions <= 0 {
		return nil, fmt.Errorf("MaxTotalPositions must be positive")
	}
	if deps.HistoryBars < deps.Features.MinBars() {
		return nil, fmt.Errorf("history depth %d below feature minimum %d", deps.HistoryBars, deps.Features.MinBars())
	}

	return &Engine{
		params:      deps.Params,
		historyBars: deps.HistoryBars,
		logger:      deps.Logger,
		quotes:      deps.Quotes,
		features:    deps.Features,
		scorer:      deps.Scorer,
		tradeLog:    deps.TradeLog,
		tradeRepo:   deps.TradeRepo,
		gate:        deps.Gate,
		session:     deps.Session,
	}, nil
}

// ProcessSymbol runs one symbol's cycle for one polling tick. Exit checks
// for the symbol always run before any new entry for it, so one bar can
// never both close and re-open ambiguity-free. A returned error is a
// per-symbol fault the controller logs without aborting the tick.
func (e *Engine) ProcessSymbol(ctx context.Context, symbol string, now time.Time) error {
	bar, err := e.quotes.GetCurrentBar(ctx, symbol)
	if err != nil {
		if errors.Is(err, ports.ErrUnavailable) {
			// No retry within the tick; the next tick retries naturally.
			e.logger.Debug(ctx, "Quote unavailable, skipping symbol", map[string]interface{}{"symbol": symbol})
			return nil
		}
		return fmt.Errorf("current bar for %s: %w", symbol, err)
	}

	e.checkExits(ctx, symbol, bar, now)

	if allowed, reason := e.gate.Allows(now, e.session.RiskStats()); !allowed {
		e.logger.Debug(ctx, "Entries blocked by risk gate", map[string]interface{}{"symbol": symbol, "reason": reason})
		return nil
	}

	if e.session.ActiveCount() >= e.params.MaxTotalPositions {
		e.logger.Debug(ctx, "Total position cap reached", map[string]interface{}{"symbol": symbol, "cap": e.params.MaxTotalPositions})
		return nil
	}
	if e.session.ActiveCountForSymbol(symbol) >= e.params.MaxTradesPerSymbol {
		e.logger.Debug(ctx, "Per-symbol position cap reached", map[string]interface{}{"symbol": symbol, "cap": e.params.MaxTradesPerSymbol})
		return nil
	}

	history, err := e.quotes.GetLatestBars(ctx, symbol, e.historyBars)
	if err != nil {
		if errors.Is(err, ports.ErrUnavailable) {
			e.logger.Debug(ctx, "History unavailable, skipping symbol", map[string]interface{}{"symbol": symbol})
			return nil
		}
		return fmt.Errorf("bar history for %s: %w", symbol, err)
	}
	if len(history) < e.features.MinBars() {
		e.logger.Debug(ctx, "History too short for features", map[string]interface{}{"symbol": symbol, "bars": len(history), "need": e.features.MinBars()})
		return nil
	}

	feats, err := e.features.Compute(ctx, history)
	if err != nil {
		if errors.Is(err, ports.ErrInsufficientData) {
			e.logger.Debug(ctx, "Feature computation declined", map[string]interface{}{"symbol": symbol})
			return nil
		}
		return fmt.Errorf("features for %s: %w", symbol, err)
	}

	atrPct, found := feats["atr_pct"]
	if !found {
		atrPct = 1.0
	}
	if atrPct < e.params.MinATRPct {
		e.logger.Debug(ctx, "Below volatility floor", map[string]interface{}{"symbol": symbol, "atrPct": atrPct, "floor": e.params.MinATRPct})
		return nil
	}

	confidence, err := e.scorer.Score(ctx, e.vector(feats))
	if err != nil {
		return fmt.Errorf("score %s: %w", symbol, err)
	}

	if confidence < e.params.ConfThreshold {
		e.logger.Debug(ctx, "Confidence below threshold", map[string]interface{}{"symbol": symbol, "confidence": confidence, "threshold": e.params.ConfThreshold})
		return nil
	}

	pos := domain.NewPosition(ids.New(), symbol, bar.Close, now, confidence, atrPct, e.params.PositionParams())
	e.session.Open(pos)
	e.logger.Info(ctx, "Position opened", map[string]interface{}{
		"symbol":     symbol,
		"positionID": pos.ID,
		"entryPrice": pos.EntryPrice,
		"confidence": confidence,
		"stopLoss":   pos.StopLoss,
		"takeProfit": pos.TakeProfit,
	})
	return nil
}

// checkExits evaluates every open position for the symbol against the
// latest bar, settling and recording any that close.
func (e *Engine) checkExits(ctx context.Context, symbol string, bar *domain.Bar, now time.Time) {
	for _, pos := range e.session.ActiveForSymbol(symbol) {
		if pos.CheckExit(bar.Close, bar.High, bar.Low, now) {
			e.settle(ctx, pos)
		}
	}
}

// settle folds a closed position into the session and records it.
func (e *Engine) settle(ctx context.Context, pos *domain.Position) {
	e.session.Settle(pos)
	e.logger.Info(ctx, "Position closed", map[string]interface{}{
		"symbol":     pos.Symbol,
		"positionID": pos.ID,
		"exitReason": string(pos.ExitReason),
		"exitPrice":  pos.ExitPrice,
		"pnl":        pos.PNL,
		"dailyPnL":   e.session.DailyPnL(),
	})
	e.record(ctx, pos)
}

// record writes a closed position to the trade sinks. Sink failures are
// logged, not propagated: the in-memory session is authoritative and the
// log is at-least-once.
func (e *Engine) record(ctx context.Context, pos *domain.Position) {
	rec := pos.Record()
	if err := e.tradeLog.Append(ctx, rec); err != nil {
		e.logger.Error(ctx, err, "Failed to append trade record", map[string]interface{}{"positionID": pos.ID})
	}
	if e.tradeRepo != nil {
		if err := e.tradeRepo.CreateTrade(ctx, rec); err != nil {
			e.logger.Error(ctx, err, "Failed to persist trade record", map[string]interface{}{"positionID": pos.ID})
		}
	}
}

// vector orders the feature map per the model's trained column order,
// zeroing anything missing or non-finite.
func (e *Engine) vector(feats map[string]float64) []float64 {
	cols := e.scorer.FeatureColumns()
	out := make([]float64, len(cols))
	for i, col := range cols {
		v := feats[col]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		out[i] = v
	}
	return out
}
