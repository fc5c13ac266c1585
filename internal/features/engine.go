// Package features computes the model's named feature map from a bar
// history. The formulas mirror the training pipeline; any value the math
// cannot define yet (short windows, division artifacts) is zeroed rather
// than passed through as NaN.
package features

import (
	"context"
	"fmt"
	"math"

	"paperTrader/config"
	"paperTrader/internal/domain"
	"paperTrader/internal/ports"
)

const (
	minBars   = 100
	atrPeriod = 14
	rsiPeriod = 14
	eps       = 1e-6
)

// Engine computes live features. Safe for concurrent use; it holds only
// read-only session-timing parameters.
type Engine struct {
	hours config.TradingHours
}

// NewEngine creates a feature engine. The trading hours drive the
// time-of-day features.
func NewEngine(hours config.TradingHours) *Engine {
	return &Engine{hours: hours}
}

// MinBars is the minimum history length Compute accepts.
func (e *Engine) MinBars() int { return minBars }

// Compute derives the feature map from bars ordered oldest to newest.
// Returns ports.ErrInsufficientData when the history is too short.
func (e *Engine) Compute(ctx context.Context, bars []*domain.Bar) (map[string]float64, error) {
	if len(bars) < minBars {
		return nil, fmt.Errorf("%w: need %d bars, got %d", ports.ErrInsufficientData, minBars, len(bars))
	}

	n := len(bars)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	volume := make([]float64, n)
	for i, b := range bars {
		open[i] = b.Open
		high[i] = b.High
		low[i] = b.Low
		close[i] = b.Close
		volume[i] = b.Volume
	}

	f := make(map[string]float64, 40)

	// ATR percent: simple rolling mean of the true range.
	tr := trueRange(high, low, close)
	atr := rollingMean(tr, atrPeriod)
	atrPct := make([]float64, n)
	for i := range atrPct {
		atrPct[i] = atr[i] / close[i] * 100
	}
	f["atr_pct"] = last(atrPct)

	// RSI and its slope.
	rsi := relativeStrength(close)
	f["rsi"] = last(rsi)
	f["rsi_slope"] = last(diff(rsi, 1))

	// EMAs.
	ema9 := ema(close, 9)
	ema21 := ema(close, 21)
	ema50 := ema(close, 50)
	f["ema_9"] = last(ema9)
	f["ema_21"] = last(ema21)
	f["ema_50"] = last(ema50)

	// Log returns.
	idxRet := nanSlice(n)
	for i := 1; i < n; i++ {
		idxRet[i] = math.Log(close[i] / close[i-1])
	}
	f["idx_ret"] = last(idxRet)
	f["idx_ret_3"] = last(rollingSum(idxRet, 3))

	// Index-context placeholders: the live loop trades without a benchmark
	// feed, exactly as the model was trained.
	f["excess_ret"] = 0
	f["excess_ret_ema3"] = 0
	f["rolling_beta"] = 1.0

	// Volatility regime.
	atrMean := rollingMean(atrPct, 100)
	atrStd := rollingStd(atrPct, 100)
	f["atrpct_z"] = (last(atrPct) - last(atrMean)) / (last(atrStd) + eps)
	atrSlope := diff(atrPct, 5)
	f["atrpct_slope"] = last(atrSlope)
	f["atrpct_accel"] = last(diff(atrSlope, 5))

	// Time of day, as the fraction of the venue session elapsed.
	frac := e.sessionFraction(bars[n-1])
	f["tod_fraction"] = frac
	f["tod_sin"] = math.Sin(2 * math.Pi * frac)
	f["tod_cos"] = math.Cos(2 * math.Pi * frac)

	// VWAP distance.
	typicalVol := make([]float64, n)
	for i := range typicalVol {
		typicalVol[i] = (high[i] + low[i] + close[i]) / 3 * volume[i]
	}
	vwapNum := rollingSum(typicalVol, 20)
	vwapDen := rollingSum(volume, 20)
	vwapDist := nanSlice(n)
	for i := range vwapDist {
		vwap := vwapNum[i] / vwapDen[i]
		vwapDist[i] = (close[i] - vwap) / (vwap + eps)
	}
	f["vwap_dist"] = last(vwapDist)
	f["vwap_dist_change"] = last(diff(vwapDist, 1))

	// Volume behaviour.
	volMean := rollingMean(volume, 20)
	volStd := rollingStd(volume, 20)
	f["vol_zscore"] = (last(volume) - last(volMean)) / (last(volStd) + eps)
	volRatio := nanSlice(n)
	for i := range volRatio {
		volRatio[i] = volume[i] / (volMean[i] + eps)
	}
	f["vol_ratio"] = last(volRatio)
	f["volume_ratio"] = f["vol_ratio"]
	f["vol_trend"] = last(ema(volRatio, 10)) - 1
	volEMA9 := ema(volume, 9)
	f["volume_momentum"] = (last(volume) - last(volEMA9)) / (last(volEMA9) + eps)

	// Trend regime from EMA divergence.
	emaDiv := make([]float64, n)
	for i := range emaDiv {
		emaDiv[i] = (ema21[i] - ema50[i]) / (close[i] + eps)
	}
	divMean := rollingMean(emaDiv, 100)
	divStd := rollingStd(emaDiv, 100)
	emaDivZ := (last(emaDiv) - last(divMean)) / (last(divStd) + eps)
	f["ema_div"] = last(emaDiv)
	f["ema_div_z"] = emaDivZ
	f["trend_regime"] = emaDivZ * sign(last(ema21)-last(ema50))

	// Close location value within the bar.
	clv := make([]float64, n)
	for i := range clv {
		clv[i] = ((close[i] - low[i]) - (high[i] - close[i])) / (high[i] - low[i] + eps)
	}
	f["clv"] = last(clv)
	f["clv_sum3"] = last(rollingSum(clv, 3))

	// Candle anatomy of the latest bar.
	i := n - 1
	f["bar_range"] = (high[i] - low[i]) / (close[i] + eps)
	f["bar_body"] = math.Abs(close[i]-open[i]) / (close[i] + eps)
	f["upper_wick"] = (high[i] - math.Max(open[i], close[i])) / (close[i] + eps)
	f["lower_wick"] = (math.Min(open[i], close[i]) - low[i]) / (close[i] + eps)

	// Zero-fill anything the windows could not define.
	for k, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			f[k] = 0
		}
	}

	return f, nil
}

// trueRange computes the per-bar true range; the first bar falls back to
// its own high-low span.
func trueRange(high, low, close []float64) []float64 {
	tr := make([]float64, len(high))
	tr[0] = high[0] - low[0]
	for i := 1; i < len(high); i++ {
		hl := high[i] - low[i]
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// relativeStrength computes RSI over rolling mean gains/losses.
func relativeStrength(close []float64) []float64 {
	delta := diff(close, 1)
	gains := nanSlice(len(close))
	losses := nanSlice(len(close))
	for i := 1; i < len(close); i++ {
		if delta[i] > 0 {
			gains[i] = delta[i]
			losses[i] = 0
		} else {
			gains[i] = 0
			losses[i] = -delta[i]
		}
	}
	gainAvg := rollingMean(gains, rsiPeriod)
	lossAvg := rollingMean(losses, rsiPeriod)
	rsi := nanSlice(len(close))
	for i := range rsi {
		if math.IsNaN(gainAvg[i]) || math.IsNaN(lossAvg[i]) {
			continue
		}
		rs := gainAvg[i] / (lossAvg[i] + 1e-10)
		rsi[i] = 100 - 100/(1+rs)
	}
	return rsi
}

func (e *Engine) sessionFraction(bar *domain.Bar) float64 {
	total := e.hours.SessionMinutes()
	if total <= 0 {
		return 0
	}
	return float64(e.hours.MinutesIntoSession(bar.Timestamp)) / float64(total)
}
