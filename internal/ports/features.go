package ports

import (
	"context"

	"paperTrader/internal/domain"
)

// FeatureEngine computes the named feature map the model scores from a bar
// history. Implementations return ErrInsufficientData when the history is
// too short and zero-fill any NaN/Inf values.
type FeatureEngine interface {
	// MinBars is the minimum history length Compute accepts.
	MinBars() int

	// Compute derives the feature map from bars ordered oldest to newest.
	Compute(ctx context.Context, bars []*domain.Bar) (map[string]float64, error)
}
