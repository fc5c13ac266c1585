package ports

import "context"

// Scorer is the opaque predictive model. The feature vector passed to Score
// must be ordered exactly as FeatureColumns reports.
type Scorer interface {
	// FeatureColumns returns the model's trained feature column order.
	FeatureColumns() []string

	// Score produces a confidence probability in [0,1] for the vector.
	Score(ctx context.Context, features []float64) (float64, error)
}
