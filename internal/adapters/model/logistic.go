// Package model loads the pre-trained classifier artifact and scores
// feature vectors. The artifact is a JSON export of the trained logistic
// model: the ordered feature columns, a weight per column, and the
// intercept.
package model

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"paperTrader/internal/ports"
)

type artifact struct {
	Version     string             `json:"version"`
	FeatureCols []string           `json:"feature_cols"`
	Weights     map[string]float64 `json:"weights"`
	Intercept   float64            `json:"intercept"`
}

// LogisticScorer implements ports.Scorer with a logistic regression loaded
// from disk. Immutable after Load.
type LogisticScorer struct {
	version     string
	featureCols []string
	weights     []float64 // Aligned with featureCols
	intercept   float64
}

// Load reads and validates the model artifact. A missing or malformed
// artifact is a fatal startup condition: the session must not start
// without a validated model and feature-column list.
func Load(path string) (*LogisticScorer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read model artifact %s: %v", ports.ErrModelNotLoaded, path, err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("%w: parse model artifact %s: %v", ports.ErrModelNotLoaded, path, err)
	}
	if len(art.FeatureCols) == 0 {
		return nil, fmt.Errorf("%w: artifact %s has no feature columns", ports.ErrModelNotLoaded, path)
	}

	weights := make([]float64, len(art.FeatureCols))
	for i, col := range art.FeatureCols {
		w, found := art.Weights[col]
		if !found {
			return nil, fmt.Errorf("%w: artifact %s missing weight for column %q", ports.ErrModelNotLoaded, path, col)
		}
		weights[i] = w
	}

	return &LogisticScorer{
		version:     art.Version,
		featureCols: art.FeatureCols,
		weights:     weights,
		intercept:   art.Intercept,
	}, nil
}

// Version returns the artifact's version tag.
func (s *LogisticScorer) Version() string { return s.version }

// FeatureColumns returns the model's trained feature column order.
func (s *LogisticScorer) FeatureColumns() []string {
	cols := make([]string, len(s.featureCols))
	copy(cols, s.featureCols)
	return cols
}

// Score produces a confidence probability in [0,1] for a vector ordered
// per FeatureColumns.
func (s *LogisticScorer) Score(ctx context.Context, features []float64) (float64, error) {
	if len(features) != len(s.weights) {
		return 0, fmt.Errorf("feature vector length %d does not match model columns %d", len(features), len(s.weights))
	}

	z := s.intercept
	for i, x := range features {
		z += s.weights[i] * x
	}
	return 1 / (1 + math.Exp(-z)), nil
}
