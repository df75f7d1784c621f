package service

import "math"

// ScoringConfig holds the weights that turn raw retrieval counts into a
// confidence score.
type ScoringConfig struct {
	// SymbolicWeight multiplies the raw section count from the case type
	// query path.
	SymbolicWeight float64
	// NeuralWeight multiplies the raw section count from the fulltext query
	// path.
	NeuralWeight float64
	// Divisor normalizes the weighted sum into the unit range.
	Divisor float64
}

// DefaultScoringConfig favors the symbolic path 70/30 over the fulltext path
// and saturates at ten weighted results.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		SymbolicWeight: 0.7,
		NeuralWeight:   0.3,
		Divisor:        10,
	}
}

// Score converts the raw pre-merge result counts of the two query paths into
// a confidence in [0, 1], rounded to two decimals. Counts are taken before
// deduplication so overlapping paths reinforce rather than cancel.
func (c ScoringConfig) Score(symbolicCount, neuralCount int) float64 {
	weighted := (float64(symbolicCount)*c.SymbolicWeight + float64(neuralCount)*c.NeuralWeight) / c.Divisor
	return math.Min(1.0, round2(weighted))
}

// round2 rounds half away from zero to two decimal places.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
