package engine

import (
	"errors"
	"math"

	"github.com/yourusername/gridiron-engine/internal/models"
)

// AlgorithmVersion tags every prediction with the scoring algorithm revision
const AlgorithmVersion = "1.0"

// Confidence curve constants. The aggregate score s in [-1,1] maps to
// confidence via a scaled logistic:
//
//	confidence = floor + (ceiling-floor) * (2/(1+e^(-slope*|s|)) - 1)
//
// which is monotonic in |s|, equals the coin-flip floor at s=0 and approaches
// the ceiling asymptotically. The same score maps linearly to a predicted
// point spread through pointsPerScoreUnit.
const (
	ConfidenceFloor   = 50.0
	ConfidenceCeiling = 95.0
	confidenceSlope   = 4.0

	pointsPerScoreUnit = 20.0
)

// ErrEmptyFactorSet is returned when aggregation receives no factors
var ErrEmptyFactorSet = errors.New("factor set is empty")

// Aggregate combines weighted factor values into a home-relative predicted
// margin and a confidence in [ConfidenceFloor, ConfidenceCeiling]. The weight
// table must satisfy the normalization invariant.
func Aggregate(factorSet []models.Factor, weights *WeightTable) (margin float64, confidence float64, err error) {
	if len(factorSet) == 0 {
		return 0, 0, ErrEmptyFactorSet
	}
	if weights == nil {
		return 0, 0, &models.WeightNormalizationError{Sum: 0}
	}
	if err := weights.Validate(); err != nil {
		return 0, 0, err
	}

	score := Score(factorSet, weights)
	return score * pointsPerScoreUnit, ConfidenceForScore(score), nil
}

// Score computes the weighted sum of normalized factor values
func Score(factorSet []models.Factor, weights *WeightTable) float64 {
	score := 0.0
	for _, f := range factorSet {
		score += weights.ForFactor(f.Name) * f.Normalized
	}
	return score
}

// ConfidenceForScore maps an aggregate score to the bounded confidence scale
func ConfidenceForScore(score float64) float64 {
	magnitude := math.Abs(score)
	logistic := 2.0/(1.0+math.Exp(-confidenceSlope*magnitude)) - 1.0
	return ConfidenceFloor + (ConfidenceCeiling-ConfidenceFloor)*logistic
}

// applyWeights stamps the snapshot's weights onto factor copies so persisted
// predictions carry the exact weights used at evaluation time.
func applyWeights(factorSet []models.Factor, weights *WeightTable) []models.Factor {
	out := make([]models.Factor, len(factorSet))
	for i, f := range factorSet {
		f.Weight = weights.ForFactor(f.Name)
		out[i] = f
	}
	return out
}
