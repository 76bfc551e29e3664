package tuner

import (
	"context"

	"github.com/yourusername/gridiron-engine/internal/engine"
	"github.com/yourusername/gridiron-engine/internal/models"
)

// FactorImportance measures how much backtest score is lost when one factor
// is removed and its weight redistributed across the rest.
type FactorImportance struct {
	Factor        models.FactorName `json:"factor"`
	BaselineScore float64           `json:"baseline_score"`
	WithoutScore  float64           `json:"without_score"`
	ScoreDrop     float64           `json:"score_drop"`
}

// AnalyzeImportance runs a leave-one-out evaluation for each of the seven
// factors against the given historical games. Cancellation between factors
// returns the importances computed so far.
func (t *Tuner) AnalyzeImportance(ctx context.Context, games []*models.Game, weights engine.WeightTable, cfg Config) ([]FactorImportance, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	baseline, err := t.evaluate(ctx, games, weights, cfg)
	if err != nil {
		return nil, err
	}

	importances := make([]FactorImportance, 0, models.FactorCount)
	for axis, name := range models.FactorNames() {
		if ctx.Err() != nil {
			return importances, nil
		}
		candidate, ok := withoutFactor(weights, axis)
		if !ok {
			continue
		}
		without, err := t.evaluate(ctx, games, candidate, cfg)
		if err != nil {
			continue
		}
		importances = append(importances, FactorImportance{
			Factor:        name,
			BaselineScore: baseline,
			WithoutScore:  without,
			ScoreDrop:     baseline - without,
		})
	}
	return importances, nil
}

// withoutFactor zeroes one weight and redistributes it proportionally over
// the remaining factors.
func withoutFactor(table engine.WeightTable, axis int) (engine.WeightTable, bool) {
	values := table.Values()
	removed := values[axis]
	values[axis] = 0

	remaining := 0.0
	for _, v := range values {
		remaining += v
	}
	if remaining <= 0 {
		return engine.WeightTable{}, false
	}
	for i := range values {
		values[i] += removed * values[i] / remaining
	}

	candidate := engine.FromValues(values).Normalized()
	if err := candidate.Validate(); err != nil {
		return engine.WeightTable{}, false
	}
	return candidate, true
}
