// Package tuner searches the factor-weight simplex for weight tables that
// improve backtest performance. Tuning is an offline batch operation and
// never runs on the live prediction path.
package tuner

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/gridiron-engine/internal/backtest"
	"github.com/yourusername/gridiron-engine/internal/engine"
	"github.com/yourusername/gridiron-engine/internal/models"
)

// Objective selects the score a candidate weight table is judged by
type Objective string

// Tuning objectives. Scores are oriented so higher is always better; spread
// error is folded through 1/(1+err).
const (
	ObjectiveHitRate     Objective = "hit_rate"
	ObjectiveSpreadError Objective = "spread_error"
	ObjectiveBlend       Objective = "blend"
)

// Config bounds the weight search
type Config struct {
	Objective  Objective
	BlendAlpha float64 // hit-rate share of the blend objective
	// MaxIterations caps coordinate-descent sweeps over the seven weights.
	MaxIterations int
	// Step is the initial per-weight perturbation, halved each sweep.
	Step float64
	// Tolerance is the minimum score improvement for a sweep to count as
	// progress; below it the search is converged.
	Tolerance float64
}

// DefaultConfig returns a bounded search configuration
func DefaultConfig() Config {
	return Config{
		Objective:     ObjectiveHitRate,
		BlendAlpha:    0.7,
		MaxIterations: 10,
		Step:          0.05,
		Tolerance:     1e-4,
	}
}

// Result reports the outcome of a tuning run. BestWeights is always
// populated, including on cancellation, so partial progress is preserved.
type Result struct {
	BestWeights   engine.WeightTable `json:"best_weights"`
	BestScore     float64            `json:"best_score"`
	BaselineScore float64            `json:"baseline_score"`
	Evaluations   int                `json:"evaluations"`
	Iterations    int                `json:"iterations"`
	Converged     bool               `json:"converged"`
	Cancelled     bool               `json:"cancelled"`
}

// Tuner evaluates candidate weight tables via full backtest cycles
type Tuner struct {
	contexts backtest.ContextFunc
	logger   *logrus.Logger
	workers  int
}

// New creates a tuner. contexts builds pre-kickoff factor contexts for the
// historical games under evaluation.
func New(contexts backtest.ContextFunc, logger *logrus.Logger) *Tuner {
	if logger == nil {
		logger = logrus.New()
	}
	return &Tuner{contexts: contexts, logger: logger}
}

// SetWorkers overrides the per-candidate backtest worker pool size
func (t *Tuner) SetWorkers(n int) {
	if n > 0 {
		t.workers = n
	}
}

// Tune searches the weight simplex by seeded candidates followed by bounded
// coordinate descent. Cancellation is checked at every candidate boundary and
// returns the best weights found so far.
func (t *Tuner) Tune(ctx context.Context, games []*models.Game, current engine.WeightTable, cfg Config) (*Result, error) {
	if err := current.Validate(); err != nil {
		return nil, err
	}
	if countCompleted(games) == 0 {
		return nil, fmt.Errorf("tuning requires completed games: %w", models.ErrEmptyBatch)
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultConfig().MaxIterations
	}
	if cfg.Step <= 0 {
		cfg.Step = DefaultConfig().Step
	}

	result := &Result{BestWeights: current}

	baseline, err := t.evaluate(ctx, games, current, cfg)
	if err != nil {
		return nil, err
	}
	result.Evaluations++
	result.BaselineScore = baseline
	result.BestScore = baseline

	// Seeded candidates mirroring known-reasonable distributions.
	for _, candidate := range seedCandidates() {
		if ctx.Err() != nil {
			result.Cancelled = true
			return result, nil
		}
		score, err := t.evaluate(ctx, games, candidate, cfg)
		if err != nil {
			continue
		}
		result.Evaluations++
		if score > result.BestScore {
			result.BestScore = score
			result.BestWeights = candidate
		}
	}

	step := cfg.Step
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		result.Iterations = iter + 1
		sweepStart := result.BestScore

		for axis := 0; axis < models.FactorCount; axis++ {
			for _, direction := range []float64{step, -step} {
				if ctx.Err() != nil {
					result.Cancelled = true
					return result, nil
				}
				candidate, ok := perturb(result.BestWeights, axis, direction)
				if !ok {
					continue
				}
				score, err := t.evaluate(ctx, games, candidate, cfg)
				if err != nil {
					continue
				}
				result.Evaluations++
				if score > result.BestScore {
					result.BestScore = score
					result.BestWeights = candidate
				}
			}
		}

		if result.BestScore-sweepStart < cfg.Tolerance {
			result.Converged = true
			break
		}
		step /= 2
	}

	t.logger.WithFields(logrus.Fields{
		"baseline":    result.BaselineScore,
		"best":        result.BestScore,
		"evaluations": result.Evaluations,
		"converged":   result.Converged,
	}).Info("Weight tuning complete")

	return result, nil
}

// evaluate runs a full backtest + summarize cycle for one candidate. The
// candidate must satisfy the normalization invariant before evaluation.
func (t *Tuner) evaluate(ctx context.Context, games []*models.Game, candidate engine.WeightTable, cfg Config) (float64, error) {
	if err := candidate.Validate(); err != nil {
		return 0, err
	}

	store, err := engine.NewStore(candidate)
	if err != nil {
		return 0, err
	}
	generator, err := engine.NewGenerator(store, quietLogger())
	if err != nil {
		return 0, err
	}
	runner, err := backtest.NewRunner(generator, t.contexts, quietLogger())
	if err != nil {
		return 0, err
	}
	if t.workers > 0 {
		generator.SetWorkers(t.workers)
		runner.SetWorkers(t.workers)
	}

	run, err := runner.Run(ctx, games)
	if err != nil {
		return 0, err
	}
	summary := backtest.SummarizeRun(run)
	if !summary.HasData() {
		return 0, fmt.Errorf("candidate produced no scorable results")
	}
	return score(summary, cfg), nil
}

func score(summary *models.PerformanceSummary, cfg Config) float64 {
	spreadScore := 1.0 / (1.0 + summary.MeanAbsSpreadError)
	switch cfg.Objective {
	case ObjectiveSpreadError:
		return spreadScore
	case ObjectiveBlend:
		alpha := cfg.BlendAlpha
		if alpha <= 0 || alpha > 1 {
			alpha = DefaultConfig().BlendAlpha
		}
		return alpha*summary.HitRate + (1-alpha)*spreadScore
	default:
		return summary.HitRate
	}
}

// perturb shifts one weight and renormalizes the table back onto the simplex
func perturb(table engine.WeightTable, axis int, delta float64) (engine.WeightTable, bool) {
	values := table.Values()
	values[axis] += delta
	if values[axis] < 0 {
		return engine.WeightTable{}, false
	}
	candidate := engine.FromValues(values).Normalized()
	if err := candidate.Validate(); err != nil {
		return engine.WeightTable{}, false
	}
	return candidate, true
}

// seedCandidates returns the balanced, strength-heavy and history-heavy
// starting distributions.
func seedCandidates() []engine.WeightTable {
	return []engine.WeightTable{
		engine.DefaultWeights(),
		{
			TeamStrength: 0.45, HeadToHead: 0.15, HomeAdvantage: 0.15,
			Weather: 0.08, RecentForm: 0.10, Injuries: 0.04, RestTravel: 0.03,
		},
		{
			TeamStrength: 0.30, HeadToHead: 0.30, HomeAdvantage: 0.15,
			Weather: 0.08, RecentForm: 0.10, Injuries: 0.04, RestTravel: 0.03,
		},
	}
}

func countCompleted(games []*models.Game) int {
	count := 0
	for _, g := range games {
		if g != nil && g.IsCompleted() {
			count++
		}
	}
	return count
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
