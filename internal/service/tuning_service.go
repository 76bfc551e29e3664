package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/gridiron-engine/internal/engine"
	"github.com/yourusername/gridiron-engine/internal/metrics"
	"github.com/yourusername/gridiron-engine/internal/models"
	"github.com/yourusername/gridiron-engine/internal/repository"
	"github.com/yourusername/gridiron-engine/internal/tuner"
)

// TuningReport bundles a tuning run with factor importance analysis.
type TuningReport struct {
	Result     *tuner.Result            `json:"result"`
	Importance []tuner.FactorImportance `json:"importance,omitempty"`
	Published  bool                     `json:"published"`
}

// TuningService searches for better weight tables over stored history and
// optionally publishes the winner.
type TuningService struct {
	repos   *repository.Repositories
	store   *engine.Store
	builder *ContextBuilder
	workers int
	logger  *logrus.Logger
}

// NewTuningService creates a tuning service
func NewTuningService(
	repos *repository.Repositories,
	store *engine.Store,
	builder *ContextBuilder,
	logger *logrus.Logger,
) *TuningService {
	return &TuningService{
		repos:   repos,
		store:   store,
		builder: builder,
		logger:  logger,
	}
}

// SetWorkers overrides the per-evaluation worker count
func (s *TuningService) SetWorkers(n int) {
	s.workers = n
}

// Tune searches for weights over completed games in the window. When publish
// is set and the search improved on the baseline, the winning table is
// published to the store and recorded in weight history.
func (s *TuningService) Tune(ctx context.Context, start, end time.Time, cfg tuner.Config, publish bool) (*TuningReport, error) {
	games, err := s.repos.Game.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load games for tuning: %w", err)
	}

	t := tuner.New(s.builder.Build, s.logger)
	if s.workers > 0 {
		t.SetWorkers(s.workers)
	}

	current := *s.store.Snapshot()
	result, err := t.Tune(ctx, games, current, cfg)
	if err != nil {
		return nil, err
	}

	metrics.RecordTunerEvaluations(result.Evaluations)

	report := &TuningReport{Result: result}

	importance, err := t.AnalyzeImportance(ctx, games, result.BestWeights, cfg)
	if err != nil {
		s.logger.WithError(err).Warn("Factor importance analysis failed")
	} else {
		report.Importance = importance
	}

	if publish && result.BestScore > result.BaselineScore {
		published, err := s.store.Publish(result.BestWeights)
		if err != nil {
			return nil, fmt.Errorf("failed to publish tuned weights: %w", err)
		}

		entry := &models.WeightHistory{
			ID:        uuid.New(),
			Version:   published.Version,
			Weights:   weightsByFactor(published),
			Source:    "tuner",
			Objective: string(cfg.Objective),
			Score:     result.BestScore,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.repos.WeightHistory.Insert(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to record weight history: %w", err)
		}

		metrics.UpdateWeights(published.Version, entry.Weights)
		report.Published = true

		s.logger.WithFields(logrus.Fields{
			"version":  published.Version,
			"score":    result.BestScore,
			"baseline": result.BaselineScore,
		}).Info("Published tuned weight table")
	}

	return report, nil
}

// weightsByFactor flattens a weight table into a factor-name map
func weightsByFactor(table *engine.WeightTable) map[string]float64 {
	values := table.Values()
	names := models.FactorNames()
	out := make(map[string]float64, len(names))
	for i, name := range names {
		out[string(name)] = values[i]
	}
	return out
}
