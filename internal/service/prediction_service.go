package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/gridiron-engine/internal/backtest"
	"github.com/yourusername/gridiron-engine/internal/engine"
	"github.com/yourusername/gridiron-engine/internal/metrics"
	"github.com/yourusername/gridiron-engine/internal/models"
	"github.com/yourusername/gridiron-engine/internal/repository"
)

const defaultUpcomingLimit = 100

// PredictionService generates, persists and serves predictions.
type PredictionService struct {
	repos     *repository.Repositories
	generator *engine.Generator
	store     *engine.Store
	builder   *ContextBuilder
	cache     *gocache.Cache
	logger    *logrus.Logger
}

// NewPredictionService creates a prediction service. cacheTTL bounds how long
// performance summaries are served from cache.
func NewPredictionService(
	repos *repository.Repositories,
	generator *engine.Generator,
	store *engine.Store,
	builder *ContextBuilder,
	cacheTTL time.Duration,
	logger *logrus.Logger,
) *PredictionService {
	return &PredictionService{
		repos:     repos,
		generator: generator,
		store:     store,
		builder:   builder,
		cache:     gocache.New(cacheTTL, 2*cacheTTL),
		logger:    logger,
	}
}

// PredictUpcoming generates and persists predictions for scheduled games.
// Per-game failures are isolated; the batch always returns what succeeded.
func (s *PredictionService) PredictUpcoming(ctx context.Context, limit int) (*engine.BatchResult, error) {
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}

	games, err := s.repos.Game.GetUpcoming(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming games: %w", err)
	}
	if len(games) == 0 {
		s.logger.Info("No upcoming games to predict")
		return &engine.BatchResult{}, nil
	}

	inputs := make([]engine.BatchInput, 0, len(games))
	for _, game := range games {
		fctx, err := s.builder.Build(ctx, game, time.Now().UTC())
		if err != nil {
			return nil, fmt.Errorf("failed to build context for game %s: %w", game.ExternalID, err)
		}
		inputs = append(inputs, engine.BatchInput{Game: game, Context: fctx})
	}

	result := s.generator.PredictAll(ctx, inputs)

	if len(result.Predictions) > 0 {
		if err := s.repos.Prediction.InsertBatch(ctx, result.Predictions); err != nil {
			return nil, fmt.Errorf("failed to persist predictions: %w", err)
		}
	}

	metrics.RecordPredictionBatch(len(result.Predictions), len(result.Failures), result.Elapsed.Seconds())

	s.logger.WithFields(logrus.Fields{
		"predicted": len(result.Predictions),
		"failed":    len(result.Failures),
		"skipped":   result.Skipped,
		"elapsed":   result.Elapsed,
	}).Info("Prediction batch complete")

	// New predictions invalidate cached live summaries.
	s.cache.Flush()

	return &result, nil
}

// PredictGame generates and persists a prediction for one game
func (s *PredictionService) PredictGame(ctx context.Context, gameID uuid.UUID) (*models.Prediction, error) {
	game, err := s.repos.Game.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	fctx, err := s.builder.Build(ctx, game, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to build context: %w", err)
	}

	prediction, err := s.generator.Predict(game, fctx)
	if err != nil {
		return nil, err
	}

	if err := s.repos.Prediction.Insert(ctx, prediction); err != nil {
		return nil, fmt.Errorf("failed to persist prediction: %w", err)
	}

	return prediction, nil
}

// GetPredictions returns predictions created inside a window
func (s *PredictionService) GetPredictions(ctx context.Context, start, end time.Time) ([]*models.Prediction, error) {
	return s.repos.Prediction.GetByDateRange(ctx, start, end)
}

// GetLatestPrediction returns the most recent prediction for a game
func (s *PredictionService) GetLatestPrediction(ctx context.Context, gameID uuid.UUID) (*models.Prediction, error) {
	return s.repos.Prediction.GetLatestByGameID(ctx, gameID)
}

// GetPerformance returns the performance summary over stored backtest
// results in a window. Summaries are cached per window.
func (s *PredictionService) GetPerformance(ctx context.Context, start, end time.Time) (*models.PerformanceSummary, error) {
	key := performanceCacheKey(start, end)
	if cached, found := s.cache.Get(key); found {
		metrics.SummaryCacheHitsTotal.Inc()
		return cached.(*models.PerformanceSummary), nil
	}
	metrics.SummaryCacheMissesTotal.Inc()

	results, err := s.repos.BacktestResult.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load backtest results: %w", err)
	}

	summary := backtest.Summarize(results, 0, 0)
	summary.WindowStart = start
	summary.WindowEnd = end
	summary.GeneratedAt = time.Now().UTC()

	s.cache.Set(key, summary, gocache.DefaultExpiration)

	return summary, nil
}

func performanceCacheKey(start, end time.Time) string {
	return fmt.Sprintf("performance:%d:%d", start.Unix(), end.Unix())
}
