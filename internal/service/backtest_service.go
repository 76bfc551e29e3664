package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/gridiron-engine/internal/backtest"
	"github.com/yourusername/gridiron-engine/internal/engine"
	"github.com/yourusername/gridiron-engine/internal/metrics"
	"github.com/yourusername/gridiron-engine/internal/models"
	"github.com/yourusername/gridiron-engine/internal/repository"
)

// BacktestReport bundles a backtest run with its summary and betting
// simulation.
type BacktestReport struct {
	Run     *backtest.RunResult        `json:"-"`
	Summary *models.PerformanceSummary `json:"summary"`
	Betting backtest.BettingResult     `json:"betting"`
}

// BacktestService replays the engine over completed games and persists the
// scored results.
type BacktestService struct {
	repos     *repository.Repositories
	generator *engine.Generator
	builder   *ContextBuilder
	betting   backtest.BettingConfig
	workers   int
	persist   bool
	logger    *logrus.Logger
}

// NewBacktestService creates a backtest service. The builder must be
// constructed without a live injury provider so replayed games only see
// historical data.
func NewBacktestService(
	repos *repository.Repositories,
	generator *engine.Generator,
	builder *ContextBuilder,
	betting backtest.BettingConfig,
	logger *logrus.Logger,
) *BacktestService {
	return &BacktestService{
		repos:     repos,
		generator: generator,
		builder:   builder,
		betting:   betting,
		persist:   true,
		logger:    logger,
	}
}

// SetWorkers overrides the runner's worker count
func (s *BacktestService) SetWorkers(n int) {
	s.workers = n
}

// SetPersist controls whether replay predictions and results are stored.
// Tuning runs disable persistence.
func (s *BacktestService) SetPersist(persist bool) {
	s.persist = persist
}

// Run backtests all completed games with kickoff inside the window
func (s *BacktestService) Run(ctx context.Context, start, end time.Time) (*BacktestReport, error) {
	games, err := s.repos.Game.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load games for backtest: %w", err)
	}

	runner, err := backtest.NewRunner(s.generator, s.builder.Build, s.logger)
	if err != nil {
		return nil, err
	}
	if s.workers > 0 {
		runner.SetWorkers(s.workers)
	}

	run, err := runner.Run(ctx, games)
	if err != nil {
		return nil, err
	}

	summary := backtest.SummarizeRun(run)
	summary.WindowStart = start
	summary.WindowEnd = end
	summary.GeneratedAt = time.Now().UTC()

	if s.persist {
		if err := s.persistRun(ctx, run); err != nil {
			return nil, err
		}
	}

	metrics.RecordBacktestRun(run.Skipped+run.Unprocessed, summary.HitRate, run.Elapsed.Seconds())

	s.logger.WithFields(logrus.Fields{
		"games":    len(games),
		"scored":   len(run.Results),
		"skipped":  run.Skipped,
		"failures": len(run.Failures),
		"hit_rate": summary.HitRate,
		"elapsed":  run.Elapsed,
	}).Info("Backtest complete")

	return &BacktestReport{
		Run:     run,
		Summary: summary,
		Betting: backtest.SimulateBetting(run.Results, s.betting),
	}, nil
}

func (s *BacktestService) persistRun(ctx context.Context, run *backtest.RunResult) error {
	if len(run.Results) == 0 {
		return nil
	}

	predictions := make([]*models.Prediction, 0, len(run.Results))
	for _, res := range run.Results {
		if res.Prediction != nil {
			predictions = append(predictions, res.Prediction)
		}
	}

	if err := s.repos.Prediction.InsertBatch(ctx, predictions); err != nil {
		return fmt.Errorf("failed to persist replay predictions: %w", err)
	}
	if err := s.repos.BacktestResult.SaveBatch(ctx, run.Results); err != nil {
		return fmt.Errorf("failed to persist backtest results: %w", err)
	}

	return nil
}
