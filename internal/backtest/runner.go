// Package backtest replays the prediction pipeline over historical games
// with known outcomes to measure accuracy and calibration.
package backtest

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/gridiron-engine/internal/engine"
	"github.com/yourusername/gridiron-engine/internal/factors"
	"github.com/yourusername/gridiron-engine/internal/models"
)

// ContextFunc builds the factor context for a game restricted to data known
// before asOf. Backtest correctness depends on implementations never exposing
// the game's own result.
type ContextFunc func(ctx context.Context, game *models.Game, asOf time.Time) (*factors.Context, error)

// Failure records a per-game error isolated from the rest of the run
type Failure struct {
	GameID string `json:"game_id"`
	Reason string `json:"reason"`
}

// RunResult carries the outcome of one backtest run. Historical datasets
// routinely contain postponed or unresolved entries, so incomplete games are
// skipped and counted rather than failing the run.
type RunResult struct {
	Results     []*models.BacktestResult `json:"results"`
	Skipped     int                      `json:"skipped"`
	Unprocessed int                      `json:"unprocessed"`
	Failures    []Failure                `json:"failures,omitempty"`
	Elapsed     time.Duration            `json:"elapsed"`
}

// Runner replays the prediction generator against completed games
type Runner struct {
	generator *engine.Generator
	contexts  ContextFunc
	logger    *logrus.Logger
	workers   int
}

// NewRunner creates a backtest runner. contexts may be nil, in which case
// games are evaluated with an empty pre-kickoff context.
func NewRunner(generator *engine.Generator, contexts ContextFunc, logger *logrus.Logger) (*Runner, error) {
	if generator == nil {
		return nil, models.ErrEmptyBatch
	}
	if logger == nil {
		logger = logrus.New()
	}
	if contexts == nil {
		contexts = func(_ context.Context, game *models.Game, asOf time.Time) (*factors.Context, error) {
			return &factors.Context{AsOf: asOf}, nil
		}
	}
	return &Runner{
		generator: generator,
		contexts:  contexts,
		logger:    logger,
		workers:   runtime.NumCPU(),
	}, nil
}

// SetWorkers overrides the worker pool size
func (r *Runner) SetWorkers(n int) {
	if n > 0 {
		r.workers = n
	}
}

// Run backtests a set of historical games. Games without a final score are
// skipped and counted. Cancellation stops scheduling further games and returns
// the results computed so far with the remainder counted as unprocessed.
// The whole run evaluates against one weight snapshot taken at start; tables
// published mid-run apply to later runs only. An empty input is an error
// rather than an empty result so callers can tell a misconfigured window from
// a window with nothing scorable.
func (r *Runner) Run(ctx context.Context, games []*models.Game) (*RunResult, error) {
	if len(games) == 0 {
		return nil, models.ErrEmptyBatch
	}
	start := time.Now()
	weights := r.generator.WeightSnapshot()

	slots := make([]replaySlot, len(games))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					slots[i].unprocessed = true
					continue
				}
				r.replayGame(ctx, games[i], weights, &slots[i])
			}
		}()
	}

dispatch:
	for i := range games {
		select {
		case <-ctx.Done():
			for j := i; j < len(games); j++ {
				slots[j].unprocessed = true
			}
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	run := &RunResult{Elapsed: time.Since(start)}
	for _, s := range slots {
		switch {
		case s.result != nil:
			run.Results = append(run.Results, s.result)
		case s.failure != nil:
			run.Failures = append(run.Failures, *s.failure)
		case s.skipped:
			run.Skipped++
		case s.unprocessed:
			run.Unprocessed++
		}
	}

	r.logger.WithFields(logrus.Fields{
		"games":       len(games),
		"scored":      len(run.Results),
		"skipped":     run.Skipped,
		"unprocessed": run.Unprocessed,
		"failures":    len(run.Failures),
		"elapsed":     run.Elapsed,
	}).Info("Backtest run complete")

	return run, nil
}

type replaySlot struct {
	result      *models.BacktestResult
	failure     *Failure
	skipped     bool
	unprocessed bool
}

func (r *Runner) replayGame(ctx context.Context, game *models.Game, weights *engine.WeightTable, s *replaySlot) {
	if game == nil || !game.IsCompleted() {
		s.skipped = true
		return
	}

	fctx, err := r.contexts(ctx, game, game.Kickoff)
	if err != nil {
		s.failure = &Failure{GameID: game.ExternalID, Reason: err.Error()}
		return
	}

	prediction, err := r.generator.PredictWith(asUpcoming(game), fctx, weights)
	if err != nil {
		s.failure = &Failure{GameID: game.ExternalID, Reason: err.Error()}
		return
	}

	result, err := models.NewBacktestResult(prediction, game)
	if err != nil {
		s.skipped = true
		return
	}
	s.result = result
}

// asUpcoming clones a completed game into the state it had before kickoff so
// the generator evaluates it blind to the outcome.
func asUpcoming(game *models.Game) *models.Game {
	clone := *game
	clone.Status = models.GameStatusScheduled
	clone.HomePoints = nil
	clone.AwayPoints = nil
	return &clone
}
