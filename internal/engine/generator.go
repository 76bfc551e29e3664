package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/gridiron-engine/internal/factors"
	"github.com/yourusername/gridiron-engine/internal/models"
)

// Generator orchestrates factor evaluation and aggregation for games
type Generator struct {
	evaluators []factors.Evaluator
	store      *Store
	logger     *logrus.Logger
	workers    int
}

// NewGenerator creates a prediction generator bound to a weight store
func NewGenerator(store *Store, logger *logrus.Logger) (*Generator, error) {
	if store == nil {
		return nil, fmt.Errorf("weight store is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Generator{
		evaluators: factors.Ordered(),
		store:      store,
		logger:     logger,
		workers:    runtime.NumCPU(),
	}, nil
}

// SetWorkers overrides the batch worker pool size
func (g *Generator) SetWorkers(n int) {
	if n > 0 {
		g.workers = n
	}
}

// Predict generates a prediction for a single upcoming game using the current
// weight snapshot.
func (g *Generator) Predict(game *models.Game, fctx *factors.Context) (*models.Prediction, error) {
	return g.predictWith(game, fctx, g.store.Snapshot())
}

// PredictWith generates a prediction against a caller-pinned weight snapshot.
// Batch callers take one snapshot up front so a table published mid-run never
// splits a batch across weight versions.
func (g *Generator) PredictWith(game *models.Game, fctx *factors.Context, weights *WeightTable) (*models.Prediction, error) {
	if weights == nil {
		weights = g.store.Snapshot()
	}
	return g.predictWith(game, fctx, weights)
}

// WeightSnapshot returns the current published weight table
func (g *Generator) WeightSnapshot() *WeightTable {
	return g.store.Snapshot()
}

func (g *Generator) predictWith(game *models.Game, fctx *factors.Context, weights *WeightTable) (*models.Prediction, error) {
	if game == nil {
		return nil, &models.InvalidGameStateError{Reason: "game is nil"}
	}
	if !game.HasTeams() {
		return nil, &models.InvalidGameStateError{GameID: game.ExternalID, Status: game.Status, Reason: "matchup teams unresolved"}
	}
	if !game.IsUpcoming() {
		return nil, &models.InvalidGameStateError{GameID: game.ExternalID, Status: game.Status}
	}
	if fctx == nil {
		fctx = &factors.Context{AsOf: game.Kickoff}
	}

	evaluated := make([]models.Factor, 0, len(g.evaluators))
	for _, evaluate := range g.evaluators {
		evaluated = append(evaluated, evaluate(game, fctx))
	}

	margin, confidence, err := Aggregate(evaluated, weights)
	if err != nil {
		return nil, err
	}

	winner := models.SideHome
	winnerTeam := game.HomeTeam.Name
	if margin < 0 {
		winner = models.SideAway
		winnerTeam = game.AwayTeam.Name
	}

	return &models.Prediction{
		ID:               uuid.New(),
		GameID:           game.ID,
		HomeTeam:         game.HomeTeam.Name,
		AwayTeam:         game.AwayTeam.Name,
		PredictedWinner:  winner,
		WinnerTeam:       winnerTeam,
		Confidence:       confidence,
		SpreadPrediction: margin,
		Factors:          applyWeights(evaluated, weights),
		AggregateScore:   Score(evaluated, weights),
		AlgorithmVersion: AlgorithmVersion,
		WeightsVersion:   weights.Version,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// BatchInput pairs a game with its pre-built factor context
type BatchInput struct {
	Game    *models.Game
	Context *factors.Context
}

// BatchFailure records a per-game error isolated from the rest of the batch
type BatchFailure struct {
	GameID string `json:"game_id"`
	Err    error  `json:"-"`
	Reason string `json:"reason"`
}

// BatchResult carries the outcome of a batch prediction run. A cancelled
// batch returns the predictions computed so far plus a skip count rather than
// an error.
type BatchResult struct {
	Predictions []*models.Prediction
	Failures    []BatchFailure
	Skipped     int
	Elapsed     time.Duration
}

// PredictAll generates predictions for a batch of games on a bounded worker
// pool. Games are independent, so evaluation order carries no meaning; results
// are returned in input order. The whole batch reads one weight snapshot taken
// at batch start.
func (g *Generator) PredictAll(ctx context.Context, inputs []BatchInput) BatchResult {
	start := time.Now()
	weights := g.store.Snapshot()

	type slot struct {
		prediction *models.Prediction
		failure    *BatchFailure
		skipped    bool
	}
	slots := make([]slot, len(inputs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < g.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					slots[i].skipped = true
					continue
				}
				input := inputs[i]
				prediction, err := g.predictWith(input.Game, input.Context, weights)
				if err != nil {
					slots[i].failure = &BatchFailure{
						GameID: externalID(input.Game),
						Err:    err,
						Reason: err.Error(),
					}
					continue
				}
				slots[i].prediction = prediction
			}
		}()
	}

dispatch:
	for i := range inputs {
		select {
		case <-ctx.Done():
			for j := i; j < len(inputs); j++ {
				slots[j].skipped = true
			}
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	result := BatchResult{Elapsed: time.Since(start)}
	for _, s := range slots {
		switch {
		case s.prediction != nil:
			result.Predictions = append(result.Predictions, s.prediction)
		case s.failure != nil:
			result.Failures = append(result.Failures, *s.failure)
		case s.skipped:
			result.Skipped++
		}
	}

	g.logger.WithFields(logrus.Fields{
		"games":     len(inputs),
		"predicted": len(result.Predictions),
		"failed":    len(result.Failures),
		"skipped":   result.Skipped,
		"elapsed":   result.Elapsed,
	}).Info("Batch prediction complete")

	return result
}

func externalID(game *models.Game) string {
	if game == nil {
		return ""
	}
	return game.ExternalID
}
