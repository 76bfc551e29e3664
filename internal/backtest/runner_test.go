package backtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/gridiron-engine/internal/engine"
	"github.com/yourusername/gridiron-engine/internal/factors"
	"github.com/yourusername/gridiron-engine/internal/models"
)

func testGenerator(t *testing.T) *engine.Generator {
	t.Helper()
	store, err := engine.NewStore(engine.DefaultWeights())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	g, err := engine.NewGenerator(store, logger)
	if err != nil {
		t.Fatalf("failed to create generator: %v", err)
	}
	return g
}

func testRunner(t *testing.T, contexts ContextFunc) *Runner {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	r, err := NewRunner(testGenerator(t), contexts, logger)
	if err != nil {
		t.Fatalf("failed to create runner: %v", err)
	}
	return r
}

func finishedGame(external string, homePoints, awayPoints int) *models.Game {
	hp, ap := homePoints, awayPoints
	return &models.Game{
		ID:         uuid.New(),
		ExternalID: external,
		Kickoff:    time.Date(2025, 10, 12, 18, 0, 0, 0, time.UTC),
		HomeTeam: &models.Team{
			ID: uuid.New(), ExternalID: external + "-h", Name: "Home", Abbreviation: "HOM",
			Wins: 7, Losses: 1, Rating: 0.8,
		},
		AwayTeam: &models.Team{
			ID: uuid.New(), ExternalID: external + "-a", Name: "Away", Abbreviation: "AWY",
			Wins: 1, Losses: 7, Rating: 0.2,
		},
		Status:     models.GameStatusCompleted,
		HomePoints: &hp,
		AwayPoints: &ap,
	}
}

func TestNewRunnerRequiresGenerator(t *testing.T) {
	if _, err := NewRunner(nil, nil, nil); err == nil {
		t.Fatal("expected error for nil generator")
	}
}

func TestRunEmptyBatch(t *testing.T) {
	r := testRunner(t, nil)
	if _, err := r.Run(context.Background(), nil); err != models.ErrEmptyBatch {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
}

func TestRunScoresCompletedGames(t *testing.T) {
	r := testRunner(t, nil)
	r.SetWorkers(2)

	games := []*models.Game{
		finishedGame("g1", 28, 14),
		finishedGame("g2", 10, 24),
		finishedGame("g3", 21, 21),
	}

	run, err := r.Run(context.Background(), games)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(run.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(run.Results))
	}

	byGame := make(map[uuid.UUID]*models.BacktestResult)
	for _, res := range run.Results {
		byGame[res.GameID] = res
	}

	homeWin := byGame[games[0].ID]
	if homeWin.ActualWinner != models.SideHome {
		t.Errorf("expected home winner, got %s", homeWin.ActualWinner)
	}
	if homeWin.ActualMargin != 14 {
		t.Errorf("expected margin 14, got %f", homeWin.ActualMargin)
	}
	// The strong home side should be picked, making this one correct.
	if !homeWin.Correct {
		t.Error("expected correct pick for dominant home side")
	}

	tie := byGame[games[2].ID]
	if tie.ActualWinner != models.SideTie {
		t.Errorf("expected tie, got %s", tie.ActualWinner)
	}
	if tie.Correct {
		t.Error("a tie can never match a home/away pick")
	}
}

func TestRunSkipsIncompleteGames(t *testing.T) {
	r := testRunner(t, nil)

	postponed := finishedGame("g2", 0, 0)
	postponed.Status = models.GameStatusPostponed
	postponed.HomePoints = nil
	postponed.AwayPoints = nil

	noScore := finishedGame("g3", 0, 0)
	noScore.HomePoints = nil

	run, err := r.Run(context.Background(), []*models.Game{
		finishedGame("g1", 17, 13),
		postponed,
		noScore,
		nil,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(run.Results) != 1 {
		t.Errorf("expected 1 result, got %d", len(run.Results))
	}
	if run.Skipped != 3 {
		t.Errorf("expected 3 skipped, got %d", run.Skipped)
	}
}

func TestRunIsolatesContextFailures(t *testing.T) {
	fails := func(_ context.Context, game *models.Game, asOf time.Time) (*factors.Context, error) {
		if game.ExternalID == "g2" {
			return nil, &models.DataUnavailableError{Factor: "head_to_head", Reason: "history query failed"}
		}
		return &factors.Context{AsOf: asOf}, nil
	}
	r := testRunner(t, fails)

	run, err := r.Run(context.Background(), []*models.Game{
		finishedGame("g1", 17, 13),
		finishedGame("g2", 20, 10),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(run.Results) != 1 {
		t.Errorf("expected 1 result, got %d", len(run.Results))
	}
	if len(run.Failures) != 1 || run.Failures[0].GameID != "g2" {
		t.Errorf("expected failure for g2, got %+v", run.Failures)
	}
}

func TestRunEvaluatesGamesBlindToOutcome(t *testing.T) {
	var mu sync.Mutex
	var asOfSeen []time.Time
	record := func(_ context.Context, game *models.Game, asOf time.Time) (*factors.Context, error) {
		mu.Lock()
		asOfSeen = append(asOfSeen, asOf)
		mu.Unlock()
		return &factors.Context{AsOf: asOf}, nil
	}
	r := testRunner(t, record)

	game := finishedGame("g1", 31, 3)
	run, err := r.Run(context.Background(), []*models.Game{game})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(run.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(run.Results))
	}

	if len(asOfSeen) != 1 || !asOfSeen[0].Equal(game.Kickoff) {
		t.Errorf("expected context built as of kickoff %v, got %v", game.Kickoff, asOfSeen)
	}
	// The replay must not mutate the stored game.
	if game.Status != models.GameStatusCompleted || game.HomePoints == nil {
		t.Error("expected original game to keep its final state")
	}
}

func TestRunPinsWeightSnapshotForWholeRun(t *testing.T) {
	store, err := engine.NewStore(engine.DefaultWeights())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	generator, err := engine.NewGenerator(store, logger)
	if err != nil {
		t.Fatalf("failed to create generator: %v", err)
	}

	// Publish a new table while each game's context is being built, so the
	// live version advances in the middle of the run.
	publishing := func(_ context.Context, _ *models.Game, asOf time.Time) (*factors.Context, error) {
		if _, err := store.Publish(engine.DefaultWeights()); err != nil {
			t.Errorf("publish failed: %v", err)
		}
		return &factors.Context{AsOf: asOf}, nil
	}

	r, err := NewRunner(generator, publishing, logger)
	if err != nil {
		t.Fatalf("failed to create runner: %v", err)
	}
	r.SetWorkers(1)

	games := []*models.Game{
		finishedGame("g1", 28, 14),
		finishedGame("g2", 10, 24),
		finishedGame("g3", 31, 3),
		finishedGame("g4", 17, 20),
	}

	run, err := r.Run(context.Background(), games)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(run.Results) != len(games) {
		t.Fatalf("expected %d results, got %d", len(games), len(run.Results))
	}

	for _, res := range run.Results {
		if res.Prediction.WeightsVersion != 1 {
			t.Errorf("game %s evaluated with weights version %d, want the run's starting snapshot 1",
				res.GameID, res.Prediction.WeightsVersion)
		}
	}
	if store.Snapshot().Version != len(games)+1 {
		t.Fatalf("expected %d publishes to land, store at version %d", len(games), store.Snapshot().Version)
	}
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := testRunner(t, nil)
	games := make([]*models.Game, 20)
	for i := range games {
		games[i] = finishedGame("g", 20, 10)
	}

	run, err := r.Run(ctx, games)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if run.Unprocessed == 0 {
		t.Error("expected cancelled run to leave games unprocessed")
	}
	if len(run.Results)+len(run.Failures)+run.Skipped+run.Unprocessed != len(games) {
		t.Error("expected every game accounted for")
	}
}
