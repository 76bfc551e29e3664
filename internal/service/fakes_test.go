package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/gridiron-engine/internal/models"
	"github.com/yourusername/gridiron-engine/internal/repository"
)

// In-memory repository fakes backing the service tests.

type fakeTeamRepo struct {
	byExternal map[string]*models.Team
	upserted   []*models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{byExternal: make(map[string]*models.Team)}
}

func (r *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error {
	r.byExternal[team.ExternalID] = team
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	for _, team := range r.byExternal {
		if team.ID == id {
			return team, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeTeamRepo) GetByExternalID(ctx context.Context, externalID string) (*models.Team, error) {
	team, ok := r.byExternal[externalID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return team, nil
}

func (r *fakeTeamRepo) GetAll(ctx context.Context) ([]*models.Team, error) {
	out := make([]*models.Team, 0, len(r.byExternal))
	for _, team := range r.byExternal {
		out = append(out, team)
	}
	return out, nil
}

func (r *fakeTeamRepo) Update(ctx context.Context, team *models.Team) error {
	r.byExternal[team.ExternalID] = team
	return nil
}

func (r *fakeTeamRepo) Upsert(ctx context.Context, team *models.Team) error {
	r.byExternal[team.ExternalID] = team
	r.upserted = append(r.upserted, team)
	return nil
}

type fakeGameRepo struct {
	byExternal    map[string]*models.Game
	created       []*models.Game
	updated       []*models.Game
	statusUpdates []models.GameStatus
	headToHead    []*models.Game
	recentByTeam  map[uuid.UUID][]*models.Game
	upcoming      []*models.Game
	inRange       []*models.Game
	queryErr      error
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{
		byExternal:   make(map[string]*models.Game),
		recentByTeam: make(map[uuid.UUID][]*models.Game),
	}
}

func (r *fakeGameRepo) Create(ctx context.Context, game *models.Game) error {
	r.byExternal[game.ExternalID] = game
	r.created = append(r.created, game)
	return nil
}

func (r *fakeGameRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	for _, game := range r.byExternal {
		if game.ID == id {
			return game, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeGameRepo) GetByExternalID(ctx context.Context, externalID string) (*models.Game, error) {
	game, ok := r.byExternal[externalID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return game, nil
}

func (r *fakeGameRepo) GetUpcoming(ctx context.Context, limit int) ([]*models.Game, error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	return r.upcoming, nil
}

func (r *fakeGameRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Game, error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	return r.inRange, nil
}

func (r *fakeGameRepo) GetCompletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*models.Game, error) {
	return nil, nil
}

func (r *fakeGameRepo) GetCompletedForTeam(ctx context.Context, teamID uuid.UUID, before time.Time, limit int) ([]*models.Game, error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	return r.recentByTeam[teamID], nil
}

func (r *fakeGameRepo) GetHeadToHead(ctx context.Context, teamA, teamB uuid.UUID, before time.Time, limit int) ([]*models.Game, error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	return r.headToHead, nil
}

func (r *fakeGameRepo) Update(ctx context.Context, game *models.Game) error {
	r.byExternal[game.ExternalID] = game
	r.updated = append(r.updated, game)
	return nil
}

func (r *fakeGameRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.GameStatus, homePoints, awayPoints *int) error {
	r.statusUpdates = append(r.statusUpdates, status)
	return nil
}

type fakePredictionRepo struct {
	inserted []*models.Prediction
}

func (r *fakePredictionRepo) Insert(ctx context.Context, prediction *models.Prediction) error {
	r.inserted = append(r.inserted, prediction)
	return nil
}

func (r *fakePredictionRepo) InsertBatch(ctx context.Context, predictions []*models.Prediction) error {
	r.inserted = append(r.inserted, predictions...)
	return nil
}

func (r *fakePredictionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	return nil, models.ErrNotFound
}

func (r *fakePredictionRepo) GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*models.Prediction, error) {
	var out []*models.Prediction
	for _, p := range r.inserted {
		if p.GameID == gameID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePredictionRepo) GetLatestByGameID(ctx context.Context, gameID uuid.UUID) (*models.Prediction, error) {
	for i := len(r.inserted) - 1; i >= 0; i-- {
		if r.inserted[i].GameID == gameID {
			return r.inserted[i], nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakePredictionRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Prediction, error) {
	return r.inserted, nil
}

type fakeBacktestRepo struct {
	saved []*models.BacktestResult
}

func (r *fakeBacktestRepo) SaveResult(ctx context.Context, result *models.BacktestResult) error {
	r.saved = append(r.saved, result)
	return nil
}

func (r *fakeBacktestRepo) SaveBatch(ctx context.Context, results []*models.BacktestResult) error {
	r.saved = append(r.saved, results...)
	return nil
}

func (r *fakeBacktestRepo) GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*models.BacktestResult, error) {
	return nil, nil
}

func (r *fakeBacktestRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.BacktestResult, error) {
	return r.saved, nil
}

func (r *fakeBacktestRepo) GetLatest(ctx context.Context, limit int) ([]*models.BacktestResult, error) {
	return r.saved, nil
}

type fakeWeightHistoryRepo struct {
	entries []*models.WeightHistory
}

func (r *fakeWeightHistoryRepo) Insert(ctx context.Context, entry *models.WeightHistory) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeWeightHistoryRepo) GetLatest(ctx context.Context) (*models.WeightHistory, error) {
	if len(r.entries) == 0 {
		return nil, models.ErrNotFound
	}
	return r.entries[len(r.entries)-1], nil
}

func (r *fakeWeightHistoryRepo) GetByVersion(ctx context.Context, version int) (*models.WeightHistory, error) {
	for _, entry := range r.entries {
		if entry.Version == version {
			return entry, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeWeightHistoryRepo) List(ctx context.Context, limit int) ([]*models.WeightHistory, error) {
	return r.entries, nil
}

func newFakeRepositories() (*repository.Repositories, *fakeTeamRepo, *fakeGameRepo, *fakePredictionRepo, *fakeBacktestRepo, *fakeWeightHistoryRepo) {
	teams := newFakeTeamRepo()
	games := newFakeGameRepo()
	predictions := &fakePredictionRepo{}
	backtests := &fakeBacktestRepo{}
	weights := &fakeWeightHistoryRepo{}
	repos := &repository.Repositories{
		Team:           teams,
		Game:           games,
		Prediction:     predictions,
		BacktestResult: backtests,
		WeightHistory:  weights,
	}
	return repos, teams, games, predictions, backtests, weights
}
