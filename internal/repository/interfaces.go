package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/gridiron-engine/internal/models"
)

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Team, error)
	GetAll(ctx context.Context) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Upsert(ctx context.Context, team *models.Team) error
}

// GameRepository defines the interface for game data access
type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Game, error)
	GetUpcoming(ctx context.Context, limit int) ([]*models.Game, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Game, error)
	GetCompletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*models.Game, error)
	GetCompletedForTeam(ctx context.Context, teamID uuid.UUID, before time.Time, limit int) ([]*models.Game, error)
	GetHeadToHead(ctx context.Context, teamA, teamB uuid.UUID, before time.Time, limit int) ([]*models.Game, error)
	Update(ctx context.Context, game *models.Game) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.GameStatus, homePoints, awayPoints *int) error
}

// PredictionRepository defines the interface for prediction data access
type PredictionRepository interface {
	Insert(ctx context.Context, prediction *models.Prediction) error
	InsertBatch(ctx context.Context, predictions []*models.Prediction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error)
	GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*models.Prediction, error)
	GetLatestByGameID(ctx context.Context, gameID uuid.UUID) (*models.Prediction, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Prediction, error)
}

// BacktestResultRepository defines backtest result persistence
type BacktestResultRepository interface {
	SaveResult(ctx context.Context, result *models.BacktestResult) error
	SaveBatch(ctx context.Context, results []*models.BacktestResult) error
	GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*models.BacktestResult, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.BacktestResult, error)
	GetLatest(ctx context.Context, limit int) ([]*models.BacktestResult, error)
}

// WeightHistoryRepository records published weight tables
type WeightHistoryRepository interface {
	Insert(ctx context.Context, entry *models.WeightHistory) error
	GetLatest(ctx context.Context) (*models.WeightHistory, error)
	GetByVersion(ctx context.Context, version int) (*models.WeightHistory, error)
	List(ctx context.Context, limit int) ([]*models.WeightHistory, error)
}
