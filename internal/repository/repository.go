package repository

import (
	"fmt"

	"github.com/yourusername/gridiron-engine/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Team           TeamRepository
	Game           GameRepository
	Prediction     PredictionRepository
	BacktestResult BacktestResultRepository
	WeightHistory  WeightHistoryRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Team:           NewPostgresTeamRepository(db),
		Game:           NewPostgresGameRepository(db),
		Prediction:     NewPostgresPredictionRepository(db),
		BacktestResult: NewPostgresBacktestResultRepository(db),
		WeightHistory:  NewPostgresWeightHistoryRepository(db),
	}, nil
}
