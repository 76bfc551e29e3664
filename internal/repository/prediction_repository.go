package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/gridiron-engine/internal/database"
	"github.com/yourusername/gridiron-engine/internal/models"
)

const errScanPrediction = "failed to scan prediction: %w"

const predictionSelectColumns = `
	SELECT id, game_id, home_team, away_team, predicted_winner, winner_team,
	       confidence, spread_prediction, factors, aggregate_score,
	       algorithm_version, weights_version, created_at
	FROM predictions
`

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

func scanPrediction(row pgx.Row) (*models.Prediction, error) {
	prediction := &models.Prediction{}
	var factorsJSON []byte

	err := row.Scan(
		&prediction.ID, &prediction.GameID, &prediction.HomeTeam, &prediction.AwayTeam,
		&prediction.PredictedWinner, &prediction.WinnerTeam,
		&prediction.Confidence, &prediction.SpreadPrediction,
		&factorsJSON, &prediction.AggregateScore,
		&prediction.AlgorithmVersion, &prediction.WeightsVersion, &prediction.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(factorsJSON) > 0 {
		if err := json.Unmarshal(factorsJSON, &prediction.Factors); err != nil {
			return nil, fmt.Errorf("failed to decode prediction factors: %w", err)
		}
	}

	return prediction, nil
}

// Insert stores a single prediction. Predictions are append-only; the
// latest record per game wins.
func (r *PostgresPredictionRepository) Insert(ctx context.Context, prediction *models.Prediction) error {
	query := `
		INSERT INTO predictions (id, game_id, home_team, away_team, predicted_winner,
		                         winner_team, confidence, spread_prediction, factors,
		                         aggregate_score, algorithm_version, weights_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	factorsJSON, err := json.Marshal(prediction.Factors)
	if err != nil {
		return fmt.Errorf("failed to encode prediction factors: %w", err)
	}

	_, err = r.db.GetPool().Exec(ctx, query,
		prediction.ID, prediction.GameID, prediction.HomeTeam, prediction.AwayTeam,
		prediction.PredictedWinner, prediction.WinnerTeam,
		prediction.Confidence, prediction.SpreadPrediction, factorsJSON,
		prediction.AggregateScore, prediction.AlgorithmVersion, prediction.WeightsVersion,
		prediction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}

	return nil
}

// InsertBatch stores a batch of predictions in one transaction
func (r *PostgresPredictionRepository) InsertBatch(ctx context.Context, predictions []*models.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO predictions (id, game_id, home_team, away_team, predicted_winner,
			                         winner_team, confidence, spread_prediction, factors,
			                         aggregate_score, algorithm_version, weights_version, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`

		for _, prediction := range predictions {
			factorsJSON, err := json.Marshal(prediction.Factors)
			if err != nil {
				return fmt.Errorf("failed to encode prediction factors: %w", err)
			}

			_, err = tx.Exec(ctx, query,
				prediction.ID, prediction.GameID, prediction.HomeTeam, prediction.AwayTeam,
				prediction.PredictedWinner, prediction.WinnerTeam,
				prediction.Confidence, prediction.SpreadPrediction, factorsJSON,
				prediction.AggregateScore, prediction.AlgorithmVersion, prediction.WeightsVersion,
				prediction.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert prediction %s: %w", prediction.ID, err)
			}
		}

		return nil
	})
}

// GetByID retrieves a prediction by ID
func (r *PostgresPredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	query := predictionSelectColumns + " WHERE id = $1"

	prediction, err := scanPrediction(r.db.GetPool().QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	return prediction, nil
}

// GetByGameID retrieves all predictions recorded for a game, newest first
func (r *PostgresPredictionRepository) GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*models.Prediction, error) {
	query := predictionSelectColumns + `
		WHERE game_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions by game: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		prediction, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanPrediction, err)
		}
		predictions = append(predictions, prediction)
	}

	return predictions, rows.Err()
}

// GetLatestByGameID retrieves the most recent prediction for a game
func (r *PostgresPredictionRepository) GetLatestByGameID(ctx context.Context, gameID uuid.UUID) (*models.Prediction, error) {
	query := predictionSelectColumns + `
		WHERE game_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	prediction, err := scanPrediction(r.db.GetPool().QueryRow(ctx, query, gameID))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest prediction: %w", err)
	}

	return prediction, nil
}

// GetByDateRange retrieves predictions created inside a window
func (r *PostgresPredictionRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Prediction, error) {
	query := predictionSelectColumns + `
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions by date range: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		prediction, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanPrediction, err)
		}
		predictions = append(predictions, prediction)
	}

	return predictions, rows.Err()
}
