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

const errScanBacktestResult = "failed to scan backtest result: %w"

// Prediction scoring fields are denormalized into backtest_results so
// summaries can be rebuilt without joining the predictions table.
const backtestResultSelectColumns = `
	SELECT id, game_id, prediction_id, predicted_winner, confidence,
	       spread_prediction, factors, actual_winner, actual_margin,
	       correct, spread_error, bucket, created_at
	FROM backtest_results
`

// PostgresBacktestResultRepository implements BacktestResultRepository for PostgreSQL
type PostgresBacktestResultRepository struct {
	db *database.DB
}

// NewPostgresBacktestResultRepository creates a new backtest result repository
func NewPostgresBacktestResultRepository(db *database.DB) BacktestResultRepository {
	return &PostgresBacktestResultRepository{db: db}
}

func scanBacktestResult(row pgx.Row) (*models.BacktestResult, error) {
	result := &models.BacktestResult{}
	prediction := &models.Prediction{}
	var factorsJSON []byte

	err := row.Scan(
		&result.ID, &result.GameID, &result.PredictionID,
		&prediction.PredictedWinner, &prediction.Confidence,
		&prediction.SpreadPrediction, &factorsJSON,
		&result.ActualWinner, &result.ActualMargin,
		&result.Correct, &result.SpreadError, &result.Bucket, &result.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(factorsJSON) > 0 {
		if err := json.Unmarshal(factorsJSON, &prediction.Factors); err != nil {
			return nil, fmt.Errorf("failed to decode result factors: %w", err)
		}
	}

	prediction.ID = result.PredictionID
	prediction.GameID = result.GameID
	result.Prediction = prediction

	return result, nil
}

func backtestInsertArgs(result *models.BacktestResult) ([]interface{}, error) {
	if result.Prediction == nil {
		return nil, fmt.Errorf("backtest result %s has no prediction", result.ID)
	}

	factorsJSON, err := json.Marshal(result.Prediction.Factors)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result factors: %w", err)
	}

	return []interface{}{
		result.ID, result.GameID, result.PredictionID,
		result.Prediction.PredictedWinner, result.Prediction.Confidence,
		result.Prediction.SpreadPrediction, factorsJSON,
		result.ActualWinner, result.ActualMargin,
		result.Correct, result.SpreadError, result.Bucket, result.CreatedAt,
	}, nil
}

const backtestInsertQuery = `
	INSERT INTO backtest_results (id, game_id, prediction_id, predicted_winner,
	                              confidence, spread_prediction, factors,
	                              actual_winner, actual_margin, correct,
	                              spread_error, bucket, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`

// SaveResult stores a single backtest result
func (r *PostgresBacktestResultRepository) SaveResult(ctx context.Context, result *models.BacktestResult) error {
	args, err := backtestInsertArgs(result)
	if err != nil {
		return err
	}

	if _, err := r.db.GetPool().Exec(ctx, backtestInsertQuery, args...); err != nil {
		return fmt.Errorf("failed to save backtest result: %w", err)
	}

	return nil
}

// SaveBatch stores a run's results in one transaction
func (r *PostgresBacktestResultRepository) SaveBatch(ctx context.Context, results []*models.BacktestResult) error {
	if len(results) == 0 {
		return nil
	}

	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, result := range results {
			args, err := backtestInsertArgs(result)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, backtestInsertQuery, args...); err != nil {
				return fmt.Errorf("failed to save backtest result %s: %w", result.ID, err)
			}
		}
		return nil
	})
}

// GetByGameID retrieves results recorded for a game
func (r *PostgresBacktestResultRepository) GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*models.BacktestResult, error) {
	query := backtestResultSelectColumns + `
		WHERE game_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest results by game: %w", err)
	}

	return collectBacktestResults(rows)
}

// GetByDateRange retrieves results created inside a window
func (r *PostgresBacktestResultRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.BacktestResult, error) {
	query := backtestResultSelectColumns + `
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest results by date range: %w", err)
	}

	return collectBacktestResults(rows)
}

// GetLatest retrieves the most recent results
func (r *PostgresBacktestResultRepository) GetLatest(ctx context.Context, limit int) ([]*models.BacktestResult, error) {
	query := backtestResultSelectColumns + `
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest backtest results: %w", err)
	}

	return collectBacktestResults(rows)
}

func collectBacktestResults(rows pgx.Rows) ([]*models.BacktestResult, error) {
	defer rows.Close()

	var results []*models.BacktestResult
	for rows.Next() {
		result, err := scanBacktestResult(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanBacktestResult, err)
		}
		results = append(results, result)
	}

	return results, rows.Err()
}
