package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/gridiron-engine/internal/database"
	"github.com/yourusername/gridiron-engine/internal/models"
)

const weightHistorySelectColumns = `
	SELECT id, version, weights, source, objective, score, created_at
	FROM weight_history
`

// PostgresWeightHistoryRepository implements WeightHistoryRepository for PostgreSQL
type PostgresWeightHistoryRepository struct {
	db *database.DB
}

// NewPostgresWeightHistoryRepository creates a new weight history repository
func NewPostgresWeightHistoryRepository(db *database.DB) WeightHistoryRepository {
	return &PostgresWeightHistoryRepository{db: db}
}

func scanWeightHistory(row pgx.Row) (*models.WeightHistory, error) {
	entry := &models.WeightHistory{}
	var weightsJSON []byte

	err := row.Scan(
		&entry.ID, &entry.Version, &weightsJSON, &entry.Source,
		&entry.Objective, &entry.Score, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(weightsJSON, &entry.Weights); err != nil {
		return nil, fmt.Errorf("failed to decode weight table: %w", err)
	}

	return entry, nil
}

// Insert records a published weight table
func (r *PostgresWeightHistoryRepository) Insert(ctx context.Context, entry *models.WeightHistory) error {
	query := `
		INSERT INTO weight_history (id, version, weights, source, objective, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	weightsJSON, err := json.Marshal(entry.Weights)
	if err != nil {
		return fmt.Errorf("failed to encode weight table: %w", err)
	}

	_, err = r.db.GetPool().Exec(ctx, query,
		entry.ID, entry.Version, weightsJSON, entry.Source,
		entry.Objective, entry.Score, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert weight history: %w", err)
	}

	return nil
}

// GetLatest retrieves the most recently published weight table
func (r *PostgresWeightHistoryRepository) GetLatest(ctx context.Context) (*models.WeightHistory, error) {
	query := weightHistorySelectColumns + `
		ORDER BY version DESC, created_at DESC
		LIMIT 1
	`

	entry, err := scanWeightHistory(r.db.GetPool().QueryRow(ctx, query))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest weight history: %w", err)
	}

	return entry, nil
}

// GetByVersion retrieves a specific published version
func (r *PostgresWeightHistoryRepository) GetByVersion(ctx context.Context, version int) (*models.WeightHistory, error) {
	query := weightHistorySelectColumns + " WHERE version = $1"

	entry, err := scanWeightHistory(r.db.GetPool().QueryRow(ctx, query, version))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weight history by version: %w", err)
	}

	return entry, nil
}

// List retrieves published tables, newest first
func (r *PostgresWeightHistoryRepository) List(ctx context.Context, limit int) ([]*models.WeightHistory, error) {
	query := weightHistorySelectColumns + `
		ORDER BY version DESC, created_at DESC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query weight history: %w", err)
	}
	defer rows.Close()

	var entries []*models.WeightHistory
	for rows.Next() {
		entry, err := scanWeightHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan weight history: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
