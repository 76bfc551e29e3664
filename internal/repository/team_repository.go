package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/gridiron-engine/internal/database"
	"github.com/yourusername/gridiron-engine/internal/models"
)

const errScanTeam = "failed to scan team: %w"

// PostgresTeamRepository implements TeamRepository for PostgreSQL
type PostgresTeamRepository struct {
	db *database.DB
}

// NewPostgresTeamRepository creates a new team repository
func NewPostgresTeamRepository(db *database.DB) TeamRepository {
	return &PostgresTeamRepository{db: db}
}

// Create inserts a new team
func (r *PostgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, external_id, name, abbreviation, wins, losses, ties, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		team.ID, team.ExternalID, team.Name, team.Abbreviation,
		team.Wins, team.Losses, team.Ties, team.Rating,
	)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}

	return nil
}

// GetByID retrieves a team by ID
func (r *PostgresTeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	query := `
		SELECT id, external_id, name, abbreviation, wins, losses, ties, rating,
		       created_at, updated_at
		FROM teams WHERE id = $1
	`

	team := &models.Team{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&team.ID, &team.ExternalID, &team.Name, &team.Abbreviation,
		&team.Wins, &team.Losses, &team.Ties, &team.Rating,
		&team.CreatedAt, &team.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}

// GetByExternalID retrieves a team by its feed identifier
func (r *PostgresTeamRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Team, error) {
	query := `
		SELECT id, external_id, name, abbreviation, wins, losses, ties, rating,
		       created_at, updated_at
		FROM teams WHERE external_id = $1
	`

	team := &models.Team{}
	err := r.db.GetPool().QueryRow(ctx, query, externalID).Scan(
		&team.ID, &team.ExternalID, &team.Name, &team.Abbreviation,
		&team.Wins, &team.Losses, &team.Ties, &team.Rating,
		&team.CreatedAt, &team.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team by external id: %w", err)
	}

	return team, nil
}

// GetAll retrieves all teams ordered by name
func (r *PostgresTeamRepository) GetAll(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT id, external_id, name, abbreviation, wins, losses, ties, rating,
		       created_at, updated_at
		FROM teams
		ORDER BY name ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team := &models.Team{}
		err := rows.Scan(
			&team.ID, &team.ExternalID, &team.Name, &team.Abbreviation,
			&team.Wins, &team.Losses, &team.Ties, &team.Rating,
			&team.CreatedAt, &team.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanTeam, err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// Update updates an existing team's record and rating
func (r *PostgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams SET
			name = $2, abbreviation = $3, wins = $4, losses = $5, ties = $6,
			rating = $7, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := r.db.GetPool().Exec(ctx, query,
		team.ID, team.Name, team.Abbreviation, team.Wins, team.Losses, team.Ties, team.Rating,
	)
	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Upsert inserts or updates a team keyed by external_id. Feed syncs use this
// so repeated runs are idempotent.
func (r *PostgresTeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, external_id, name, abbreviation, wins, losses, ties, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (external_id) DO UPDATE SET
			name = EXCLUDED.name,
			abbreviation = EXCLUDED.abbreviation,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			ties = EXCLUDED.ties,
			rating = EXCLUDED.rating,
			updated_at = NOW()
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		team.ID, team.ExternalID, team.Name, team.Abbreviation,
		team.Wins, team.Losses, team.Ties, team.Rating,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	return nil
}
