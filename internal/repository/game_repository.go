package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/gridiron-engine/internal/database"
	"github.com/yourusername/gridiron-engine/internal/models"
)

const errScanGame = "failed to scan game: %w"

// gameSelectColumns joins both teams so callers always receive fully
// resolved matchups.
const gameSelectColumns = `
	SELECT g.id, g.external_id, g.kickoff, g.venue, g.dome, g.status,
	       g.temperature_f, g.wind_mph, g.precipitation, g.conditions,
	       g.home_points, g.away_points, g.created_at, g.updated_at,
	       ht.id, ht.external_id, ht.name, ht.abbreviation, ht.wins, ht.losses, ht.ties, ht.rating,
	       at.id, at.external_id, at.name, at.abbreviation, at.wins, at.losses, at.ties, at.rating
	FROM games g
	JOIN teams ht ON ht.id = g.home_team_id
	JOIN teams at ON at.id = g.away_team_id
`

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

func scanGame(row pgx.Row) (*models.Game, error) {
	game := &models.Game{
		HomeTeam: &models.Team{},
		AwayTeam: &models.Team{},
	}

	var tempF, windMPH, precip *float64
	var conditions *string

	err := row.Scan(
		&game.ID, &game.ExternalID, &game.Kickoff, &game.Venue, &game.Dome, &game.Status,
		&tempF, &windMPH, &precip, &conditions,
		&game.HomePoints, &game.AwayPoints, &game.CreatedAt, &game.UpdatedAt,
		&game.HomeTeam.ID, &game.HomeTeam.ExternalID, &game.HomeTeam.Name, &game.HomeTeam.Abbreviation,
		&game.HomeTeam.Wins, &game.HomeTeam.Losses, &game.HomeTeam.Ties, &game.HomeTeam.Rating,
		&game.AwayTeam.ID, &game.AwayTeam.ExternalID, &game.AwayTeam.Name, &game.AwayTeam.Abbreviation,
		&game.AwayTeam.Wins, &game.AwayTeam.Losses, &game.AwayTeam.Ties, &game.AwayTeam.Rating,
	)
	if err != nil {
		return nil, err
	}

	if tempF != nil && windMPH != nil && precip != nil {
		game.Weather = &models.WeatherSnapshot{
			TemperatureF:  *tempF,
			WindMPH:       *windMPH,
			Precipitation: *precip,
		}
		if conditions != nil {
			game.Weather.Conditions = *conditions
		}
	}

	return game, nil
}

func scanGames(rows pgx.Rows) ([]*models.Game, error) {
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanGame, err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}

// Create inserts a new game
func (r *PostgresGameRepository) Create(ctx context.Context, game *models.Game) error {
	if !game.HasTeams() {
		return &models.InvalidGameStateError{GameID: game.ExternalID, Reason: "game is missing a team"}
	}

	query := `
		INSERT INTO games (id, external_id, kickoff, venue, dome, home_team_id, away_team_id,
		                   status, temperature_f, wind_mph, precipitation, conditions,
		                   home_points, away_points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	var tempF, windMPH, precip *float64
	var conditions *string
	if game.Weather != nil {
		tempF = &game.Weather.TemperatureF
		windMPH = &game.Weather.WindMPH
		precip = &game.Weather.Precipitation
		conditions = &game.Weather.Conditions
	}

	_, err := r.db.GetPool().Exec(ctx, query,
		game.ID, game.ExternalID, game.Kickoff, game.Venue, game.Dome,
		game.HomeTeam.ID, game.AwayTeam.ID, game.Status,
		tempF, windMPH, precip, conditions,
		game.HomePoints, game.AwayPoints,
	)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	return nil
}

// GetByID retrieves a game by ID with both teams resolved
func (r *PostgresGameRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	query := gameSelectColumns + " WHERE g.id = $1"

	game, err := scanGame(r.db.GetPool().QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// GetByExternalID retrieves a game by its feed identifier
func (r *PostgresGameRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Game, error) {
	query := gameSelectColumns + " WHERE g.external_id = $1"

	game, err := scanGame(r.db.GetPool().QueryRow(ctx, query, externalID))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by external id: %w", err)
	}

	return game, nil
}

// GetUpcoming retrieves scheduled games ordered by kickoff time
func (r *PostgresGameRepository) GetUpcoming(ctx context.Context, limit int) ([]*models.Game, error) {
	query := gameSelectColumns + `
		WHERE g.status = 'scheduled' AND g.kickoff > NOW()
		ORDER BY g.kickoff ASC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming games: %w", err)
	}

	return scanGames(rows)
}

// GetByDateRange retrieves games with kickoff inside a window
func (r *PostgresGameRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Game, error) {
	query := gameSelectColumns + `
		WHERE g.kickoff >= $1 AND g.kickoff <= $2
		ORDER BY g.kickoff ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query games by date range: %w", err)
	}

	return scanGames(rows)
}

// GetCompletedBefore retrieves completed games that kicked off before the
// cutoff, most recent first. Factor contexts are built from these.
func (r *PostgresGameRepository) GetCompletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*models.Game, error) {
	query := gameSelectColumns + `
		WHERE g.status = 'completed' AND g.kickoff < $1
		ORDER BY g.kickoff DESC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed games: %w", err)
	}

	return scanGames(rows)
}

// GetCompletedForTeam retrieves a team's completed games before a cutoff,
// most recent first
func (r *PostgresGameRepository) GetCompletedForTeam(ctx context.Context, teamID uuid.UUID, before time.Time, limit int) ([]*models.Game, error) {
	query := gameSelectColumns + `
		WHERE g.status = 'completed'
		  AND g.kickoff < $2
		  AND (g.home_team_id = $1 OR g.away_team_id = $1)
		ORDER BY g.kickoff DESC
		LIMIT $3
	`

	rows, err := r.db.GetPool().Query(ctx, query, teamID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed games for team: %w", err)
	}

	return scanGames(rows)
}

// GetHeadToHead retrieves completed meetings between two teams before a
// cutoff, most recent first
func (r *PostgresGameRepository) GetHeadToHead(ctx context.Context, teamA, teamB uuid.UUID, before time.Time, limit int) ([]*models.Game, error) {
	query := gameSelectColumns + `
		WHERE g.status = 'completed'
		  AND g.kickoff < $3
		  AND ((g.home_team_id = $1 AND g.away_team_id = $2)
		    OR (g.home_team_id = $2 AND g.away_team_id = $1))
		ORDER BY g.kickoff DESC
		LIMIT $4
	`

	rows, err := r.db.GetPool().Query(ctx, query, teamA, teamB, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query head to head games: %w", err)
	}

	return scanGames(rows)
}

// Update updates an existing game
func (r *PostgresGameRepository) Update(ctx context.Context, game *models.Game) error {
	query := `
		UPDATE games SET
			kickoff = $2, venue = $3, dome = $4, status = $5,
			home_points = $6, away_points = $7, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := r.db.GetPool().Exec(ctx, query,
		game.ID, game.Kickoff, game.Venue, game.Dome, game.Status,
		game.HomePoints, game.AwayPoints,
	)
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// UpdateStatus transitions a game's status and records the score. Used by
// the live feed stream when games progress.
func (r *PostgresGameRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.GameStatus, homePoints, awayPoints *int) error {
	query := `
		UPDATE games SET
			status = $2, home_points = $3, away_points = $4, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := r.db.GetPool().Exec(ctx, query, id, status, homePoints, awayPoints)
	if err != nil {
		return fmt.Errorf("failed to update game status: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
