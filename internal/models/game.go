package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus represents the lifecycle state of a game
type GameStatus string

// Game status values. Transitions move forward only: scheduled games may
// become in-progress or postponed, in-progress games become completed.
const (
	GameStatusScheduled  GameStatus = "scheduled"
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusCompleted  GameStatus = "completed"
	GameStatusPostponed  GameStatus = "postponed"
)

// WeatherSnapshot captures game-time weather for outdoor venues
type WeatherSnapshot struct {
	TemperatureF  float64 `db:"temperature_f" json:"temperature_f"`
	WindMPH       float64 `db:"wind_mph" json:"wind_mph"`
	Precipitation float64 `db:"precipitation" json:"precipitation" validate:"gte=0,lte=1"`
	Conditions    string  `db:"conditions" json:"conditions"`
}

// Game represents a matchup between two teams
type Game struct {
	ID         uuid.UUID        `db:"id" json:"id" validate:"required,uuid4"`
	ExternalID string           `db:"external_id" json:"external_id" validate:"required"`
	Kickoff    time.Time        `db:"kickoff" json:"kickoff" validate:"required"`
	Venue      string           `db:"venue" json:"venue"`
	Dome       bool             `db:"dome" json:"dome"`
	HomeTeam   *Team            `db:"-" json:"home_team"`
	AwayTeam   *Team            `db:"-" json:"away_team"`
	Status     GameStatus       `db:"status" json:"status" validate:"oneof=scheduled in_progress completed postponed"`
	Weather    *WeatherSnapshot `db:"-" json:"weather,omitempty"`
	HomePoints *int             `db:"home_points" json:"home_points,omitempty"`
	AwayPoints *int             `db:"away_points" json:"away_points,omitempty"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// IsUpcoming checks if the game hasn't started yet
func (g *Game) IsUpcoming() bool {
	return g.Status == GameStatusScheduled
}

// IsCompleted checks if the game finished with a recorded final score
func (g *Game) IsCompleted() bool {
	return g.Status == GameStatusCompleted && g.HomePoints != nil && g.AwayPoints != nil
}

// HasTeams checks that both sides of the matchup are resolved
func (g *Game) HasTeams() bool {
	return g.HomeTeam != nil && g.AwayTeam != nil
}

// ActualMargin returns the home-relative final margin. The boolean is false
// when the game has no recorded final score.
func (g *Game) ActualMargin() (float64, bool) {
	if !g.IsCompleted() {
		return 0, false
	}
	return float64(*g.HomePoints - *g.AwayPoints), true
}

// ActualWinner returns the winning side of a completed game
func (g *Game) ActualWinner() (Side, bool) {
	margin, ok := g.ActualMargin()
	if !ok {
		return "", false
	}
	if margin > 0 {
		return SideHome, true
	}
	if margin < 0 {
		return SideAway, true
	}
	return SideTie, true
}

// CanTransitionTo reports whether a status change is a legal forward
// transition. Postponed is the one exception to forward-only movement: a
// postponed game returns to scheduled when the league announces its makeup
// date, then proceeds through the normal lifecycle.
func (g *Game) CanTransitionTo(next GameStatus) bool {
	if g.Status == next {
		return true
	}
	switch g.Status {
	case GameStatusScheduled:
		return next == GameStatusInProgress || next == GameStatusCompleted || next == GameStatusPostponed
	case GameStatusInProgress:
		return next == GameStatusCompleted
	case GameStatusPostponed:
		return next == GameStatusScheduled
	default:
		return false
	}
}
