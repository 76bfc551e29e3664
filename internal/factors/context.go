// Package factors implements the fixed seven-factor evaluation set used by
// the prediction engine. Evaluators are pure: identical inputs always produce
// identical factors, which backtest reproducibility depends on.
package factors

import (
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/gridiron-engine/internal/models"
)

// InjuryReport summarizes pre-game player availability for one team
type InjuryReport struct {
	KeyPlayersOut int `json:"key_players_out"`
	TotalOut      int `json:"total_out"`
}

// Context supplies the external state factor evaluators need. All data must
// predate Context.AsOf; the backtest runner builds contexts restricted to what
// was known before kickoff so final scores never leak into evaluation.
type Context struct {
	// AsOf is the decision time for the evaluation.
	AsOf time.Time
	// Matchups are completed prior games between the two teams, oldest first.
	Matchups []*models.Game
	// RecentHome and RecentAway are each team's completed recent games,
	// oldest first.
	RecentHome []*models.Game
	RecentAway []*models.Game
	// Injuries holds pre-game injury reports keyed by team ID.
	Injuries map[uuid.UUID]InjuryReport
	// LastGameHome and LastGameAway are kickoff times of each team's previous
	// game, used for rest calculations. Nil when unknown.
	LastGameHome *time.Time
	LastGameAway *time.Time
	// TravelMilesAway is the away team's travel distance to the venue.
	TravelMilesAway float64
}

// restDays returns whole days of rest before kickoff, or -1 when unknown
func restDays(last *time.Time, kickoff time.Time) int {
	if last == nil || last.After(kickoff) {
		return -1
	}
	return int(kickoff.Sub(*last).Hours() / 24)
}
