package models

import (
	"time"

	"github.com/google/uuid"
)

// Side identifies which side of a matchup an outcome refers to
type Side string

// Outcome sides
const (
	SideHome Side = "home"
	SideAway Side = "away"
	SideTie  Side = "tie"
)

// Prediction represents an engine prediction for a single game. Predictions
// are immutable once created; re-evaluating a game produces a new record so
// the audit trail is preserved.
type Prediction struct {
	ID               uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	GameID           uuid.UUID `db:"game_id" json:"game_id" validate:"required,uuid4"`
	HomeTeam         string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam         string    `db:"away_team" json:"away_team" validate:"required"`
	PredictedWinner  Side      `db:"predicted_winner" json:"predicted_winner" validate:"oneof=home away"`
	WinnerTeam       string    `db:"winner_team" json:"winner_team"`
	Confidence       float64   `db:"confidence" json:"confidence" validate:"gte=0,lte=100"`
	SpreadPrediction float64   `db:"spread_prediction" json:"spread_prediction"`
	// Factors holds the ordered factor evaluations used to produce the
	// prediction, in canonical factor order.
	Factors          []Factor  `db:"-" json:"factors"`
	AggregateScore   float64   `db:"aggregate_score" json:"aggregate_score"`
	AlgorithmVersion string    `db:"algorithm_version" json:"algorithm_version" validate:"required"`
	WeightsVersion   int       `db:"weights_version" json:"weights_version"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// MeetsThreshold checks if the confidence meets the given threshold
func (p *Prediction) MeetsThreshold(threshold float64) bool {
	return p.Confidence >= threshold
}

// FactorByName returns the evaluation of a named factor, if present
func (p *Prediction) FactorByName(name FactorName) (Factor, bool) {
	for _, f := range p.Factors {
		if f.Name == name {
			return f, true
		}
	}
	return Factor{}, false
}
