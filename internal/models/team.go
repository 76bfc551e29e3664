package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Team represents a team tracked by the prediction engine
type Team struct {
	ID           uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	ExternalID   string    `db:"external_id" json:"external_id" validate:"required"`
	Name         string    `db:"name" json:"name" validate:"required"`
	Abbreviation string    `db:"abbreviation" json:"abbreviation" validate:"required,min=2,max=4"`
	Wins         int       `db:"wins" json:"wins" validate:"gte=0"`
	Losses       int       `db:"losses" json:"losses" validate:"gte=0"`
	Ties         int       `db:"ties" json:"ties" validate:"gte=0"`
	// Rating is a rolling strength rating in [0,1], updated per completed game
	// by the data-ingestion collaborator.
	Rating    float64   `db:"rating" json:"rating" validate:"gte=0,lte=1"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// GamesPlayed returns total games in the current season record
func (t *Team) GamesPlayed() int {
	return t.Wins + t.Losses + t.Ties
}

// WinPercentage returns the win percentage counting ties as half a win.
// Returns 0 for a team with no completed games.
func (t *Team) WinPercentage() float64 {
	played := t.GamesPlayed()
	if played == 0 {
		return 0
	}
	return (float64(t.Wins) + 0.5*float64(t.Ties)) / float64(played)
}

// RecordString formats the season record as W-L or W-L-T
func (t *Team) RecordString() string {
	if t.Ties > 0 {
		return fmt.Sprintf("%d-%d-%d", t.Wins, t.Losses, t.Ties)
	}
	return fmt.Sprintf("%d-%d", t.Wins, t.Losses)
}
