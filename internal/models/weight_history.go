package models

import (
	"time"

	"github.com/google/uuid"
)

// WeightHistory records a published weight table so tuning runs can be
// audited and rolled back.
type WeightHistory struct {
	ID      uuid.UUID          `db:"id" json:"id"`
	Version int                `db:"version" json:"version"`
	Weights map[string]float64 `db:"weights" json:"weights"`
	// Source records what published the table: "default", "config",
	// "tuner" or "manual".
	Source    string    `db:"source" json:"source"`
	Objective string    `db:"objective" json:"objective"`
	Score     float64   `db:"score" json:"score"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
