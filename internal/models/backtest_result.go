package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ConfidenceBucket labels a calibration bucket by stated confidence range
type ConfidenceBucket string

// Calibration buckets
const (
	Bucket50to60 ConfidenceBucket = "50-60%"
	Bucket60to70 ConfidenceBucket = "60-70%"
	Bucket70to80 ConfidenceBucket = "70-80%"
	Bucket80Plus ConfidenceBucket = "80%+"
)

// BucketForConfidence assigns a confidence value to its calibration bucket
func BucketForConfidence(confidence float64) ConfidenceBucket {
	switch {
	case confidence >= 80:
		return Bucket80Plus
	case confidence >= 70:
		return Bucket70to80
	case confidence >= 60:
		return Bucket60to70
	default:
		return Bucket50to60
	}
}

// ConfidenceBuckets returns all buckets in ascending order
func ConfidenceBuckets() []ConfidenceBucket {
	return []ConfidenceBucket{Bucket50to60, Bucket60to70, Bucket70to80, Bucket80Plus}
}

// BacktestResult pairs a prediction with the known outcome of a completed
// game. Immutable once created.
type BacktestResult struct {
	ID           uuid.UUID        `db:"id" json:"id"`
	GameID       uuid.UUID        `db:"game_id" json:"game_id"`
	PredictionID uuid.UUID        `db:"prediction_id" json:"prediction_id"`
	Prediction   *Prediction      `db:"-" json:"prediction"`
	ActualWinner Side             `db:"actual_winner" json:"actual_winner"`
	ActualMargin float64          `db:"actual_margin" json:"actual_margin"`
	Correct      bool             `db:"correct" json:"correct"`
	SpreadError  float64          `db:"spread_error" json:"spread_error"`
	Bucket       ConfidenceBucket `db:"bucket" json:"bucket"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}

// NewBacktestResult scores a prediction against a completed game's outcome
func NewBacktestResult(prediction *Prediction, game *Game) (*BacktestResult, error) {
	margin, ok := game.ActualMargin()
	if !ok {
		return nil, &IncompleteGameError{GameID: game.ExternalID, Status: game.Status}
	}
	winner, _ := game.ActualWinner()

	return &BacktestResult{
		ID:           uuid.New(),
		GameID:       game.ID,
		PredictionID: prediction.ID,
		Prediction:   prediction,
		ActualWinner: winner,
		ActualMargin: margin,
		Correct:      prediction.PredictedWinner == winner,
		SpreadError:  math.Abs(prediction.SpreadPrediction - margin),
		Bucket:       BucketForConfidence(prediction.Confidence),
		CreatedAt:    time.Now().UTC(),
	}, nil
}
