package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key violation")
	ErrInvalidID    = errors.New("invalid ID format")
	ErrEmptyBatch   = errors.New("batch contains no games")
)

// InvalidGameStateError indicates a game is not in a state usable for prediction.
type InvalidGameStateError struct {
	GameID string
	Status GameStatus
	Reason string
}

func (e *InvalidGameStateError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid game state for %s: %s (%s)", e.GameID, e.Status, e.Reason)
	}
	return fmt.Sprintf("invalid game state for %s: %s", e.GameID, e.Status)
}

// IncompleteGameError indicates a backtest input lacks a final score.
type IncompleteGameError struct {
	GameID string
	Status GameStatus
}

func (e *IncompleteGameError) Error() string {
	return fmt.Sprintf("game %s has no final score (status %s)", e.GameID, e.Status)
}

// WeightNormalizationError indicates a weight set does not sum to the required constant.
type WeightNormalizationError struct {
	Sum float64
}

func (e *WeightNormalizationError) Error() string {
	return fmt.Sprintf("factor weights sum to %.4f, required 1.0", e.Sum)
}

// DataUnavailableError indicates a factor's required context is missing.
// Evaluators recover from it by substituting a neutral value, so it surfaces
// in factor explanations rather than failing the whole prediction.
type DataUnavailableError struct {
	Factor string
	Reason string
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("data unavailable for factor %s: %s", e.Factor, e.Reason)
}
