// Package engine combines factor evaluations into calibrated predictions.
package engine

import (
	"math"
	"sync/atomic"

	"github.com/yourusername/gridiron-engine/internal/models"
)

// WeightTolerance is the floating tolerance for the weight-sum invariant
const WeightTolerance = 1e-3

// WeightTable is the vector of per-factor weights used for aggregation. The
// seven weights must sum to 1.0 within WeightTolerance. Tables are treated as
// immutable values; publishing new weights swaps the whole table.
type WeightTable struct {
	TeamStrength  float64 `json:"team_strength" mapstructure:"team_strength"`
	HomeAdvantage float64 `json:"home_advantage" mapstructure:"home_advantage"`
	Weather       float64 `json:"weather_impact" mapstructure:"weather_impact"`
	HeadToHead    float64 `json:"head_to_head" mapstructure:"head_to_head"`
	Injuries      float64 `json:"injury_impact" mapstructure:"injury_impact"`
	RecentForm    float64 `json:"recent_form" mapstructure:"recent_form"`
	RestTravel    float64 `json:"rest_travel" mapstructure:"rest_travel"`
	Version       int     `json:"version" mapstructure:"-"`
}

// DefaultWeights returns the baseline weight distribution
func DefaultWeights() WeightTable {
	return WeightTable{
		TeamStrength:  0.35,
		HeadToHead:    0.20,
		HomeAdvantage: 0.15,
		Weather:       0.10,
		RecentForm:    0.10,
		Injuries:      0.05,
		RestTravel:    0.05,
		Version:       1,
	}
}

// FromMap builds a validated table from factor-name keyed weights, as read
// from configuration. An empty map yields the defaults.
func FromMap(values map[string]float64) (WeightTable, error) {
	if len(values) == 0 {
		return DefaultWeights(), nil
	}

	ordered := make([]float64, 0, models.FactorCount)
	for _, name := range models.FactorNames() {
		ordered = append(ordered, values[string(name)])
	}
	table := FromValues(ordered)
	table.Version = 1
	if err := table.Validate(); err != nil {
		return WeightTable{}, err
	}
	return table, nil
}

// Values returns the weights in canonical factor order
func (w WeightTable) Values() []float64 {
	return []float64{
		w.TeamStrength,
		w.HomeAdvantage,
		w.Weather,
		w.HeadToHead,
		w.Injuries,
		w.RecentForm,
		w.RestTravel,
	}
}

// FromValues builds a table from weights in canonical factor order
func FromValues(values []float64) WeightTable {
	var w WeightTable
	if len(values) != models.FactorCount {
		return w
	}
	w.TeamStrength = values[0]
	w.HomeAdvantage = values[1]
	w.Weather = values[2]
	w.HeadToHead = values[3]
	w.Injuries = values[4]
	w.RecentForm = values[5]
	w.RestTravel = values[6]
	return w
}

// ForFactor returns the weight assigned to a named factor
func (w WeightTable) ForFactor(name models.FactorName) float64 {
	switch name {
	case models.FactorTeamStrength:
		return w.TeamStrength
	case models.FactorHomeAdvantage:
		return w.HomeAdvantage
	case models.FactorWeather:
		return w.Weather
	case models.FactorHeadToHead:
		return w.HeadToHead
	case models.FactorInjuries:
		return w.Injuries
	case models.FactorRecentForm:
		return w.RecentForm
	case models.FactorRestTravel:
		return w.RestTravel
	default:
		return 0
	}
}

// Sum returns the total of all weights
func (w WeightTable) Sum() float64 {
	total := 0.0
	for _, v := range w.Values() {
		total += v
	}
	return total
}

// Validate checks the normalization invariant and that no weight is negative
func (w WeightTable) Validate() error {
	sum := w.Sum()
	if math.Abs(sum-1.0) > WeightTolerance {
		return &models.WeightNormalizationError{Sum: sum}
	}
	for _, v := range w.Values() {
		if v < 0 {
			return &models.WeightNormalizationError{Sum: sum}
		}
	}
	return nil
}

// Normalized returns a copy rescaled so the weights sum to exactly 1.0.
// A table with a non-positive sum is returned unchanged.
func (w WeightTable) Normalized() WeightTable {
	sum := w.Sum()
	if sum <= 0 {
		return w
	}
	values := w.Values()
	for i := range values {
		values[i] /= sum
	}
	out := FromValues(values)
	out.Version = w.Version
	return out
}

// Store holds the process-wide weight table. Readers take an immutable
// snapshot per batch; the tuner publishes replacements via an atomic swap so
// concurrent readers never observe a partially updated table.
type Store struct {
	current atomic.Pointer[WeightTable]
}

// NewStore creates a store seeded with a validated weight table
func NewStore(table WeightTable) (*Store, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if table.Version == 0 {
		table.Version = 1
	}
	s := &Store{}
	s.current.Store(&table)
	return s, nil
}

// Snapshot returns the current weight table. The returned pointer is shared
// and must not be mutated.
func (s *Store) Snapshot() *WeightTable {
	return s.current.Load()
}

// Version returns the version of the current table.
func (s *Store) Version() int {
	return s.current.Load().Version
}

// Publish validates a new table and swaps it in with a bumped version.
// In-flight batches keep using the snapshot they started with.
func (s *Store) Publish(table WeightTable) (*WeightTable, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	prev := s.current.Load()
	table.Version = prev.Version + 1
	s.current.Store(&table)
	return &table, nil
}
