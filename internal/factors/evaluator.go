package factors

import (
	"fmt"
	"math"

	"github.com/yourusername/gridiron-engine/internal/models"
)

// Evaluator computes one normalized factor for a matchup. Implementations
// must be side-effect-free and deterministic. Missing context data is not an
// error: the evaluator returns a neutral factor whose explanation notes the
// absence.
type Evaluator func(game *models.Game, fctx *Context) models.Factor

// All returns the closed evaluator set keyed by factor name
func All() map[models.FactorName]Evaluator {
	return map[models.FactorName]Evaluator{
		models.FactorTeamStrength:  TeamStrength,
		models.FactorHomeAdvantage: HomeAdvantage,
		models.FactorWeather:       WeatherImpact,
		models.FactorHeadToHead:    HeadToHead,
		models.FactorInjuries:      InjuryImpact,
		models.FactorRecentForm:    RecentForm,
		models.FactorRestTravel:    RestTravel,
	}
}

// Ordered returns the evaluators in canonical factor order. It panics if the
// evaluator set does not cover the full factor enumeration, which guards the
// closed-set contract at construction time.
func Ordered() []Evaluator {
	all := All()
	if len(all) != models.FactorCount {
		panic(fmt.Sprintf("evaluator set has %d entries, want %d", len(all), models.FactorCount))
	}
	ordered := make([]Evaluator, 0, models.FactorCount)
	for _, name := range models.FactorNames() {
		ev, ok := all[name]
		if !ok {
			panic(fmt.Sprintf("no evaluator registered for factor %s", name))
		}
		ordered = append(ordered, ev)
	}
	return ordered
}

// neutral builds the recovery factor for missing context data
func neutral(name models.FactorName, reason string) models.Factor {
	return models.Factor{
		Name:        name,
		Raw:         0,
		Normalized:  0,
		Explanation: reason,
	}
}

// clamp bounds a normalized value to [-1, 1]
func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// squash maps an unbounded raw value into (-1, 1) with the given scale
func squash(raw, scale float64) float64 {
	if scale == 0 {
		return 0
	}
	return math.Tanh(raw / scale)
}
