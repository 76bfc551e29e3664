package models

// FactorName identifies one of the fixed prediction factors
type FactorName string

// The closed seven-factor set. Adding a factor here requires extending the
// weight table and its normalization contract.
const (
	FactorTeamStrength  FactorName = "team_strength"
	FactorHomeAdvantage FactorName = "home_advantage"
	FactorWeather       FactorName = "weather_impact"
	FactorHeadToHead    FactorName = "head_to_head"
	FactorInjuries      FactorName = "injury_impact"
	FactorRecentForm    FactorName = "recent_form"
	FactorRestTravel    FactorName = "rest_travel"
)

// FactorNames returns the seven factor names in canonical evaluation order
func FactorNames() []FactorName {
	return []FactorName{
		FactorTeamStrength,
		FactorHomeAdvantage,
		FactorWeather,
		FactorHeadToHead,
		FactorInjuries,
		FactorRecentForm,
		FactorRestTravel,
	}
}

// FactorCount is the size of the closed factor set
const FactorCount = 7

// Factor represents one evaluated signal contributing to a prediction.
// Normalized is in [-1, 1]; positive values lean home, negative lean away.
type Factor struct {
	Name        FactorName `json:"name"`
	Raw         float64    `json:"raw"`
	Normalized  float64    `json:"normalized" validate:"gte=-1,lte=1"`
	Weight      float64    `json:"weight" validate:"gte=0,lte=1"`
	Explanation string     `json:"explanation"`
}

// IsNeutral reports whether the factor contributed no lean, which is the
// recovery value when required context data is missing.
func (f Factor) IsNeutral() bool {
	return f.Normalized == 0
}
