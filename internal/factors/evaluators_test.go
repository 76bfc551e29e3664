package factors

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/gridiron-engine/internal/models"
)

var kickoff = time.Date(2025, 11, 2, 18, 0, 0, 0, time.UTC)

func newTeam(abbr string, wins, losses int, rating float64) *models.Team {
	return &models.Team{
		ID:           uuid.New(),
		ExternalID:   "team-" + abbr,
		Name:         abbr,
		Abbreviation: abbr,
		Wins:         wins,
		Losses:       losses,
		Rating:       rating,
	}
}

func newMatchup(home, away *models.Team) *models.Game {
	return &models.Game{
		ID:         uuid.New(),
		ExternalID: "game-" + home.Abbreviation + "-" + away.Abbreviation,
		Kickoff:    kickoff,
		HomeTeam:   home,
		AwayTeam:   away,
		Status:     models.GameStatusScheduled,
	}
}

func completedGame(home, away *models.Team, homePoints, awayPoints int, daysAgo int) *models.Game {
	hp, ap := homePoints, awayPoints
	return &models.Game{
		ID:         uuid.New(),
		Kickoff:    kickoff.AddDate(0, 0, -daysAgo),
		HomeTeam:   home,
		AwayTeam:   away,
		Status:     models.GameStatusCompleted,
		HomePoints: &hp,
		AwayPoints: &ap,
	}
}

func emptyContext() *Context {
	return &Context{AsOf: kickoff}
}

func TestEvaluatorsAreDeterministic(t *testing.T) {
	home := newTeam("HOM", 6, 2, 0.7)
	away := newTeam("AWY", 3, 5, 0.4)
	game := newMatchup(home, away)
	game.Weather = &models.WeatherSnapshot{TemperatureF: 18, WindMPH: 22, Precipitation: 0.4, Conditions: "snow"}

	fctx := &Context{
		AsOf: kickoff,
		Matchups: []*models.Game{
			completedGame(home, away, 24, 17, 365),
			completedGame(away, home, 20, 27, 180),
			completedGame(home, away, 31, 10, 30),
		},
		RecentHome: []*models.Game{
			completedGame(home, newTeam("XX", 0, 0, 0), 28, 14, 14),
			completedGame(newTeam("YY", 0, 0, 0), home, 10, 21, 7),
		},
		RecentAway: []*models.Game{
			completedGame(away, newTeam("ZZ", 0, 0, 0), 10, 24, 14),
			completedGame(newTeam("WW", 0, 0, 0), away, 30, 13, 7),
		},
		Injuries: map[uuid.UUID]InjuryReport{
			home.ID: {KeyPlayersOut: 0, TotalOut: 2},
			away.ID: {KeyPlayersOut: 2, TotalOut: 5},
		},
		LastGameHome:    timePtr(kickoff.AddDate(0, 0, -7)),
		LastGameAway:    timePtr(kickoff.AddDate(0, 0, -4)),
		TravelMilesAway: 2000,
	}

	for name, ev := range All() {
		first := ev(game, fctx)
		second := ev(game, fctx)
		if first != second {
			t.Errorf("%s: repeated evaluation differs: %+v vs %+v", name, first, second)
		}
	}
}

func TestAllFactorsBounded(t *testing.T) {
	home := newTeam("HOM", 9, 0, 1.0)
	away := newTeam("AWY", 0, 9, 0.0)
	game := newMatchup(home, away)
	game.Weather = &models.WeatherSnapshot{TemperatureF: -20, WindMPH: 60, Precipitation: 1.0, Conditions: "blizzard"}

	fctx := &Context{
		AsOf: kickoff,
		Injuries: map[uuid.UUID]InjuryReport{
			home.ID: {},
			away.ID: {KeyPlayersOut: 10, TotalOut: 20},
		},
		LastGameHome:    timePtr(kickoff.AddDate(0, 0, -14)),
		LastGameAway:    timePtr(kickoff.AddDate(0, 0, -3)),
		TravelMilesAway: 6000,
	}

	for name, ev := range All() {
		f := ev(game, fctx)
		if f.Normalized < -1 || f.Normalized > 1 {
			t.Errorf("%s: normalized value %f outside [-1, 1]", name, f.Normalized)
		}
	}
}

func TestOrderedMatchesCanonicalOrder(t *testing.T) {
	ordered := Ordered()
	if len(ordered) != models.FactorCount {
		t.Fatalf("expected %d evaluators, got %d", models.FactorCount, len(ordered))
	}

	home := newTeam("HOM", 4, 4, 0.5)
	away := newTeam("AWY", 4, 4, 0.5)
	game := newMatchup(home, away)
	for i, ev := range ordered {
		f := ev(game, emptyContext())
		if f.Name != models.FactorNames()[i] {
			t.Errorf("position %d: got factor %s, want %s", i, f.Name, models.FactorNames()[i])
		}
	}
}

func TestTeamStrengthFavorsStrongerTeam(t *testing.T) {
	home := newTeam("HOM", 7, 1, 0.8)
	away := newTeam("AWY", 2, 6, 0.3)
	f := TeamStrength(newMatchup(home, away), emptyContext())
	if f.Normalized <= 0 {
		t.Errorf("expected positive lean for stronger home team, got %f", f.Normalized)
	}

	flipped := TeamStrength(newMatchup(away, home), emptyContext())
	if flipped.Normalized >= 0 {
		t.Errorf("expected negative lean for weaker home team, got %f", flipped.Normalized)
	}
}

func TestTeamStrengthNoSeasonData(t *testing.T) {
	home := newTeam("HOM", 0, 0, 0)
	away := newTeam("AWY", 0, 0, 0)
	f := TeamStrength(newMatchup(home, away), emptyContext())
	if f.Normalized != 0 {
		t.Errorf("expected neutral factor with no season data, got %f", f.Normalized)
	}
	if f.Explanation == "" {
		t.Error("expected explanation for neutral factor")
	}
}

func TestHomeAdvantageAlwaysPositive(t *testing.T) {
	game := newMatchup(newTeam("HOM", 4, 4, 0.5), newTeam("AWY", 4, 4, 0.5))
	outdoor := HomeAdvantage(game, emptyContext())
	if outdoor.Normalized <= 0 {
		t.Errorf("expected positive home advantage, got %f", outdoor.Normalized)
	}

	game.Dome = true
	dome := HomeAdvantage(game, emptyContext())
	if dome.Normalized <= outdoor.Normalized {
		t.Errorf("expected dome advantage %f to exceed outdoor %f", dome.Normalized, outdoor.Normalized)
	}
}

func TestWeatherImpactDomeNeutral(t *testing.T) {
	game := newMatchup(newTeam("HOM", 4, 4, 0.5), newTeam("AWY", 4, 4, 0.5))
	game.Dome = true
	game.Weather = &models.WeatherSnapshot{WindMPH: 40, TemperatureF: 0, Precipitation: 1}

	f := WeatherImpact(game, emptyContext())
	if f.Normalized != 0 {
		t.Errorf("expected dome game to zero weather impact, got %f", f.Normalized)
	}
}

func TestWeatherImpactMissingData(t *testing.T) {
	game := newMatchup(newTeam("HOM", 4, 4, 0.5), newTeam("AWY", 4, 4, 0.5))
	f := WeatherImpact(game, emptyContext())
	if f.Normalized != 0 {
		t.Errorf("expected neutral factor with no weather data, got %f", f.Normalized)
	}
}

func TestWeatherImpactHarshConditionsFavorHome(t *testing.T) {
	game := newMatchup(newTeam("HOM", 4, 4, 0.5), newTeam("AWY", 4, 4, 0.5))
	game.Weather = &models.WeatherSnapshot{TemperatureF: 10, WindMPH: 25, Precipitation: 0.8, Conditions: "sleet"}

	f := WeatherImpact(game, emptyContext())
	if f.Normalized <= 0 {
		t.Errorf("expected harsh weather to lean home, got %f", f.Normalized)
	}
}

func TestHeadToHeadRequiresMinimumHistory(t *testing.T) {
	home := newTeam("HOM", 4, 4, 0.5)
	away := newTeam("AWY", 4, 4, 0.5)
	game := newMatchup(home, away)

	fctx := &Context{
		AsOf: kickoff,
		Matchups: []*models.Game{
			completedGame(home, away, 21, 14, 400),
			completedGame(away, home, 17, 20, 200),
		},
	}
	f := HeadToHead(game, fctx)
	if f.Normalized != 0 {
		t.Errorf("expected neutral factor below minimum matchup count, got %f", f.Normalized)
	}
}

func TestHeadToHeadFlipsVisitorMargins(t *testing.T) {
	home := newTeam("HOM", 4, 4, 0.5)
	away := newTeam("AWY", 4, 4, 0.5)
	game := newMatchup(home, away)

	// Home side won every prior meeting, twice as the visitor.
	fctx := &Context{
		AsOf: kickoff,
		Matchups: []*models.Game{
			completedGame(home, away, 28, 10, 400),
			completedGame(away, home, 13, 24, 200),
			completedGame(away, home, 7, 21, 100),
		},
	}
	f := HeadToHead(game, fctx)
	if f.Normalized <= 0 {
		t.Errorf("expected positive lean for dominant head-to-head record, got %f", f.Normalized)
	}
}

func TestHeadToHeadIgnoresGamesAfterAsOf(t *testing.T) {
	home := newTeam("HOM", 4, 4, 0.5)
	away := newTeam("AWY", 4, 4, 0.5)
	game := newMatchup(home, away)

	future := completedGame(home, away, 50, 0, 0)
	future.Kickoff = kickoff.AddDate(0, 0, 7)

	fctx := &Context{
		AsOf: kickoff,
		Matchups: []*models.Game{
			completedGame(home, away, 21, 20, 400),
			completedGame(home, away, 17, 16, 200),
			future,
		},
	}
	f := HeadToHead(game, fctx)
	if f.Normalized != 0 {
		t.Errorf("expected future meeting to be excluded, got %f", f.Normalized)
	}
}

func TestInjuryImpactDifferential(t *testing.T) {
	home := newTeam("HOM", 4, 4, 0.5)
	away := newTeam("AWY", 4, 4, 0.5)
	game := newMatchup(home, away)

	fctx := &Context{
		AsOf: kickoff,
		Injuries: map[uuid.UUID]InjuryReport{
			home.ID: {KeyPlayersOut: 0, TotalOut: 1},
			away.ID: {KeyPlayersOut: 3, TotalOut: 6},
		},
	}
	f := InjuryImpact(game, fctx)
	if f.Normalized <= 0 {
		t.Errorf("expected depleted away side to lean home, got %f", f.Normalized)
	}

	fctx.Injuries = nil
	if got := InjuryImpact(game, fctx); got.Normalized != 0 {
		t.Errorf("expected neutral factor without injury reports, got %f", got.Normalized)
	}
}

func TestRecentFormComparesWinRates(t *testing.T) {
	home := newTeam("HOM", 4, 4, 0.5)
	away := newTeam("AWY", 4, 4, 0.5)
	game := newMatchup(home, away)
	opp := newTeam("OPP", 0, 0, 0)

	fctx := &Context{
		AsOf: kickoff,
		RecentHome: []*models.Game{
			completedGame(home, opp, 24, 10, 21),
			completedGame(opp, home, 13, 27, 14),
			completedGame(home, opp, 30, 20, 7),
		},
		RecentAway: []*models.Game{
			completedGame(away, opp, 10, 24, 21),
			completedGame(opp, away, 31, 13, 14),
			completedGame(away, opp, 14, 17, 7),
		},
	}
	f := RecentForm(game, fctx)
	if f.Normalized <= 0 {
		t.Errorf("expected hot home team to lean home, got %f", f.Normalized)
	}
}

func TestRecentFormInsufficientGames(t *testing.T) {
	home := newTeam("HOM", 4, 4, 0.5)
	away := newTeam("AWY", 4, 4, 0.5)
	game := newMatchup(home, away)

	fctx := &Context{
		AsOf:       kickoff,
		RecentHome: []*models.Game{completedGame(home, away, 20, 10, 7)},
	}
	f := RecentForm(game, fctx)
	if f.Normalized != 0 {
		t.Errorf("expected neutral factor with too few games, got %f", f.Normalized)
	}
}

func TestRestTravelRestDifferential(t *testing.T) {
	home := newTeam("HOM", 4, 4, 0.5)
	away := newTeam("AWY", 4, 4, 0.5)
	game := newMatchup(home, away)

	// Home off a bye, away on a short week.
	fctx := &Context{
		AsOf:         kickoff,
		LastGameHome: timePtr(kickoff.AddDate(0, 0, -14)),
		LastGameAway: timePtr(kickoff.AddDate(0, 0, -4)),
	}
	f := RestTravel(game, fctx)
	if f.Normalized <= 0 {
		t.Errorf("expected rest edge to lean home, got %f", f.Normalized)
	}
}

func TestRestTravelUnknownRest(t *testing.T) {
	game := newMatchup(newTeam("HOM", 4, 4, 0.5), newTeam("AWY", 4, 4, 0.5))
	f := RestTravel(game, emptyContext())
	if f.Normalized != 0 {
		t.Errorf("expected neutral factor without rest data, got %f", f.Normalized)
	}
}

func TestRestDays(t *testing.T) {
	last := kickoff.AddDate(0, 0, -7)
	if got := restDays(&last, kickoff); got != 7 {
		t.Errorf("expected 7 rest days, got %d", got)
	}
	if got := restDays(nil, kickoff); got != -1 {
		t.Errorf("expected -1 for unknown rest, got %d", got)
	}
	future := kickoff.AddDate(0, 0, 1)
	if got := restDays(&future, kickoff); got != -1 {
		t.Errorf("expected -1 for out-of-order game time, got %d", got)
	}
}

func timePtr(t time.Time) *time.Time { return &t }
