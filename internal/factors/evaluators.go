package factors

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/yourusername/gridiron-engine/internal/models"
)

// Point scales used to normalize raw point-differential style signals.
// fullSeasonMargin is roughly the margin a dominant team carries over a weak
// one across a season, mirroring the 14-points-per-100%-win-rate rule of thumb.
const (
	fullSeasonMargin  = 14.0
	baseHomeAdvantage = 2.5
	domeHomeAdvantage = 0.5
	matchupWindow     = 5
	minMatchups       = 3
	recentFormWindow  = 5
	minRecentGames    = 2
	keyInjuryLean     = 0.15
	depthInjuryLean   = 0.03
	longTravelMiles   = 1500.0
	standardRestDays  = 7
)

// TeamStrength computes the strength differential between the two teams from
// rolling ratings and season records.
func TeamStrength(game *models.Game, fctx *Context) models.Factor {
	home, away := game.HomeTeam, game.AwayTeam
	if home.GamesPlayed() == 0 && away.GamesPlayed() == 0 && home.Rating == 0 && away.Rating == 0 {
		return neutral(models.FactorTeamStrength, "insufficient season data for either team")
	}

	ratingDiff := home.Rating - away.Rating
	recordDiff := home.WinPercentage() - away.WinPercentage()
	raw := 0.6*ratingDiff + 0.4*recordDiff

	return models.Factor{
		Name:       models.FactorTeamStrength,
		Raw:        raw,
		Normalized: clamp(raw),
		Explanation: fmt.Sprintf("%s %.2f rating (%s) vs %s %.2f rating (%s)",
			home.Abbreviation, home.Rating, home.RecordString(),
			away.Abbreviation, away.Rating, away.RecordString()),
	}
}

// HomeAdvantage computes the standing home-field edge for the venue
func HomeAdvantage(game *models.Game, fctx *Context) models.Factor {
	points := baseHomeAdvantage
	detail := "standard home advantage"
	if game.Dome {
		points += domeHomeAdvantage
		detail = "dome home advantage (controlled conditions)"
	}

	return models.Factor{
		Name:        models.FactorHomeAdvantage,
		Raw:         points,
		Normalized:  clamp(points / fullSeasonMargin),
		Explanation: fmt.Sprintf("%s: %.1f points", detail, points),
	}
}

// WeatherImpact scores the effect of game-time weather. Harsh conditions lean
// toward the acclimated home side; indoor games are explicitly neutral.
func WeatherImpact(game *models.Game, fctx *Context) models.Factor {
	if game.Dome {
		return neutral(models.FactorWeather, "indoor game - no weather impact")
	}
	w := game.Weather
	if w == nil {
		return neutral(models.FactorWeather, "weather data unavailable")
	}

	severity := 0.0
	if w.WindMPH > 12 {
		severity += (w.WindMPH - 12) / 30
	}
	severity += w.Precipitation * 0.5
	if w.TemperatureF < 25 {
		severity += (25 - w.TemperatureF) / 50
	}
	if severity == 0 {
		return models.Factor{
			Name:        models.FactorWeather,
			Explanation: fmt.Sprintf("mild conditions (%s), no impact", w.Conditions),
		}
	}

	norm := clamp(severity * 0.3)
	return models.Factor{
		Name:       models.FactorWeather,
		Raw:        severity,
		Normalized: norm,
		Explanation: fmt.Sprintf("%s, %.0fmph wind, %.0fF: severity %.2f favors home side",
			w.Conditions, w.WindMPH, w.TemperatureF, severity),
	}
}

// HeadToHead scores recent history between the two teams as a home-relative
// average margin over the last meetings.
func HeadToHead(game *models.Game, fctx *Context) models.Factor {
	matchups := completedBefore(fctx.Matchups, fctx)
	if len(matchups) < minMatchups {
		return neutral(models.FactorHeadToHead, "limited head-to-head history")
	}
	if len(matchups) > matchupWindow {
		matchups = matchups[len(matchups)-matchupWindow:]
	}

	total := 0.0
	wins := 0
	for _, m := range matchups {
		margin, _ := m.ActualMargin()
		// Flip the margin when the current home team was the visitor.
		if m.HomeTeam == nil || m.HomeTeam.ID != game.HomeTeam.ID {
			margin = -margin
		}
		if margin > 0 {
			wins++
		}
		total += margin
	}
	avgMargin := total / float64(len(matchups))

	return models.Factor{
		Name:       models.FactorHeadToHead,
		Raw:        avgMargin,
		Normalized: squash(avgMargin, fullSeasonMargin),
		Explanation: fmt.Sprintf("last %d meetings: %s won %d, avg margin %+.1f",
			len(matchups), game.HomeTeam.Abbreviation, wins, avgMargin),
	}
}

// InjuryImpact scores the availability differential from pre-game injury
// reports. Positive values mean the away team is more depleted.
func InjuryImpact(game *models.Game, fctx *Context) models.Factor {
	if fctx.Injuries == nil {
		return neutral(models.FactorInjuries, "injury reports unavailable")
	}
	homeReport, homeOK := fctx.Injuries[game.HomeTeam.ID]
	awayReport, awayOK := fctx.Injuries[game.AwayTeam.ID]
	if !homeOK && !awayOK {
		return neutral(models.FactorInjuries, "injury reports unavailable")
	}

	keyDiff := float64(awayReport.KeyPlayersOut - homeReport.KeyPlayersOut)
	depthDiff := float64(awayReport.TotalOut - homeReport.TotalOut)
	raw := keyDiff*keyInjuryLean + depthDiff*depthInjuryLean

	return models.Factor{
		Name:       models.FactorInjuries,
		Raw:        raw,
		Normalized: clamp(raw),
		Explanation: fmt.Sprintf("key players out: %s %d, %s %d",
			game.HomeTeam.Abbreviation, homeReport.KeyPlayersOut,
			game.AwayTeam.Abbreviation, awayReport.KeyPlayersOut),
	}
}

// RecentForm compares win rates over each team's recent completed games
func RecentForm(game *models.Game, fctx *Context) models.Factor {
	homeGames := completedBefore(fctx.RecentHome, fctx)
	awayGames := completedBefore(fctx.RecentAway, fctx)
	if len(homeGames) < minRecentGames || len(awayGames) < minRecentGames {
		return neutral(models.FactorRecentForm, "insufficient recent games for form trend")
	}

	homeForm := winRateFor(game.HomeTeam.ID, lastN(homeGames, recentFormWindow))
	awayForm := winRateFor(game.AwayTeam.ID, lastN(awayGames, recentFormWindow))
	raw := homeForm - awayForm

	return models.Factor{
		Name:       models.FactorRecentForm,
		Raw:        raw,
		Normalized: clamp(raw),
		Explanation: fmt.Sprintf("recent form: %s %.0f%% vs %s %.0f%%",
			game.HomeTeam.Abbreviation, homeForm*100,
			game.AwayTeam.Abbreviation, awayForm*100),
	}
}

// RestTravel scores the rest-day differential and the away side's travel burden
func RestTravel(game *models.Game, fctx *Context) models.Factor {
	homeRest := restDays(fctx.LastGameHome, game.Kickoff)
	awayRest := restDays(fctx.LastGameAway, game.Kickoff)
	if homeRest < 0 && awayRest < 0 {
		return neutral(models.FactorRestTravel, "rest data unavailable")
	}

	raw := 0.0
	detail := ""
	if homeRest >= 0 && awayRest >= 0 {
		raw += float64(homeRest-awayRest) / float64(standardRestDays) * 0.5
		detail = fmt.Sprintf("rest: %s %dd vs %s %dd",
			game.HomeTeam.Abbreviation, homeRest, game.AwayTeam.Abbreviation, awayRest)
	}
	if fctx.TravelMilesAway > 0 {
		raw += fctx.TravelMilesAway / longTravelMiles * 0.2
		if detail != "" {
			detail += ", "
		}
		detail += fmt.Sprintf("away travel %.0fmi", fctx.TravelMilesAway)
	}
	if detail == "" {
		detail = "partial rest data"
	}

	return models.Factor{
		Name:        models.FactorRestTravel,
		Raw:         raw,
		Normalized:  clamp(raw),
		Explanation: detail,
	}
}

func completedBefore(games []*models.Game, fctx *Context) []*models.Game {
	filtered := make([]*models.Game, 0, len(games))
	for _, g := range games {
		if !g.IsCompleted() {
			continue
		}
		if !g.Kickoff.Before(fctx.AsOf) {
			continue
		}
		filtered = append(filtered, g)
	}
	return filtered
}

func lastN(games []*models.Game, n int) []*models.Game {
	if len(games) <= n {
		return games
	}
	return games[len(games)-n:]
}

func winRateFor(teamID uuid.UUID, games []*models.Game) float64 {
	if len(games) == 0 {
		return 0
	}
	wins := 0
	for _, g := range games {
		winner, ok := g.ActualWinner()
		if !ok {
			continue
		}
		switch winner {
		case models.SideHome:
			if g.HomeTeam != nil && g.HomeTeam.ID == teamID {
				wins++
			}
		case models.SideAway:
			if g.AwayTeam != nil && g.AwayTeam.ID == teamID {
				wins++
			}
		}
	}
	return float64(wins) / float64(len(games))
}
