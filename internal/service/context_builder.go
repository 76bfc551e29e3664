// Package service wires the prediction engine to persistence and the
// external data feed.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/gridiron-engine/internal/factors"
	"github.com/yourusername/gridiron-engine/internal/models"
	"github.com/yourusername/gridiron-engine/internal/repository"
)

const (
	// historyWindow bounds the completed games fetched per team.
	historyWindow = 5
	// matchupHistoryWindow bounds prior meetings fetched per matchup.
	matchupHistoryWindow = 5
)

// InjuryProvider supplies current injury reports keyed by team ID. The feed
// sync service implements this; a nil provider means no injury data.
type InjuryProvider interface {
	InjuryReport(teamID uuid.UUID) (factors.InjuryReport, bool)
}

// ContextBuilder assembles factor evaluation contexts from stored history.
// All queries are restricted to games before the asOf cutoff so backtests
// never see future results.
type ContextBuilder struct {
	games    repository.GameRepository
	injuries InjuryProvider
	logger   *logrus.Logger
}

// NewContextBuilder creates a context builder
func NewContextBuilder(games repository.GameRepository, injuries InjuryProvider, logger *logrus.Logger) *ContextBuilder {
	return &ContextBuilder{
		games:    games,
		injuries: injuries,
		logger:   logger,
	}
}

// Build assembles the evaluation context for a game at decision time asOf.
// Missing history is tolerated: evaluators treat absent data as neutral, so
// the builder logs and continues rather than failing the prediction.
func (b *ContextBuilder) Build(ctx context.Context, game *models.Game, asOf time.Time) (*factors.Context, error) {
	fctx := &factors.Context{AsOf: asOf}

	if !game.HasTeams() {
		return fctx, nil
	}

	matchups, err := b.games.GetHeadToHead(ctx, game.HomeTeam.ID, game.AwayTeam.ID, asOf, matchupHistoryWindow)
	if err != nil {
		b.logger.WithError(err).WithField("game_id", game.ExternalID).
			Warn("Head-to-head history unavailable, factor will be neutral")
	} else {
		fctx.Matchups = chronological(matchups)
	}

	recentHome, err := b.games.GetCompletedForTeam(ctx, game.HomeTeam.ID, asOf, historyWindow)
	if err != nil {
		b.logger.WithError(err).WithField("team", game.HomeTeam.Abbreviation).
			Warn("Recent home games unavailable, factor will be neutral")
	} else {
		fctx.RecentHome = chronological(recentHome)
	}

	recentAway, err := b.games.GetCompletedForTeam(ctx, game.AwayTeam.ID, asOf, historyWindow)
	if err != nil {
		b.logger.WithError(err).WithField("team", game.AwayTeam.Abbreviation).
			Warn("Recent away games unavailable, factor will be neutral")
	} else {
		fctx.RecentAway = chronological(recentAway)
	}

	if len(fctx.RecentHome) > 0 {
		last := fctx.RecentHome[len(fctx.RecentHome)-1].Kickoff
		fctx.LastGameHome = &last
	}
	if len(fctx.RecentAway) > 0 {
		last := fctx.RecentAway[len(fctx.RecentAway)-1].Kickoff
		fctx.LastGameAway = &last
	}

	if b.injuries != nil {
		reports := make(map[uuid.UUID]factors.InjuryReport, 2)
		if report, ok := b.injuries.InjuryReport(game.HomeTeam.ID); ok {
			reports[game.HomeTeam.ID] = report
		}
		if report, ok := b.injuries.InjuryReport(game.AwayTeam.ID); ok {
			reports[game.AwayTeam.ID] = report
		}
		if len(reports) > 0 {
			fctx.Injuries = reports
		}
	}

	return fctx, nil
}

// chronological reverses newest-first query results into oldest-first order
func chronological(games []*models.Game) []*models.Game {
	if len(games) < 2 {
		return games
	}
	out := make([]*models.Game, len(games))
	for i, g := range games {
		out[len(games)-1-i] = g
	}
	return out
}
