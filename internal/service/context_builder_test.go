package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/gridiron-engine/internal/factors"
	"github.com/yourusername/gridiron-engine/internal/models"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func serviceTeam(name, abbr string, rating float64) *models.Team {
	return &models.Team{
		ID:           uuid.New(),
		ExternalID:   abbr,
		Name:         name,
		Abbreviation: abbr,
		Rating:       rating,
	}
}

func serviceKickoff() time.Time {
	return time.Date(2025, 11, 9, 18, 0, 0, 0, time.UTC)
}

func upcomingMatchup(home, away *models.Team) *models.Game {
	return &models.Game{
		ID:         uuid.New(),
		ExternalID: "game-upcoming",
		Kickoff:    serviceKickoff(),
		HomeTeam:   home,
		AwayTeam:   away,
		Status:     models.GameStatusScheduled,
	}
}

func finishedAt(kickoff time.Time, home, away *models.Team, homePts, awayPts int) *models.Game {
	return &models.Game{
		ID:         uuid.New(),
		ExternalID: "hist-" + kickoff.Format("2006-01-02"),
		Kickoff:    kickoff,
		HomeTeam:   home,
		AwayTeam:   away,
		Status:     models.GameStatusCompleted,
		HomePoints: &homePts,
		AwayPoints: &awayPts,
	}
}

type staticInjuries struct {
	reports map[uuid.UUID]factors.InjuryReport
}

func (p *staticInjuries) InjuryReport(teamID uuid.UUID) (factors.InjuryReport, bool) {
	report, ok := p.reports[teamID]
	return report, ok
}

func TestBuildOrdersHistoryOldestFirst(t *testing.T) {
	home := serviceTeam("Home", "HOM", 0.6)
	away := serviceTeam("Away", "AWY", 0.5)
	games := newFakeGameRepo()

	// Repositories return newest first; evaluators expect oldest first.
	newest := finishedAt(serviceKickoff().AddDate(0, 0, -7), home, away, 24, 17)
	middle := finishedAt(serviceKickoff().AddDate(0, 0, -14), home, away, 10, 13)
	oldest := finishedAt(serviceKickoff().AddDate(0, 0, -21), home, away, 21, 21)
	games.headToHead = []*models.Game{newest, middle, oldest}
	games.recentByTeam[home.ID] = []*models.Game{newest, middle}
	games.recentByTeam[away.ID] = []*models.Game{newest}

	builder := NewContextBuilder(games, nil, quietLogger())
	fctx, err := builder.Build(context.Background(), upcomingMatchup(home, away), serviceKickoff())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if len(fctx.Matchups) != 3 {
		t.Fatalf("expected 3 matchups, got %d", len(fctx.Matchups))
	}
	if fctx.Matchups[0] != oldest || fctx.Matchups[2] != newest {
		t.Error("matchups not in chronological order")
	}
	if len(fctx.RecentHome) != 2 || fctx.RecentHome[0] != middle {
		t.Error("recent home games not in chronological order")
	}
	if fctx.AsOf != serviceKickoff() {
		t.Errorf("expected AsOf %v, got %v", serviceKickoff(), fctx.AsOf)
	}
}

func TestBuildSetsLastGameTimes(t *testing.T) {
	home := serviceTeam("Home", "HOM", 0.6)
	away := serviceTeam("Away", "AWY", 0.5)
	games := newFakeGameRepo()

	lastHome := finishedAt(serviceKickoff().AddDate(0, 0, -7), home, away, 24, 17)
	priorHome := finishedAt(serviceKickoff().AddDate(0, 0, -14), home, away, 10, 13)
	games.recentByTeam[home.ID] = []*models.Game{lastHome, priorHome}

	builder := NewContextBuilder(games, nil, quietLogger())
	fctx, err := builder.Build(context.Background(), upcomingMatchup(home, away), serviceKickoff())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if fctx.LastGameHome == nil {
		t.Fatal("expected LastGameHome to be set")
	}
	if !fctx.LastGameHome.Equal(lastHome.Kickoff) {
		t.Errorf("expected last home game %v, got %v", lastHome.Kickoff, *fctx.LastGameHome)
	}
	if fctx.LastGameAway != nil {
		t.Error("expected LastGameAway to be nil without history")
	}
}

func TestBuildToleratesRepositoryErrors(t *testing.T) {
	home := serviceTeam("Home", "HOM", 0.6)
	away := serviceTeam("Away", "AWY", 0.5)
	games := newFakeGameRepo()
	games.queryErr = errors.New("connection reset")

	builder := NewContextBuilder(games, nil, quietLogger())
	fctx, err := builder.Build(context.Background(), upcomingMatchup(home, away), serviceKickoff())
	if err != nil {
		t.Fatalf("Build should tolerate query errors, got: %v", err)
	}

	if fctx.Matchups != nil || fctx.RecentHome != nil || fctx.RecentAway != nil {
		t.Error("expected neutral context when history queries fail")
	}
	if fctx.LastGameHome != nil || fctx.LastGameAway != nil {
		t.Error("expected no rest data when history queries fail")
	}
}

func TestBuildWithoutTeamsReturnsNeutralContext(t *testing.T) {
	games := newFakeGameRepo()
	builder := NewContextBuilder(games, nil, quietLogger())

	game := &models.Game{
		ID:         uuid.New(),
		ExternalID: "game-unresolved",
		Kickoff:    serviceKickoff(),
		Status:     models.GameStatusScheduled,
	}

	fctx, err := builder.Build(context.Background(), game, serviceKickoff())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if fctx.AsOf != serviceKickoff() {
		t.Error("expected AsOf to be set even without teams")
	}
	if fctx.Matchups != nil || fctx.Injuries != nil {
		t.Error("expected empty context for game without resolved teams")
	}
}

func TestBuildAttachesInjuryReports(t *testing.T) {
	home := serviceTeam("Home", "HOM", 0.6)
	away := serviceTeam("Away", "AWY", 0.5)
	games := newFakeGameRepo()

	provider := &staticInjuries{reports: map[uuid.UUID]factors.InjuryReport{
		home.ID: {KeyPlayersOut: 2, TotalOut: 5},
	}}

	builder := NewContextBuilder(games, provider, quietLogger())
	fctx, err := builder.Build(context.Background(), upcomingMatchup(home, away), serviceKickoff())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if len(fctx.Injuries) != 1 {
		t.Fatalf("expected 1 injury report, got %d", len(fctx.Injuries))
	}
	report, ok := fctx.Injuries[home.ID]
	if !ok || report.KeyPlayersOut != 2 {
		t.Errorf("expected home injury report with 2 key players out, got %+v", report)
	}
	if _, ok := fctx.Injuries[away.ID]; ok {
		t.Error("away team has no report and should not appear")
	}
}

func TestBuildWithoutProviderLeavesInjuriesNil(t *testing.T) {
	home := serviceTeam("Home", "HOM", 0.6)
	away := serviceTeam("Away", "AWY", 0.5)

	builder := NewContextBuilder(newFakeGameRepo(), nil, quietLogger())
	fctx, err := builder.Build(context.Background(), upcomingMatchup(home, away), serviceKickoff())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if fctx.Injuries != nil {
		t.Error("expected nil injuries without a provider")
	}
}
