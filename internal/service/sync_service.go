package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/gridiron-engine/internal/datasource"
	"github.com/yourusername/gridiron-engine/internal/factors"
	"github.com/yourusername/gridiron-engine/internal/models"
	"github.com/yourusername/gridiron-engine/internal/repository"
)

// SyncService pulls teams, games and injury reports from the external feed
// into storage. It also caches the latest injury reports in memory, serving
// as the InjuryProvider for live predictions.
type SyncService struct {
	feed   datasource.GameFeed
	repos  *repository.Repositories
	logger *logrus.Logger

	mu       sync.RWMutex
	injuries map[uuid.UUID]factors.InjuryReport
}

// NewSyncService creates a feed sync service
func NewSyncService(feed datasource.GameFeed, repos *repository.Repositories, logger *logrus.Logger) *SyncService {
	return &SyncService{
		feed:     feed,
		repos:    repos,
		logger:   logger,
		injuries: make(map[uuid.UUID]factors.InjuryReport),
	}
}

// InjuryReport returns the cached injury report for a team
func (s *SyncService) InjuryReport(teamID uuid.UUID) (factors.InjuryReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.injuries[teamID]
	return report, ok
}

// SyncAll refreshes teams, games and injuries from the feed
func (s *SyncService) SyncAll(ctx context.Context, start, end time.Time) error {
	if err := s.SyncTeams(ctx); err != nil {
		return err
	}
	if err := s.SyncGames(ctx, start, end); err != nil {
		return err
	}
	return s.SyncInjuries(ctx)
}

// SyncTeams upserts the feed's team list
func (s *SyncService) SyncTeams(ctx context.Context) error {
	teams, err := s.feed.FetchTeams(ctx)
	if err != nil {
		return err
	}

	for _, data := range teams {
		team := &models.Team{
			ID:           uuid.New(),
			ExternalID:   data.SourceID,
			Name:         data.Name,
			Abbreviation: data.Abbreviation,
			Wins:         data.Wins,
			Losses:       data.Losses,
			Ties:         data.Ties,
			Rating:       data.Rating,
		}
		if existing, err := s.repos.Team.GetByExternalID(ctx, data.SourceID); err == nil {
			team.ID = existing.ID
		}

		if err := s.repos.Team.Upsert(ctx, team); err != nil {
			s.logger.WithError(err).WithField("team", data.SourceID).Error("Failed to upsert team")
		}
	}

	s.logger.WithField("teams", len(teams)).Info("Team sync complete")
	return nil
}

// SyncGames upserts games scheduled in the window. New games are created;
// known games get status and score updates.
func (s *SyncService) SyncGames(ctx context.Context, start, end time.Time) error {
	games, err := s.feed.FetchGames(ctx, start, end)
	if err != nil {
		return err
	}

	synced := 0
	for _, data := range games {
		if err := s.syncGame(ctx, data); err != nil {
			s.logger.WithError(err).WithField("game", data.SourceID).Error("Failed to sync game")
			continue
		}
		synced++
	}

	s.logger.WithFields(logrus.Fields{"fetched": len(games), "synced": synced}).Info("Game sync complete")
	return nil
}

func (s *SyncService) syncGame(ctx context.Context, data datasource.GameData) error {
	existing, err := s.repos.Game.GetByExternalID(ctx, data.SourceID)
	if err == nil {
		existing.Kickoff = data.Kickoff
		existing.Venue = data.Venue
		existing.Dome = data.Dome
		if next := models.GameStatus(data.Status); existing.CanTransitionTo(next) {
			existing.Status = next
		}
		existing.HomePoints = data.HomePoints
		existing.AwayPoints = data.AwayPoints
		return s.repos.Game.Update(ctx, existing)
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	home, err := s.repos.Team.GetByExternalID(ctx, data.HomeTeamID)
	if err != nil {
		return err
	}
	away, err := s.repos.Team.GetByExternalID(ctx, data.AwayTeamID)
	if err != nil {
		return err
	}

	game := &models.Game{
		ID:         uuid.New(),
		ExternalID: data.SourceID,
		Kickoff:    data.Kickoff,
		Venue:      data.Venue,
		Dome:       data.Dome,
		HomeTeam:   home,
		AwayTeam:   away,
		Status:     models.GameStatus(data.Status),
		HomePoints: data.HomePoints,
		AwayPoints: data.AwayPoints,
	}
	if data.TemperatureF != nil && data.WindMPH != nil && data.Precip != nil {
		game.Weather = &models.WeatherSnapshot{
			TemperatureF:  *data.TemperatureF,
			WindMPH:       *data.WindMPH,
			Precipitation: *data.Precip,
		}
		if data.Conditions != nil {
			game.Weather.Conditions = *data.Conditions
		}
	}

	return s.repos.Game.Create(ctx, game)
}

// SyncInjuries refreshes the in-memory injury cache from the feed
func (s *SyncService) SyncInjuries(ctx context.Context) error {
	injuries, err := s.feed.FetchInjuries(ctx)
	if err != nil {
		return err
	}

	latest := make(map[uuid.UUID]factors.InjuryReport, len(injuries))
	for _, data := range injuries {
		team, err := s.repos.Team.GetByExternalID(ctx, data.TeamID)
		if err != nil {
			s.logger.WithField("team", data.TeamID).Warn("Injury report for unknown team, skipping")
			continue
		}
		latest[team.ID] = factors.InjuryReport{
			KeyPlayersOut: data.KeyPlayersOut,
			TotalOut:      data.TotalOut,
		}
	}

	s.mu.Lock()
	s.injuries = latest
	s.mu.Unlock()

	s.logger.WithField("teams", len(latest)).Info("Injury sync complete")
	return nil
}

// HandleStreamUpdate applies a live game status update. Registered as a
// stream handler so scores arrive without waiting for the next sync.
func (s *SyncService) HandleStreamUpdate(update datasource.GameUpdate) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	game, err := s.repos.Game.GetByExternalID(ctx, update.GameID)
	if err != nil {
		return err
	}

	next := models.GameStatus(update.Status)
	if !game.CanTransitionTo(next) {
		s.logger.WithFields(logrus.Fields{
			"game": update.GameID,
			"from": game.Status,
			"to":   next,
		}).Warn("Ignoring invalid status transition from stream")
		return nil
	}

	return s.repos.Game.UpdateStatus(ctx, game.ID, next, update.HomePoints, update.AwayPoints)
}
