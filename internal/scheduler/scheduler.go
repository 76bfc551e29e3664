// Package scheduler runs the recurring feed sync, prediction and backtest
// jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/gridiron-engine/internal/service"
)

// syncLookbackDays is how far back each scheduled sync refreshes games, so
// late score corrections are picked up.
const syncLookbackDays = 7

// syncLookaheadDays is how far ahead each scheduled sync fetches the slate.
const syncLookaheadDays = 14

// Scheduler manages the recurring engine jobs
type Scheduler struct {
	cron        *cron.Cron
	sync        *service.SyncService
	predictions *service.PredictionService
	backtests   *service.BacktestService
	logger      *logrus.Logger
	mu          sync.RWMutex
	isRunning   bool
	jobIDs      []cron.EntryID
}

// NewScheduler creates a new scheduler
func NewScheduler(
	syncSvc *service.SyncService,
	predictions *service.PredictionService,
	backtests *service.BacktestService,
	logger *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(time.UTC)),
		sync:        syncSvc,
		predictions: predictions,
		backtests:   backtests,
		logger:      logger,
		jobIDs:      make([]cron.EntryID, 0),
	}
}

// SchedulePredictions schedules the feed sync plus prediction job. Each run
// refreshes teams, games and injuries before predicting the upcoming slate.
func (s *Scheduler) SchedulePredictions(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		now := time.Now().UTC()
		start := now.AddDate(0, 0, -syncLookbackDays)
		end := now.AddDate(0, 0, syncLookaheadDays)

		if err := s.sync.SyncAll(ctx, start, end); err != nil {
			s.logger.WithError(err).Error("Scheduled feed sync failed")
			return
		}

		if _, err := s.predictions.PredictUpcoming(ctx, 0); err != nil {
			s.logger.WithError(err).Error("Scheduled prediction run failed")
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add prediction job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("schedule", cronExpression).Info("Scheduled prediction job")

	return nil
}

// ScheduleBacktest schedules the recurring backtest over the trailing season
func (s *Scheduler) ScheduleBacktest(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()

		end := time.Now().UTC()
		start := end.AddDate(0, -6, 0)

		report, err := s.backtests.Run(ctx, start, end)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled backtest failed")
			return
		}

		s.logger.WithFields(logrus.Fields{
			"scored":   report.Summary.TotalResults,
			"hit_rate": report.Summary.HitRate,
		}).Info("Scheduled backtest complete")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add backtest job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("schedule", cronExpression).Info("Scheduled backtest job")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}
