// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/gridiron-engine/internal/backtest"
	"github.com/yourusername/gridiron-engine/internal/config"
	"github.com/yourusername/gridiron-engine/internal/database"
	"github.com/yourusername/gridiron-engine/internal/engine"
	"github.com/yourusername/gridiron-engine/internal/logger"
	"github.com/yourusername/gridiron-engine/internal/models"
	"github.com/yourusername/gridiron-engine/internal/repository"
	"github.com/yourusername/gridiron-engine/internal/service"
)

const dateLayout = "2006-01-02"

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		startDate  = flag.String("start-date", "", "Override start date (YYYY-MM-DD)")
		endDate    = flag.String("end-date", "", "Override end date (YYYY-MM-DD)")
		workers    = flag.Int("workers", 0, "Override worker count")
		output     = flag.String("output", "", "Write the full report as JSON to this path")
		noPersist  = flag.Bool("no-persist", false, "Skip storing replay predictions and results")
	)
	flag.Parse()

	cfg := loadConfig(*configPath)
	appLog := logger.NewLogger(cfg.App.LogLevel)

	start, end := resolveWindow(cfg, *startDate, *endDate, appLog)

	ctx := context.Background()
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create repositories")
	}

	seed, err := engine.FromMap(cfg.Engine.Weights)
	if err != nil {
		appLog.WithError(err).Fatal("Invalid configured weights")
	}
	store, err := engine.NewStore(seed)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create weight store")
	}
	generator, err := engine.NewGenerator(store, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create generator")
	}

	betting := backtest.DefaultBettingConfig()
	if cfg.Backtest.BettingStake > 0 {
		betting.Stake = decimal.NewFromFloat(cfg.Backtest.BettingStake)
	}
	if cfg.Backtest.BettingMinConfidence > 0 {
		betting.MinConfidence = cfg.Backtest.BettingMinConfidence
	}

	builder := service.NewContextBuilder(repos.Game, nil, appLog)
	svc := service.NewBacktestService(repos, generator, builder, betting, appLog)
	if *workers > 0 {
		svc.SetWorkers(*workers)
	} else if cfg.Backtest.Workers > 0 {
		svc.SetWorkers(cfg.Backtest.Workers)
	}
	if *noPersist {
		svc.SetPersist(false)
	}

	appLog.WithFields(logrus.Fields{
		"start": start.Format(dateLayout),
		"end":   end.Format(dateLayout),
	}).Info("Starting backtest")

	report, err := svc.Run(ctx, start, end)
	if err != nil {
		appLog.WithError(err).Fatal("Backtest failed")
	}

	printSummary(report, appLog)

	if *output != "" {
		writeReport(report, *output, appLog)
	}
}

func resolveWindow(cfg *config.Config, startOverride, endOverride string, appLog *logrus.Logger) (time.Time, time.Time) {
	start, err := time.Parse(dateLayout, cfg.Backtest.StartDate)
	if err != nil {
		appLog.WithError(err).Fatal("Invalid configured start date")
	}
	end, err := time.Parse(dateLayout, cfg.Backtest.EndDate)
	if err != nil {
		appLog.WithError(err).Fatal("Invalid configured end date")
	}

	if startOverride != "" {
		start, err = time.Parse(dateLayout, startOverride)
		if err != nil {
			appLog.WithError(err).Fatal("Invalid start date override")
		}
	}
	if endOverride != "" {
		end, err = time.Parse(dateLayout, endOverride)
		if err != nil {
			appLog.WithError(err).Fatal("Invalid end date override")
		}
	}
	if end.Before(start) {
		appLog.Fatal("End date precedes start date")
	}

	// Make the end date inclusive.
	return start, end.Add(24*time.Hour - time.Nanosecond)
}

func printSummary(report *service.BacktestReport, appLog *logrus.Logger) {
	summary := report.Summary
	appLog.WithFields(logrus.Fields{
		"total_results":    summary.TotalResults,
		"correct":          summary.CorrectResults,
		"skipped":          summary.SkippedGames,
		"hit_rate":         summary.HitRate,
		"mean_spread_err":  summary.MeanAbsSpreadError,
		"mean_confidence":  summary.MeanConfidence,
		"games_per_second": summary.ThroughputPerSec,
	}).Info("Backtest summary")

	for _, name := range models.ConfidenceBuckets() {
		bucket := summary.Calibration[name]
		if bucket.Total == 0 {
			continue
		}
		appLog.WithFields(logrus.Fields{
			"bucket":   name,
			"total":    bucket.Total,
			"correct":  bucket.Correct,
			"hit_rate": bucket.HitRate,
		}).Info("Calibration bucket")
	}

	appLog.WithFields(logrus.Fields{
		"bets":   report.Betting.TotalBets,
		"wins":   report.Betting.WinningBets,
		"profit": report.Betting.ProfitLoss.StringFixed(2),
		"roi":    report.Betting.ROIPercent,
	}).Info("Betting simulation")
}

func writeReport(report *service.BacktestReport, path string, appLog *logrus.Logger) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		appLog.WithError(err).Fatal("Failed to create output directory")
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		appLog.WithError(err).Fatal("Failed to encode report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		appLog.WithError(err).Fatal("Failed to write report")
	}

	appLog.WithField("path", path).Info("Report written")
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}
