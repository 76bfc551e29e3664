// Package main provides a one-shot prediction CLI tool.
package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/gridiron-engine/internal/config"
	"github.com/yourusername/gridiron-engine/internal/database"
	"github.com/yourusername/gridiron-engine/internal/datasource"
	"github.com/yourusername/gridiron-engine/internal/engine"
	"github.com/yourusername/gridiron-engine/internal/logger"
	"github.com/yourusername/gridiron-engine/internal/models"
	"github.com/yourusername/gridiron-engine/internal/repository"
	"github.com/yourusername/gridiron-engine/internal/service"
)

const (
	syncLookbackDays  = 7
	syncLookaheadDays = 14
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		gameID     = flag.String("game", "", "Predict a single game by ID instead of all upcoming")
		limit      = flag.Int("limit", 100, "Maximum upcoming games to predict")
		noSync     = flag.Bool("no-sync", false, "Skip the feed sync before predicting")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		stdlog.Fatalf("Invalid configuration: %v", err)
	}
	appLog := logger.NewLogger(cfg.App.LogLevel)

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
	if cfg.Engine.Workers > 0 {
		generator.SetWorkers(cfg.Engine.Workers)
	}

	feedLog := stdlog.New(os.Stdout, "feed: ", stdlog.LstdFlags)
	httpCfg := datasource.DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.FeedTimeout()
	httpCfg.MaxRetries = cfg.Feed.MaxRetries
	httpCfg.RateLimit = cfg.Feed.RateLimitPerSecond
	httpClient := datasource.NewRateLimitedHTTPClient(httpCfg, feedLog)
	defer httpClient.Close()

	feed := datasource.NewFeedClient(httpClient, cfg.Feed.BaseURL, cfg.Feed.APIKey, feedLog)
	syncSvc := service.NewSyncService(feed, repos, appLog)

	if !*noSync {
		now := time.Now().UTC()
		start := now.AddDate(0, 0, -syncLookbackDays)
		end := now.AddDate(0, 0, syncLookaheadDays)
		if err := syncSvc.SyncAll(ctx, start, end); err != nil {
			appLog.WithError(err).Warn("Feed sync failed, predicting from stored data")
		}
	}

	builder := service.NewContextBuilder(repos.Game, syncSvc, appLog)
	svc := service.NewPredictionService(repos, generator, store, builder, cfg.SummaryCacheTTL(), appLog)

	if *gameID != "" {
		id, err := uuid.Parse(*gameID)
		if err != nil {
			appLog.WithError(err).Fatal("Invalid game ID")
		}
		prediction, err := svc.PredictGame(ctx, id)
		if err != nil {
			appLog.WithError(err).Fatal("Prediction failed")
		}
		printPrediction(prediction)
		return
	}

	batch, err := svc.PredictUpcoming(ctx, *limit)
	if err != nil {
		appLog.WithError(err).Fatal("Prediction batch failed")
	}

	for _, prediction := range batch.Predictions {
		printPrediction(prediction)
	}
	for _, failure := range batch.Failures {
		fmt.Printf("skipped %s: %s\n", failure.GameID, failure.Reason)
	}
	fmt.Printf("\n%d predictions, %d skipped, %.2fs\n",
		len(batch.Predictions), batch.Skipped+len(batch.Failures), batch.Elapsed.Seconds())
}

func printPrediction(p *models.Prediction) {
	winner := p.HomeTeam
	if p.PredictedWinner == models.SideAway {
		winner = p.AwayTeam
	}
	fmt.Printf("%s @ %s: %s by %.1f (%.1f%% confidence)\n",
		p.AwayTeam, p.HomeTeam, winner, absFloat(p.SpreadPrediction), p.Confidence)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
