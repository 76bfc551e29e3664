// Package main provides the entry point for the prediction engine service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/gridiron-engine/internal/api"
	"github.com/yourusername/gridiron-engine/internal/backtest"
	"github.com/yourusername/gridiron-engine/internal/config"
	"github.com/yourusername/gridiron-engine/internal/database"
	"github.com/yourusername/gridiron-engine/internal/datasource"
	"github.com/yourusername/gridiron-engine/internal/engine"
	"github.com/yourusername/gridiron-engine/internal/health"
	"github.com/yourusername/gridiron-engine/internal/logger"
	"github.com/yourusername/gridiron-engine/internal/metrics"
	"github.com/yourusername/gridiron-engine/internal/repository"
	"github.com/yourusername/gridiron-engine/internal/scheduler"
	"github.com/yourusername/gridiron-engine/internal/service"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to config file")
	flag.Parse()

	cfg := loadConfigWithSecrets(*configPath)

	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     version,
	}).Info("Prediction engine starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	appLog.Info("Database connection established")

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

	metrics.InitRegistry()
	metrics.UpdateWeights(store.Version(), cfg.Engine.Weights)

	// Feed plumbing
	feedLog := log.New(os.Stdout, "feed: ", log.LstdFlags)
	httpCfg := datasource.DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.FeedTimeout()
	httpCfg.MaxRetries = cfg.Feed.MaxRetries
	httpCfg.RateLimit = cfg.Feed.RateLimitPerSecond
	httpClient := datasource.NewRateLimitedHTTPClient(httpCfg, feedLog)
	defer httpClient.Close()

	feed := datasource.NewFeedClient(httpClient, cfg.Feed.BaseURL, cfg.Feed.APIKey, feedLog)
	syncSvc := service.NewSyncService(feed, repos, appLog)

	builder := service.NewContextBuilder(repos.Game, syncSvc, appLog)
	predictionSvc := service.NewPredictionService(repos, generator, store, builder, cfg.SummaryCacheTTL(), appLog)

	// Backtests replay history only. No live injury data.
	historyBuilder := service.NewContextBuilder(repos.Game, nil, appLog)
	backtestSvc := service.NewBacktestService(repos, generator, historyBuilder, bettingConfig(cfg), appLog)
	if cfg.Backtest.Workers > 0 {
		backtestSvc.SetWorkers(cfg.Backtest.Workers)
	}

	// Health server
	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     version,
		Port:        fmt.Sprintf("%d", cfg.API.HealthPort),
		Logger:      appLog,
		DB:          db,
		Weights:     store,
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	// Metrics server
	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Path, metrics.Handler())
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			appLog.WithField("addr", addr).Info("Metrics server starting")
			if err := http.ListenAndServe(addr, mux); err != nil {
				appLog.WithError(err).Error("Metrics server error")
			}
		}()
	}

	// Live game stream
	if cfg.Feed.StreamURL != "" {
		stream := datasource.NewStreamClient(cfg.Feed.StreamURL, cfg.Feed.APIKey, feedLog)
		stream.AddHandler(syncSvc.HandleStreamUpdate)
		go func() {
			if err := stream.Run(ctx); err != nil && ctx.Err() == nil {
				appLog.WithError(err).Error("Game stream terminated")
			}
		}()
	}

	// Scheduler
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(syncSvc, predictionSvc, backtestSvc, appLog)
		if cfg.Scheduler.PredictionSchedule != "" {
			if err := sched.SchedulePredictions(cfg.Scheduler.PredictionSchedule); err != nil {
				appLog.WithError(err).Fatal("Failed to schedule predictions")
			}
		}
		if cfg.Scheduler.BacktestSchedule != "" {
			if err := sched.ScheduleBacktest(cfg.Scheduler.BacktestSchedule); err != nil {
				appLog.WithError(err).Fatal("Failed to schedule backtests")
			}
		}
		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
	}

	// Query API
	apiServer := api.NewServer(predictionSvc, store, cfg.API.Port,
		time.Duration(cfg.API.TimeoutSeconds)*time.Second, appLog)
	go func() {
		if err := apiServer.Start(ctx); err != nil {
			appLog.WithError(err).Error("API server error")
			cancel()
		}
	}()

	healthServer.SetReady(true)
	appLog.Info("Prediction engine running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		appLog.WithField("signal", sig).Info("Shutdown signal received")
	case <-ctx.Done():
	}

	healthServer.SetReady(false)
	cancel()

	if sched != nil {
		if err := sched.Stop(); err != nil {
			appLog.WithError(err).Error("Error stopping scheduler")
		}
	}

	// Give in-flight requests time to drain.
	time.Sleep(2 * time.Second)

	appLog.Info("Prediction engine shut down")
}

func bettingConfig(cfg *config.Config) backtest.BettingConfig {
	betting := backtest.DefaultBettingConfig()
	if cfg.Backtest.BettingStake > 0 {
		betting.Stake = decimal.NewFromFloat(cfg.Backtest.BettingStake)
	}
	if cfg.Backtest.BettingMinConfidence > 0 {
		betting.MinConfidence = cfg.Backtest.BettingMinConfidence
	}
	return betting
}

func loadConfigWithSecrets(path string) *config.Config {
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
