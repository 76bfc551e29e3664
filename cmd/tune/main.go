// Package main provides the weight tuning CLI tool.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/gridiron-engine/internal/config"
	"github.com/yourusername/gridiron-engine/internal/database"
	"github.com/yourusername/gridiron-engine/internal/engine"
	applogger "github.com/yourusername/gridiron-engine/internal/logger"
	"github.com/yourusername/gridiron-engine/internal/models"
	"github.com/yourusername/gridiron-engine/internal/repository"
	"github.com/yourusername/gridiron-engine/internal/service"
	"github.com/yourusername/gridiron-engine/internal/tuner"
)

const dateLayout = "2006-01-02"

var (
	configFile string
	startDate  string
	endDate    string
	objective  string
	iterations int
	step       float64
	workers    int
	publish    bool
	historyLen int

	appLog *logrus.Logger
	cfg    *config.Config
	db     *database.DB
	repos  *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	runCmd.Flags().StringVar(&startDate, "start-date", "", "Window start (YYYY-MM-DD), defaults to backtest config")
	runCmd.Flags().StringVar(&endDate, "end-date", "", "Window end (YYYY-MM-DD), defaults to backtest config")
	runCmd.Flags().StringVar(&objective, "objective", string(tuner.ObjectiveHitRate), "Tuning objective: hit_rate, spread_error or blend")
	runCmd.Flags().IntVar(&iterations, "iterations", 0, "Maximum coordinate-descent sweeps")
	runCmd.Flags().Float64Var(&step, "step", 0, "Initial per-weight perturbation")
	runCmd.Flags().IntVar(&workers, "workers", 0, "Replay worker count per evaluation")
	runCmd.Flags().BoolVar(&publish, "publish", false, "Publish the winning table if it beats the baseline")

	historyCmd.Flags().IntVar(&historyLen, "limit", 10, "Number of entries to show")
}

var rootCmd = &cobra.Command{
	Use:   "tune",
	Short: "Search for better factor weights",
	Long:  `Search for factor weight tables that improve prediction accuracy over stored game history.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return setupDependencies(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a tuning search",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTuning(cmd.Context())
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent weight history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showHistory(cmd.Context())
	},
}

func main() {
	rootCmd.AddCommand(runCmd, historyCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}
	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	appLog = applogger.NewLogger(cfg.App.LogLevel)

	var err error
	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}
	return nil
}

// seedStore prefers the latest recorded weight table over the configured
// defaults, so successive tuning runs compound.
func seedStore(ctx context.Context) (*engine.Store, error) {
	latest, err := repos.WeightHistory.GetLatest(ctx)
	if err != nil {
		latest = nil
	} else {
		appLog.WithField("version", latest.Version).Info("Seeding from recorded weight history")
	}

	table, err := seedTable(latest, cfg.Engine.Weights)
	if err != nil {
		return nil, fmt.Errorf("invalid seed weights: %w", err)
	}
	return engine.NewStore(table)
}

// seedTable builds the seed weight table from the latest history entry,
// carrying its version forward so the next publish records version+1 instead
// of restarting the sequence. Falls back to the configured weights.
func seedTable(latest *models.WeightHistory, fallback map[string]float64) (engine.WeightTable, error) {
	values := fallback
	if latest != nil {
		values = latest.Weights
	}

	table, err := engine.FromMap(values)
	if err != nil {
		return engine.WeightTable{}, err
	}
	if latest != nil {
		table.Version = latest.Version
	}
	return table, nil
}

func runTuning(ctx context.Context) error {
	start, end, err := window()
	if err != nil {
		return err
	}

	store, err := seedStore(ctx)
	if err != nil {
		return err
	}

	builder := service.NewContextBuilder(repos.Game, nil, appLog)
	svc := service.NewTuningService(repos, store, builder, appLog)
	if workers > 0 {
		svc.SetWorkers(workers)
	}

	tunerCfg := tuner.DefaultConfig()
	tunerCfg.Objective = tuner.Objective(objective)
	if iterations > 0 {
		tunerCfg.MaxIterations = iterations
	}
	if step > 0 {
		tunerCfg.Step = step
	}

	report, err := svc.Tune(ctx, start, end, tunerCfg, publish)
	if err != nil {
		return err
	}

	result := report.Result
	fmt.Printf("Baseline score: %.4f\n", result.BaselineScore)
	fmt.Printf("Best score:     %.4f (%d iterations, %d evaluations)\n",
		result.BestScore, result.Iterations, result.Evaluations)

	fmt.Println("Best weights:")
	for _, factor := range models.FactorNames() {
		fmt.Printf("  %-15s %.4f\n", factor, result.BestWeights.ForFactor(factor))
	}

	if len(report.Importance) > 0 {
		fmt.Println("Factor importance (score drop when zeroed):")
		for _, imp := range report.Importance {
			fmt.Printf("  %-15s %+.4f\n", imp.Factor, imp.ScoreDrop)
		}
	}

	if publish && !report.Published {
		fmt.Println("No improvement over baseline, nothing published")
	} else if report.Published {
		fmt.Println("Published tuned weight table")
	}
	return nil
}

func showHistory(ctx context.Context) error {
	entries, err := repos.WeightHistory.List(ctx, historyLen)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No weight history recorded")
		return nil
	}

	for _, entry := range entries {
		fmt.Printf("v%-4d %-8s %-14s score=%.4f  %s\n",
			entry.Version, entry.Source, entry.Objective, entry.Score,
			entry.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func window() (time.Time, time.Time, error) {
	startStr := cfg.Backtest.StartDate
	endStr := cfg.Backtest.EndDate
	if startDate != "" {
		startStr = startDate
	}
	if endDate != "" {
		endStr = endDate
	}

	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", startStr, err)
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", endStr, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s precedes start date %s", endStr, startStr)
	}
	return start, end.Add(24*time.Hour - time.Nanosecond), nil
}
