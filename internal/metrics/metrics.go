// Package metrics provides the centralized Prometheus registry for the
// prediction engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gridiron"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_generated_total",
		Help:      "Total number of predictions generated",
	})
	PredictionFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prediction_failures_total",
		Help:      "Total number of per-game prediction failures",
	})
	BacktestRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs",
	})
	BacktestGamesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_games_skipped_total",
		Help:      "Total number of games skipped during backtests for missing ground truth",
	})
	TunerEvaluationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tuner_evaluations_total",
		Help:      "Total number of candidate weight tables evaluated",
	})
	FeedRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_requests_total",
		Help:      "Total number of data feed requests by outcome",
	}, []string{"outcome"})
	SummaryCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "summary_cache_hits_total",
		Help:      "Total number of performance summary cache hits",
	})
	SummaryCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "summary_cache_misses_total",
		Help:      "Total number of performance summary cache misses",
	})
)

// Gauge metrics
var (
	WeightsVersion = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "weights_version",
		Help:      "Version of the currently published weight table",
	})
	LastBacktestHitRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_backtest_hit_rate",
		Help:      "Hit rate of the most recent backtest run",
	})
	FactorWeight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "factor_weight",
		Help:      "Current weight assigned to each prediction factor",
	}, []string{"factor"})
)

// Histogram metrics
var (
	PredictionBatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_batch_duration_seconds",
		Help:      "Duration of batch prediction runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsGeneratedTotal)
		registry.MustRegister(PredictionFailuresTotal)
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestGamesSkippedTotal)
		registry.MustRegister(TunerEvaluationsTotal)
		registry.MustRegister(FeedRequestsTotal)
		registry.MustRegister(SummaryCacheHitsTotal)
		registry.MustRegister(SummaryCacheMissesTotal)

		registry.MustRegister(WeightsVersion)
		registry.MustRegister(LastBacktestHitRate)
		registry.MustRegister(FactorWeight)

		registry.MustRegister(PredictionBatchDuration)
		registry.MustRegister(BacktestDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPredictionBatch records a completed batch prediction run.
func RecordPredictionBatch(generated, failed int, durationSeconds float64) {
	PredictionsGeneratedTotal.Add(float64(generated))
	PredictionFailuresTotal.Add(float64(failed))
	PredictionBatchDuration.Observe(durationSeconds)
}

// RecordBacktestRun records a completed backtest run.
func RecordBacktestRun(skipped int, hitRate, durationSeconds float64) {
	BacktestRunsTotal.Inc()
	BacktestGamesSkippedTotal.Add(float64(skipped))
	BacktestDuration.Observe(durationSeconds)
	if hitRate >= 0 {
		LastBacktestHitRate.Set(hitRate)
	}
}

// RecordTunerEvaluations records candidate evaluations from a tuning run.
func RecordTunerEvaluations(count int) {
	TunerEvaluationsTotal.Add(float64(count))
}

// RecordFeedRequest records a data feed request outcome.
func RecordFeedRequest(outcome string) {
	FeedRequestsTotal.WithLabelValues(outcome).Inc()
}

// UpdateWeights updates the weight table gauges.
func UpdateWeights(version int, weights map[string]float64) {
	WeightsVersion.Set(float64(version))
	for factor, weight := range weights {
		FactorWeight.WithLabelValues(factor).Set(weight)
	}
}
