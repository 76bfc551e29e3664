package backtest

import (
	"math"
	"time"

	"github.com/yourusername/gridiron-engine/internal/models"
)

// Summarize computes a performance summary over a set of backtest results.
// It is pure and recomputed from its input each call, so arbitrary sub-windows
// can be summarized without incremental bookkeeping. Zero results yield the
// models.NoData sentinel for every rate and mean rather than a division by
// zero.
func Summarize(results []*models.BacktestResult, skipped int, elapsed time.Duration) *models.PerformanceSummary {
	summary := &models.PerformanceSummary{
		TotalResults: len(results),
		SkippedGames: skipped,
		Calibration:  emptyCalibration(),
	}
	if len(results) == 0 {
		summary.HitRate = models.NoData
		summary.MeanAbsSpreadError = models.NoData
		summary.MeanConfidence = models.NoData
		return summary
	}

	correct := 0
	spreadErrSum := 0.0
	confidenceSum := 0.0
	for _, res := range results {
		if res.Correct {
			correct++
		}
		spreadErrSum += math.Abs(res.SpreadError)
		confidenceSum += res.Prediction.Confidence

		bucket := summary.Calibration[res.Bucket]
		bucket.Total++
		if res.Correct {
			bucket.Correct++
		}
		summary.Calibration[res.Bucket] = bucket
	}
	for name, bucket := range summary.Calibration {
		if bucket.Total > 0 {
			bucket.HitRate = float64(bucket.Correct) / float64(bucket.Total)
		} else {
			bucket.HitRate = models.NoData
		}
		summary.Calibration[name] = bucket
	}

	summary.CorrectResults = correct
	summary.HitRate = float64(correct) / float64(len(results))
	summary.MeanAbsSpreadError = spreadErrSum / float64(len(results))
	summary.MeanConfidence = confidenceSum / float64(len(results))
	summary.FactorBreakdown = analyzeFactors(results)
	if elapsed > 0 {
		summary.ThroughputPerSec = float64(len(results)) / elapsed.Seconds()
	}
	return summary
}

// SummarizeRun summarizes a backtest run result
func SummarizeRun(run *RunResult) *models.PerformanceSummary {
	if run == nil {
		return Summarize(nil, 0, 0)
	}
	return Summarize(run.Results, run.Skipped+run.Unprocessed, run.Elapsed)
}

// SummarizePredictions summarizes live predictions, which carry no ground
// truth: only confidence and throughput fields are populated.
func SummarizePredictions(predictions []*models.Prediction, elapsed time.Duration) *models.PerformanceSummary {
	summary := &models.PerformanceSummary{
		TotalResults:       len(predictions),
		Calibration:        emptyCalibration(),
		HitRate:            models.NoData,
		MeanAbsSpreadError: models.NoData,
		MeanConfidence:     models.NoData,
	}
	if len(predictions) == 0 {
		return summary
	}

	confidenceSum := 0.0
	for _, p := range predictions {
		confidenceSum += p.Confidence
		bucket := summary.Calibration[models.BucketForConfidence(p.Confidence)]
		bucket.Total++
		bucket.HitRate = models.NoData
		summary.Calibration[models.BucketForConfidence(p.Confidence)] = bucket
	}
	summary.MeanConfidence = confidenceSum / float64(len(predictions))
	if elapsed > 0 {
		summary.ThroughputPerSec = float64(len(predictions)) / elapsed.Seconds()
	}
	return summary
}

// analyzeFactors computes per-factor accuracy and average impact across a
// result set, in canonical factor order.
func analyzeFactors(results []*models.BacktestResult) []models.FactorStats {
	byName := make(map[models.FactorName]*models.FactorStats, models.FactorCount)
	for _, name := range models.FactorNames() {
		byName[name] = &models.FactorStats{Name: name}
	}

	for _, res := range results {
		for _, f := range res.Prediction.Factors {
			stats, ok := byName[f.Name]
			if !ok {
				continue
			}
			stats.Evaluated++
			stats.AvgImpact += math.Abs(f.Normalized)
			if res.Correct {
				stats.Correct++
			}
		}
	}

	out := make([]models.FactorStats, 0, models.FactorCount)
	for _, name := range models.FactorNames() {
		stats := byName[name]
		if stats.Evaluated > 0 {
			stats.HitRate = float64(stats.Correct) / float64(stats.Evaluated)
			stats.AvgImpact /= float64(stats.Evaluated)
		} else {
			stats.HitRate = models.NoData
		}
		out = append(out, *stats)
	}
	return out
}

func emptyCalibration() map[models.ConfidenceBucket]models.BucketStats {
	calibration := make(map[models.ConfidenceBucket]models.BucketStats, 4)
	for _, bucket := range models.ConfidenceBuckets() {
		calibration[bucket] = models.BucketStats{HitRate: models.NoData}
	}
	return calibration
}
