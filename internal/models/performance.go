package models

import "time"

// NoData is the sentinel value reported for rate and mean fields of a
// PerformanceSummary computed over zero results.
const NoData = -1.0

// BucketStats reports observed accuracy within one calibration bucket
type BucketStats struct {
	Total   int     `json:"total"`
	Correct int     `json:"correct"`
	HitRate float64 `json:"hit_rate"`
}

// FactorStats reports per-factor contribution over a result set
type FactorStats struct {
	Name      FactorName `json:"name"`
	Evaluated int        `json:"evaluated"`
	Correct   int        `json:"correct"`
	HitRate   float64    `json:"hit_rate"`
	AvgImpact float64    `json:"avg_impact"`
}

// PerformanceSummary aggregates accuracy and calibration over a set of
// backtest results. It is recomputed from its inputs on demand and carries no
// persisted identity beyond the cache key of its window.
type PerformanceSummary struct {
	TotalResults       int                              `json:"total_results"`
	CorrectResults     int                              `json:"correct_results"`
	SkippedGames       int                              `json:"skipped_games"`
	HitRate            float64                          `json:"hit_rate"`
	MeanAbsSpreadError float64                          `json:"mean_abs_spread_error"`
	MeanConfidence     float64                          `json:"mean_confidence"`
	Calibration        map[ConfidenceBucket]BucketStats `json:"calibration"`
	FactorBreakdown    []FactorStats                    `json:"factor_breakdown,omitempty"`
	ThroughputPerSec   float64                          `json:"throughput_per_sec"`
	WindowStart        time.Time                        `json:"window_start,omitempty"`
	WindowEnd          time.Time                        `json:"window_end,omitempty"`
	GeneratedAt        time.Time                        `json:"generated_at"`
}

// HasData reports whether the summary covers any results
func (s *PerformanceSummary) HasData() bool {
	return s.TotalResults > 0
}
