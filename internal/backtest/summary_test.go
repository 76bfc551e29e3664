package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/gridiron-engine/internal/models"
)

func scoredResult(correct bool, confidence, spreadError float64) *models.BacktestResult {
	winner := models.SideAway
	if correct {
		winner = models.SideHome
	}
	return &models.BacktestResult{
		ID:     uuid.New(),
		GameID: uuid.New(),
		Prediction: &models.Prediction{
			ID:              uuid.New(),
			PredictedWinner: models.SideHome,
			Confidence:      confidence,
			Factors: []models.Factor{
				{Name: models.FactorTeamStrength, Normalized: 0.5},
				{Name: models.FactorRecentForm, Normalized: -0.2},
			},
		},
		ActualWinner: winner,
		Correct:      correct,
		SpreadError:  spreadError,
		Bucket:       models.BucketForConfidence(confidence),
	}
}

func TestSummarizeEmptyResults(t *testing.T) {
	summary := Summarize(nil, 4, time.Second)

	if summary.TotalResults != 0 {
		t.Errorf("expected 0 results, got %d", summary.TotalResults)
	}
	if summary.SkippedGames != 4 {
		t.Errorf("expected 4 skipped, got %d", summary.SkippedGames)
	}
	if summary.HitRate != models.NoData {
		t.Errorf("expected NoData hit rate, got %f", summary.HitRate)
	}
	if summary.MeanAbsSpreadError != models.NoData {
		t.Errorf("expected NoData spread error, got %f", summary.MeanAbsSpreadError)
	}
	if summary.MeanConfidence != models.NoData {
		t.Errorf("expected NoData confidence, got %f", summary.MeanConfidence)
	}
	if summary.HasData() {
		t.Error("expected HasData to be false")
	}
	for bucket, stats := range summary.Calibration {
		if stats.HitRate != models.NoData {
			t.Errorf("bucket %s: expected NoData hit rate, got %f", bucket, stats.HitRate)
		}
	}
}

func TestSummarizeComputesRates(t *testing.T) {
	results := []*models.BacktestResult{
		scoredResult(true, 72, 3),
		scoredResult(true, 65, 7),
		scoredResult(false, 55, 10),
		scoredResult(false, 85, 12),
	}

	summary := Summarize(results, 1, 2*time.Second)

	if summary.TotalResults != 4 || summary.CorrectResults != 2 {
		t.Errorf("expected 4 total / 2 correct, got %d / %d", summary.TotalResults, summary.CorrectResults)
	}
	if summary.HitRate != 0.5 {
		t.Errorf("expected hit rate 0.5, got %f", summary.HitRate)
	}
	if summary.MeanAbsSpreadError != 8.0 {
		t.Errorf("expected mean spread error 8.0, got %f", summary.MeanAbsSpreadError)
	}
	if math.Abs(summary.MeanConfidence-69.25) > 1e-9 {
		t.Errorf("expected mean confidence 69.25, got %f", summary.MeanConfidence)
	}
	if summary.ThroughputPerSec != 2.0 {
		t.Errorf("expected 2 games/sec, got %f", summary.ThroughputPerSec)
	}
}

func TestSummarizeCalibrationBuckets(t *testing.T) {
	results := []*models.BacktestResult{
		scoredResult(true, 72, 3),
		scoredResult(false, 74, 5),
		scoredResult(true, 85, 2),
	}

	summary := Summarize(results, 0, 0)

	bucket70 := summary.Calibration[models.Bucket70to80]
	if bucket70.Total != 2 || bucket70.Correct != 1 {
		t.Errorf("70-80%% bucket: expected 2 total / 1 correct, got %+v", bucket70)
	}
	if bucket70.HitRate != 0.5 {
		t.Errorf("70-80%% bucket: expected hit rate 0.5, got %f", bucket70.HitRate)
	}

	bucket80 := summary.Calibration[models.Bucket80Plus]
	if bucket80.Total != 1 || bucket80.HitRate != 1.0 {
		t.Errorf("80%%+ bucket: expected 1 total at 1.0, got %+v", bucket80)
	}

	empty := summary.Calibration[models.Bucket50to60]
	if empty.Total != 0 || empty.HitRate != models.NoData {
		t.Errorf("50-60%% bucket: expected empty with NoData, got %+v", empty)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	results := []*models.BacktestResult{
		scoredResult(true, 72, 3),
		scoredResult(false, 55, 10),
	}

	first := Summarize(results, 0, time.Second)
	second := Summarize(results, 0, time.Second)

	if first.HitRate != second.HitRate ||
		first.MeanAbsSpreadError != second.MeanAbsSpreadError ||
		first.MeanConfidence != second.MeanConfidence {
		t.Error("expected repeated summarization of the same results to agree")
	}
}

func TestSummarizeZeroElapsed(t *testing.T) {
	summary := Summarize([]*models.BacktestResult{scoredResult(true, 72, 3)}, 0, 0)
	if summary.ThroughputPerSec != 0 {
		t.Errorf("expected no throughput without elapsed time, got %f", summary.ThroughputPerSec)
	}
}

func TestSummarizeFactorBreakdown(t *testing.T) {
	results := []*models.BacktestResult{
		scoredResult(true, 72, 3),
		scoredResult(false, 60, 8),
	}

	summary := Summarize(results, 0, 0)
	if len(summary.FactorBreakdown) != models.FactorCount {
		t.Fatalf("expected %d factor entries, got %d", models.FactorCount, len(summary.FactorBreakdown))
	}

	byName := make(map[models.FactorName]models.FactorStats)
	for _, stats := range summary.FactorBreakdown {
		byName[stats.Name] = stats
	}

	ts := byName[models.FactorTeamStrength]
	if ts.Evaluated != 2 || ts.HitRate != 0.5 {
		t.Errorf("team strength: expected 2 evaluated at 0.5, got %+v", ts)
	}
	if ts.AvgImpact != 0.5 {
		t.Errorf("team strength: expected avg impact 0.5, got %f", ts.AvgImpact)
	}

	// Weather never appeared in any prediction's factor set.
	weather := byName[models.FactorWeather]
	if weather.Evaluated != 0 || weather.HitRate != models.NoData {
		t.Errorf("weather: expected unevaluated with NoData, got %+v", weather)
	}
}

func TestSummarizeRunNil(t *testing.T) {
	summary := SummarizeRun(nil)
	if summary.HitRate != models.NoData {
		t.Errorf("expected NoData hit rate for nil run, got %f", summary.HitRate)
	}
}

func TestSummarizePredictionsNoGroundTruth(t *testing.T) {
	predictions := []*models.Prediction{
		{ID: uuid.New(), Confidence: 62},
		{ID: uuid.New(), Confidence: 78},
	}

	summary := SummarizePredictions(predictions, time.Second)
	if summary.HitRate != models.NoData {
		t.Errorf("expected NoData hit rate, got %f", summary.HitRate)
	}
	if summary.MeanConfidence != 70 {
		t.Errorf("expected mean confidence 70, got %f", summary.MeanConfidence)
	}
	if summary.Calibration[models.Bucket60to70].Total != 1 {
		t.Error("expected one prediction in the 60-70% bucket")
	}
}
