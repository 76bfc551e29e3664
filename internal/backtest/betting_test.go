package backtest

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/yourusername/gridiron-engine/internal/models"
)

func TestSimulateBettingThreshold(t *testing.T) {
	results := []*models.BacktestResult{
		scoredResult(true, 75, 3),
		scoredResult(false, 55, 8),
		scoredResult(true, 62, 5),
	}

	out := SimulateBetting(results, DefaultBettingConfig())
	if out.TotalBets != 2 {
		t.Errorf("expected 2 bets above the 60 threshold, got %d", out.TotalBets)
	}
	if out.WinningBets != 2 {
		t.Errorf("expected 2 winning bets, got %d", out.WinningBets)
	}
}

func TestSimulateBettingProfitMath(t *testing.T) {
	// One win and one loss at 100 flat stake and -110 odds.
	results := []*models.BacktestResult{
		scoredResult(true, 75, 3),
		scoredResult(false, 75, 9),
	}

	out := SimulateBetting(results, DefaultBettingConfig())
	if !out.TotalWagered.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected 200 wagered, got %s", out.TotalWagered)
	}
	// Winning bet returns stake plus 90.91 profit.
	wantWinnings := decimal.NewFromFloat(190.91)
	if !out.TotalWinnings.Equal(wantWinnings) {
		t.Errorf("expected winnings %s, got %s", wantWinnings, out.TotalWinnings)
	}
	wantProfit := decimal.NewFromFloat(-9.09)
	if !out.ProfitLoss.Equal(wantProfit) {
		t.Errorf("expected profit %s, got %s", wantProfit, out.ProfitLoss)
	}
	if out.ROIPercent >= 0 {
		t.Errorf("expected negative ROI at 50%% accuracy, got %f", out.ROIPercent)
	}
	if out.BreakEvenAccuracy != 52.38 {
		t.Errorf("expected break-even accuracy 52.38, got %f", out.BreakEvenAccuracy)
	}
}

func TestSimulateBettingNoQualifyingResults(t *testing.T) {
	results := []*models.BacktestResult{
		scoredResult(true, 52, 3),
		scoredResult(false, 58, 8),
	}

	out := SimulateBetting(results, DefaultBettingConfig())
	if out.TotalBets != 0 {
		t.Errorf("expected no bets below threshold, got %d", out.TotalBets)
	}
	if !out.ProfitLoss.IsZero() {
		t.Errorf("expected zero profit with no bets, got %s", out.ProfitLoss)
	}
	if out.ROIPercent != 0 {
		t.Errorf("expected zero ROI with no bets, got %f", out.ROIPercent)
	}
}

func TestSimulateBettingSkipsNilPredictions(t *testing.T) {
	results := []*models.BacktestResult{
		{Correct: true},
		scoredResult(true, 80, 2),
	}

	out := SimulateBetting(results, DefaultBettingConfig())
	if out.TotalBets != 1 {
		t.Errorf("expected 1 bet, got %d", out.TotalBets)
	}
}

func TestSimulateBettingZeroStake(t *testing.T) {
	cfg := BettingConfig{Stake: decimal.Zero, MinConfidence: 60}
	out := SimulateBetting([]*models.BacktestResult{scoredResult(true, 80, 2)}, cfg)
	if out.TotalBets != 0 {
		t.Errorf("expected no bets with zero stake, got %d", out.TotalBets)
	}
}
