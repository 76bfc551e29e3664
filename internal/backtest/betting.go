package backtest

import (
	"github.com/shopspring/decimal"
	"github.com/yourusername/gridiron-engine/internal/models"
)

// Standard -110 betting line: a winning flat bet returns 0.9091 of the stake,
// so 52.38% accuracy is required to break even.
var (
	winPayoutMultiplier = decimal.NewFromFloat(0.9091)
	breakEvenAccuracy   = 52.38
)

// BettingConfig controls the flat-stake betting simulation
type BettingConfig struct {
	Stake         decimal.Decimal
	MinConfidence float64
}

// DefaultBettingConfig bets 100 units on predictions at 60+ confidence
func DefaultBettingConfig() BettingConfig {
	return BettingConfig{
		Stake:         decimal.NewFromInt(100),
		MinConfidence: 60,
	}
}

// BettingResult reports simulated flat-stake betting performance
type BettingResult struct {
	TotalBets         int             `json:"total_bets"`
	WinningBets       int             `json:"winning_bets"`
	TotalWagered      decimal.Decimal `json:"total_wagered"`
	TotalWinnings     decimal.Decimal `json:"total_winnings"`
	ProfitLoss        decimal.Decimal `json:"profit_loss"`
	ROIPercent        float64         `json:"roi_percent"`
	BreakEvenAccuracy float64         `json:"break_even_accuracy"`
}

// SimulateBetting replays flat-stake bets on every result whose stated
// confidence meets the threshold, settled at -110 odds.
func SimulateBetting(results []*models.BacktestResult, cfg BettingConfig) BettingResult {
	out := BettingResult{
		TotalWagered:      decimal.Zero,
		TotalWinnings:     decimal.Zero,
		ProfitLoss:        decimal.Zero,
		BreakEvenAccuracy: breakEvenAccuracy,
	}
	if cfg.Stake.LessThanOrEqual(decimal.Zero) {
		return out
	}

	for _, res := range results {
		if res.Prediction == nil || !res.Prediction.MeetsThreshold(cfg.MinConfidence) {
			continue
		}
		out.TotalBets++
		out.TotalWagered = out.TotalWagered.Add(cfg.Stake)
		if res.Correct {
			out.WinningBets++
			out.TotalWinnings = out.TotalWinnings.Add(cfg.Stake).Add(cfg.Stake.Mul(winPayoutMultiplier))
		}
	}

	out.ProfitLoss = out.TotalWinnings.Sub(out.TotalWagered)
	if out.TotalWagered.IsPositive() {
		roi, _ := out.ProfitLoss.Div(out.TotalWagered).Mul(decimal.NewFromInt(100)).Float64()
		out.ROIPercent = roi
	}
	return out
}
