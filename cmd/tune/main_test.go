package main

import (
	"testing"

	"github.com/yourusername/gridiron-engine/internal/models"
)

func TestSeedTableCarriesHistoryVersion(t *testing.T) {
	latest := &models.WeightHistory{
		Version: 7,
		Weights: map[string]float64{
			"team_strength":  0.30,
			"home_advantage": 0.15,
			"weather_impact": 0.10,
			"head_to_head":   0.20,
			"injury_impact":  0.05,
			"recent_form":    0.15,
			"rest_travel":    0.05,
		},
	}

	table, err := seedTable(latest, nil)
	if err != nil {
		t.Fatalf("seedTable returned error: %v", err)
	}

	if table.Version != 7 {
		t.Errorf("expected seed to carry history version 7, got %d", table.Version)
	}
	if table.TeamStrength != 0.30 || table.RecentForm != 0.15 {
		t.Errorf("expected history weights, got %+v", table)
	}
}

func TestSeedTableFallsBackToConfig(t *testing.T) {
	fallback := map[string]float64{
		"team_strength":  0.25,
		"home_advantage": 0.15,
		"weather_impact": 0.10,
		"head_to_head":   0.20,
		"injury_impact":  0.10,
		"recent_form":    0.10,
		"rest_travel":    0.10,
	}

	table, err := seedTable(nil, fallback)
	if err != nil {
		t.Fatalf("seedTable returned error: %v", err)
	}

	if table.Version != 1 {
		t.Errorf("expected fresh seed at version 1, got %d", table.Version)
	}
	if table.TeamStrength != 0.25 {
		t.Errorf("expected configured weights, got %+v", table)
	}
}

func TestSeedTableRejectsInvalidHistory(t *testing.T) {
	latest := &models.WeightHistory{
		Version: 3,
		Weights: map[string]float64{"team_strength": 1.0, "head_to_head": 0.5},
	}

	if _, err := seedTable(latest, nil); err == nil {
		t.Fatal("expected error for weights that do not sum to 1")
	}
}
