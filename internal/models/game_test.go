package models

import "testing"

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    GameStatus
		to      GameStatus
		allowed bool
	}{
		{"scheduled to in_progress", GameStatusScheduled, GameStatusInProgress, true},
		{"scheduled to completed", GameStatusScheduled, GameStatusCompleted, true},
		{"scheduled to postponed", GameStatusScheduled, GameStatusPostponed, true},
		{"in_progress to completed", GameStatusInProgress, GameStatusCompleted, true},
		{"in_progress to scheduled", GameStatusInProgress, GameStatusScheduled, false},
		{"in_progress to postponed", GameStatusInProgress, GameStatusPostponed, false},
		{"completed to scheduled", GameStatusCompleted, GameStatusScheduled, false},
		{"completed to in_progress", GameStatusCompleted, GameStatusInProgress, false},
		{"completed to postponed", GameStatusCompleted, GameStatusPostponed, false},
		// Makeup-date exception: a postponed game goes back on the schedule.
		{"postponed to scheduled", GameStatusPostponed, GameStatusScheduled, true},
		{"postponed to completed", GameStatusPostponed, GameStatusCompleted, false},
		{"same status is a no-op", GameStatusInProgress, GameStatusInProgress, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := &Game{Status: tt.from}
			if got := game.CanTransitionTo(tt.to); got != tt.allowed {
				t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestActualMarginRequiresFinalScore(t *testing.T) {
	hp, ap := 24, 17
	game := &Game{Status: GameStatusCompleted, HomePoints: &hp, AwayPoints: &ap}

	margin, ok := game.ActualMargin()
	if !ok || margin != 7 {
		t.Errorf("expected margin 7, got %f (ok=%v)", margin, ok)
	}

	game.Status = GameStatusInProgress
	if _, ok := game.ActualMargin(); ok {
		t.Error("in-progress game has no final margin")
	}

	game.Status = GameStatusCompleted
	game.HomePoints = nil
	if _, ok := game.ActualMargin(); ok {
		t.Error("completed game without a recorded score has no margin")
	}
}
