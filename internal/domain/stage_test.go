package domain

import "testing"

func TestStageAdvanceThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stage Stage
		count int
		want  Stage
	}{
		{"opening stays below threshold", StageOpening, 6, StageOpening},
		{"opening advances past threshold", StageOpening, 7, StageDeepening},
		{"deepening stays below threshold", StageDeepening, 12, StageDeepening},
		{"deepening advances past threshold", StageDeepening, 13, StageClosing},
		{"closing never advances by count", StageClosing, 100, StageClosing},
		{"ended never changes", StageEnded, 100, StageEnded},
		{"opening does not skip to closing", StageOpening, 50, StageDeepening},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.stage.Advance(tt.count); got != tt.want {
				t.Fatalf("Advance(%d) from %s = %s, want %s", tt.count, tt.stage, got, tt.want)
			}
		})
	}
}

func TestStageNeverRegresses(t *testing.T) {
	t.Parallel()

	order := map[Stage]int{StageOpening: 0, StageDeepening: 1, StageClosing: 2, StageEnded: 3}
	for _, stage := range []Stage{StageOpening, StageDeepening, StageClosing, StageEnded} {
		for count := 0; count <= 20; count++ {
			next := stage.Advance(count)
			if order[next] < order[stage] {
				t.Fatalf("stage regressed from %s to %s at count %d", stage, next, count)
			}
		}
	}
}

func TestStageIsValid(t *testing.T) {
	t.Parallel()

	for _, stage := range []Stage{StageOpening, StageDeepening, StageClosing, StageEnded} {
		if !stage.IsValid() {
			t.Fatalf("expected %s to be valid", stage)
		}
	}
	if Stage("paused").IsValid() {
		t.Fatal("expected unknown stage to be invalid")
	}
}
