package domain

// Stage is the coarse phase of a hearing conversation. It shapes prompt
// content only and never gates functionality.
type Stage string

const (
	StageOpening   Stage = "opening"
	StageDeepening Stage = "deepening"
	StageClosing   Stage = "closing"
	StageEnded     Stage = "ended"
)

// Message-count thresholds for stage advancement, counted over the full
// transcript including the seeded greeting.
const (
	DeepeningThreshold = 6
	ClosingThreshold   = 12
)

// Advance returns the stage that follows s for the given transcript length.
// Transitions are monotonic: opening→deepening→closing, one step per call.
// An ended stage never changes.
func (s Stage) Advance(messageCount int) Stage {
	switch {
	case s == StageOpening && messageCount > DeepeningThreshold:
		return StageDeepening
	case s == StageDeepening && messageCount > ClosingThreshold:
		return StageClosing
	default:
		return s
	}
}

// IsValid reports whether s is a known stage.
func (s Stage) IsValid() bool {
	switch s {
	case StageOpening, StageDeepening, StageClosing, StageEnded:
		return true
	}
	return false
}
