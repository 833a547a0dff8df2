package domain

import "encoding/json"

// Signal is a positive classification level for an evaluation axis.
type Signal string

// SignalHigh is the only classification the current keyword rules produce.
const SignalHigh Signal = "high"

// Challenge is a tag describing a difficulty the researcher mentioned.
type Challenge string

const (
	ChallengeFunding    Challenge = "funding"
	ChallengeNetworking Challenge = "networking"
)

// Evaluation is the accumulated snapshot of the researcher's potential along
// the four GSC evaluation axes. All fields are monotonic: axes only move from
// unset (nil) toward a positive classification, and the tag sets only grow.
//
// Preparedness, ManagementQuality and Interests are reserved: no keyword rule
// populates them today and they must stay unset rather than gaining invented
// rules.
type Evaluation struct {
	EntrepreneurialIntent *Signal     `json:"entrepreneurialIntent"`
	SeedPromise           *Signal     `json:"seedPromise"`
	Preparedness          *Signal     `json:"preparedness"`
	ManagementQuality     *Signal     `json:"managementQuality"`
	UserChallenges        []Challenge `json:"userChallenges"`
	Interests             []string    `json:"interests"`
}

// NewEvaluation returns an empty snapshot. The tag sets are non-nil so they
// serialize as [] rather than null, matching the exported payload shape.
func NewEvaluation() Evaluation {
	return Evaluation{
		UserChallenges: []Challenge{},
		Interests:      []string{},
	}
}

// Merge folds a partial snapshot into e with union semantics. Axes already
// classified are never overwritten or cleared; challenge tags are added at
// most once and never removed.
func (e *Evaluation) Merge(delta Evaluation) {
	if e.EntrepreneurialIntent == nil && delta.EntrepreneurialIntent != nil {
		e.EntrepreneurialIntent = delta.EntrepreneurialIntent
	}
	if e.SeedPromise == nil && delta.SeedPromise != nil {
		e.SeedPromise = delta.SeedPromise
	}
	if e.Preparedness == nil && delta.Preparedness != nil {
		e.Preparedness = delta.Preparedness
	}
	if e.ManagementQuality == nil && delta.ManagementQuality != nil {
		e.ManagementQuality = delta.ManagementQuality
	}
	for _, c := range delta.UserChallenges {
		if !e.HasChallenge(c) {
			e.UserChallenges = append(e.UserChallenges, c)
		}
	}
	for _, i := range delta.Interests {
		if !containsString(e.Interests, i) {
			e.Interests = append(e.Interests, i)
		}
	}
}

// HasChallenge reports whether the challenge tag is already present.
func (e *Evaluation) HasChallenge(c Challenge) bool {
	for _, existing := range e.UserChallenges {
		if existing == c {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing the internal slices to mutation.
func (e Evaluation) Clone() Evaluation {
	out := e
	out.UserChallenges = append([]Challenge{}, e.UserChallenges...)
	out.Interests = append([]string{}, e.Interests...)
	return out
}

// Summary returns a compact JSON serialization for prompt interpolation and
// diagnostics.
func (e Evaluation) Summary() string {
	data, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func containsString(set []string, s string) bool {
	for _, existing := range set {
		if existing == s {
			return true
		}
	}
	return false
}
