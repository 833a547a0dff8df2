package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEvaluationMergeIsMonotonic(t *testing.T) {
	t.Parallel()

	eval := NewEvaluation()

	high := SignalHigh
	eval.Merge(Evaluation{EntrepreneurialIntent: &high, UserChallenges: []Challenge{ChallengeFunding}})

	if eval.EntrepreneurialIntent == nil || *eval.EntrepreneurialIntent != SignalHigh {
		t.Fatalf("expected entrepreneurialIntent high, got %v", eval.EntrepreneurialIntent)
	}
	if !eval.HasChallenge(ChallengeFunding) {
		t.Fatal("expected funding challenge after merge")
	}

	// Re-merging the same tags is a no-op, and an empty delta removes nothing.
	eval.Merge(Evaluation{EntrepreneurialIntent: &high, UserChallenges: []Challenge{ChallengeFunding}})
	eval.Merge(NewEvaluation())

	if len(eval.UserChallenges) != 1 {
		t.Fatalf("expected 1 challenge after idempotent merges, got %d", len(eval.UserChallenges))
	}
	if eval.EntrepreneurialIntent == nil {
		t.Fatal("merge must never unset a classified axis")
	}
}

func TestEvaluationMergeUnionsChallenges(t *testing.T) {
	t.Parallel()

	eval := NewEvaluation()
	eval.Merge(Evaluation{UserChallenges: []Challenge{ChallengeFunding}})
	eval.Merge(Evaluation{UserChallenges: []Challenge{ChallengeNetworking, ChallengeFunding}})

	if len(eval.UserChallenges) != 2 {
		t.Fatalf("expected 2 distinct challenges, got %v", eval.UserChallenges)
	}
}

func TestEvaluationSerializesReservedFieldsAsNull(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(NewEvaluation())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	got := string(data)

	for _, want := range []string{
		`"entrepreneurialIntent":null`,
		`"preparedness":null`,
		`"managementQuality":null`,
		`"userChallenges":[]`,
		`"interests":[]`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %s in %s", want, got)
		}
	}
}

func TestEvaluationCloneIsIndependent(t *testing.T) {
	t.Parallel()

	eval := NewEvaluation()
	eval.Merge(Evaluation{UserChallenges: []Challenge{ChallengeFunding}})

	clone := eval.Clone()
	clone.UserChallenges = append(clone.UserChallenges, ChallengeNetworking)

	if len(eval.UserChallenges) != 1 {
		t.Fatalf("mutating a clone leaked into the original: %v", eval.UserChallenges)
	}
}
