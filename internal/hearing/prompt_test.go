package hearing

import (
	"strings"
	"testing"

	"github.com/daisukegoma-max/gsc-hearing-app/internal/domain"
)

func TestBuildSystemPromptInterpolatesState(t *testing.T) {
	t.Parallel()

	eval := domain.NewEvaluation()
	eval.Merge(domain.Evaluation{UserChallenges: []domain.Challenge{domain.ChallengeFunding}})

	prompt := BuildSystemPrompt(domain.StageDeepening, 9, eval)

	for _, want := range []string{
		"グローバルスタートアップキャンパス構想",
		TerminationSentinel,
		"現在の会話ステージ: deepening",
		"メッセージ数: 9",
		`"userChallenges":["funding"]`,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildSystemPromptIsDeterministic(t *testing.T) {
	t.Parallel()

	eval := domain.NewEvaluation()
	a := BuildSystemPrompt(domain.StageOpening, 3, eval)
	b := BuildSystemPrompt(domain.StageOpening, 3, eval)
	if a != b {
		t.Fatal("identical inputs must produce identical prompts")
	}

	c := BuildSystemPrompt(domain.StageOpening, 4, eval)
	if a == c {
		t.Fatal("message count must be reflected in the prompt")
	}
}
