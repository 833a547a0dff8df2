package hearing

import (
	"strings"

	"github.com/daisukegoma-max/gsc-hearing-app/internal/domain"
)

// tagRule maps a fixed trigger vocabulary to a partial evaluation update.
// Rules are independent and non-exclusive: one message may fire several.
type tagRule struct {
	triggers []string
	apply    func(e *domain.Evaluation)
}

// tagRules is the keyword classification table. Matching is case-sensitive
// substring containment against the user's raw text.
//
// Preparedness, management quality and interests intentionally have no rules;
// those axes stay unset until a real classifier exists.
var tagRules = []tagRule{
	{
		triggers: []string{"起業", "スタートアップ", "会社"},
		apply: func(e *domain.Evaluation) {
			high := domain.SignalHigh
			e.EntrepreneurialIntent = &high
		},
	},
	{
		triggers: []string{"社会実装", "実用化", "製品化"},
		apply: func(e *domain.Evaluation) {
			high := domain.SignalHigh
			e.SeedPromise = &high
		},
	},
	{
		triggers: []string{"資金", "予算", "グラント"},
		apply: func(e *domain.Evaluation) {
			e.UserChallenges = append(e.UserChallenges, domain.ChallengeFunding)
		},
	},
	{
		triggers: []string{"連携", "ネットワーク", "コラボ"},
		apply: func(e *domain.Evaluation) {
			e.UserChallenges = append(e.UserChallenges, domain.ChallengeNetworking)
		},
	},
}

// ExtractTags classifies one user message against the rule table and returns
// the partial snapshot to merge. Pure: no state is read or written.
func ExtractTags(userText string) domain.Evaluation {
	eval := domain.NewEvaluation()
	for _, rule := range tagRules {
		for _, trigger := range rule.triggers {
			if strings.Contains(userText, trigger) {
				rule.apply(&eval)
				break
			}
		}
	}
	return eval
}
