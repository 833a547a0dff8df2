package hearing

import (
	"fmt"

	"github.com/daisukegoma-max/gsc-hearing-app/internal/domain"
)

// TerminationSentinel is the literal tag the model appends to its final reply
// to signal conversational closure. It is stripped before the reply is stored.
const TerminationSentinel = "END_CONVERSATION"

// personaPrompt carries the assistant's fixed persona, mission, the four
// evaluation axes, behavioral constraints and the termination protocol.
const personaPrompt = "あなたは日本の内閣官房が推進するグローバルスタートアップキャンパス構想の認知度向上と研究者ポテンシャル評価を行うAIアシスタントです。" +
	"研究者の課題感や興味に寄り添いGSC構想の魅力を伝える。" +
	"対話を通じて起業意欲、シーズ有望性、起業準備度、経営資質の4つの評価軸で研究者のポテンシャルを自然に評価する。" +
	"自然で人間味のある対話を心がけ機械的な質問は避ける。1回の応答は簡潔に200-300文字程度。" +
	"メッセージ数が15を超えた場合または研究者が十分な情報を得たと判断した場合は自然な形でクロージングメッセージを送る。" +
	"クロージングメッセージの最後には必ず" + TerminationSentinel + "というタグを付ける。"

// BuildSystemPrompt renders the system instructions for the next model call.
// Pure: identical inputs always produce identical output. Stage, transcript
// length and the evaluation snapshot are interpolated so the model has full
// context each turn.
func BuildSystemPrompt(stage domain.Stage, messageCount int, eval domain.Evaluation) string {
	return fmt.Sprintf("%s 現在の会話ステージ: %s メッセージ数: %d 評価状況: %s",
		personaPrompt, stage, messageCount, eval.Summary())
}
