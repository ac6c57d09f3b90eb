// Package reply builds the short empathetic response returned after a
// journal submission. A per-persona phrase library always produces a
// usable reply; when an LLM client is wired it may override the canned
// phrase, weighted by configuration.
package reply

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"kokorolog/internal/emotion"
	"kokorolog/internal/llm"
	"kokorolog/internal/logging"
)

// Persona selects the voice of the reply.
type Persona string

const (
	PersonaBuddy   Persona = "buddy"
	PersonaTeacher Persona = "teacher"
)

// ParsePersona falls back to buddy for unknown or empty values.
func ParsePersona(s string) Persona {
	if Persona(s) == PersonaTeacher {
		return PersonaTeacher
	}
	return PersonaBuddy
}

var phrases = map[Persona]map[emotion.Label][]string{
	PersonaBuddy: {
		emotion.Fun:     {"それ最高じゃん！その勢い、次もいけそう。", "自己ベストおめでとう！次は何に挑戦する？"},
		emotion.Sad:     {"それはつらかったね…。ここで吐き出せたのえらいよ。", "話してくれてありがとう。今日は少し休もう。"},
		emotion.Angry:   {"ムカつくよね。その感覚は正しいし、無理に抑えなくていい。", "わかる。そのとき一番嫌だった点はどこ？"},
		emotion.Anxious: {"不安になるよね。いま“ひとつだけ”できることは？", "心配だね。期限と優先度を一緒に整理しよ。"},
		emotion.Tired:   {"おつかれさま。まずは深呼吸を3回。一歩ずつでOK。", "無理しないで。助けが要るときは合図してね。"},
		emotion.Neutral: {"OK、受け取ったよ。次の一歩を一緒に決めよ。", "今日の小さなハイライトを1つ教えて！"},
	},
	PersonaTeacher: {
		emotion.Fun:     {"前向きで素晴らしい。記録に残して次の目標に繋げよう。"},
		emotion.Sad:     {"気持ちの整理が先です。要因を一言メモにして共有しよう。"},
		emotion.Angry:   {"事実ベースで振り返り、改善案を1点に絞って書こう。"},
		emotion.Anxious: {"不明点を“質問”に変えてみよう。答えやすくなるよ。"},
		emotion.Tired:   {"回復→軽負荷→通常の順で戻そう。今日は小さな達成でOK。"},
		emotion.Neutral: {"記録ありがとう。次回の目標を1行で追記しよう。"},
	},
}

var followupTail = map[Persona]string{
	PersonaBuddy:   " よかったら、もう少し詳しく教えて？",
	PersonaTeacher: " 次回は具体例を1つ添えてみましょう。",
}

var styleGuides = map[Persona]string{
	PersonaBuddy:   "フレンドリーで寄り添う口調。やさしく短く。絵文字は使わない。",
	PersonaTeacher: "落ち着いた丁寧語。学習支援の観点で簡潔に助言。一文は短く。",
}

// maxReplyRunes caps LLM output length.
const maxReplyRunes = 160

// Result is one generated reply.
type Result struct {
	Text     string `json:"reply"`
	UsedLLM  bool   `json:"used_llm"`
	Reason   string `json:"llm_reason,omitempty"`
	Persona  string `json:"style"`
	Followup bool   `json:"followup"`
}

// Replier picks canned phrases and optionally upgrades them via an LLM.
type Replier struct {
	client llm.Client // nil means rule replies only
	weight float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewReplier wires a replier. Weight is the probability of preferring
// the LLM reply when one is produced; it is clamped to [0, 1].
func NewReplier(client llm.Client, weight float64) *Replier {
	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}
	return &Replier{client: client, weight: weight, rng: rand.New(rand.NewSource(rand.Int63()))}
}

func (r *Replier) pick(arr []string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return arr[r.rng.Intn(len(arr))]
}

func (r *Replier) roll() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// RulePhrase returns a canned phrase for the emotion and persona.
func (r *Replier) RulePhrase(label emotion.Label, persona Persona, followup bool) string {
	lib, ok := phrases[persona]
	if !ok {
		lib = phrases[PersonaBuddy]
	}
	arr := lib[label]
	if len(arr) == 0 {
		arr = lib[emotion.Neutral]
	}
	text := r.pick(arr)
	if followup {
		text += followupTail[persona]
	}
	return text
}

const replyPrompt = `あなたは日本語で短い共感返信を作るアシスタントです。出力は1〜2文、合計120文字以内。助言は1点まで。箇条書き/絵文字禁止。ユーザーの感情（楽しい/悲しい/怒り/不安/しんどい/中立）とスタイルに従う。必要なら末尾に短いフォローアップを付ける。

# 入力
%s

# 感情: %s
# スタイル: %s
# 方針: %s
# フォローアップ: %s
`

// Reply generates the response for a classified submission. The rule
// phrase is the fallback at every failure point, so the returned text
// is never empty.
func (r *Replier) Reply(ctx context.Context, text string, label emotion.Label, persona Persona, followup bool) Result {
	res := Result{
		Text:     r.RulePhrase(label, persona, followup),
		Persona:  string(persona),
		Followup: followup,
	}
	if r.client == nil || r.weight == 0 {
		res.Reason = "no_client"
		return res
	}

	followMark := "なし"
	if followup {
		followMark = "あり（末尾: " + followupTail[persona] + "）"
	}
	prompt := fmt.Sprintf(replyPrompt, text, label, persona, styleGuides[persona], followMark)

	out, err := r.client.Generate(ctx, prompt)
	if err != nil {
		logging.Reply("llm reply failed, using rule phrase: %v", err)
		res.Reason = err.Error()
		return res
	}
	out = strings.TrimSpace(out)
	if out == "" {
		res.Reason = "empty_output"
		return res
	}
	if r.weight < 1 && r.roll() >= r.weight {
		res.Reason = "weighted_out"
		return res
	}
	if runes := []rune(out); len(runes) > maxReplyRunes {
		out = string(runes[:maxReplyRunes])
	}
	res.Text = out
	res.UsedLLM = true
	return res
}
