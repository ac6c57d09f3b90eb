package emotion

import (
	"context"
	"regexp"
	"strings"
)

// LegacyClassifier reproduces the behavior contract of the original
// six-way rule engine: a priority-ordered sequence of overrides on top
// of integer-ish pattern scores. Deployments that must stay
// bit-compatible with the older engine select it instead of
// RuleClassifier; the override ordering below is load-bearing and must
// not be rearranged.
type LegacyClassifier struct {
	params Params
}

// NewLegacyClassifier returns the compatibility engine.
func NewLegacyClassifier(p Params) *LegacyClassifier {
	return &LegacyClassifier{params: p}
}

// crisisPhrases short-circuit everything else. Tired is this model's
// proxy for acute distress, reported at near-certain confidence so the
// alerting layer always fires.
var crisisPhrases = []string{"死にたい", "消えたい", "いなくなりたい", "自殺", "リスカ", "もう無理"}

// likeHateConflict captures 好き/嫌い ambivalence in either order.
var likeHateConflict = regexp.MustCompile(`(好き).*(嫌い)|(嫌い).*(好き)`)

// legacyPatterns is the legacy engine's own pattern table. It overlaps
// the primary lexicon but is deliberately kept separate: each list is
// part of the compatibility contract.
var legacyPatterns = map[Label][]*regexp.Regexp{
	Fun: compileAll(
		`楽しい`, `楽しかっ`, `楽しく`, `楽しくなって`,
		`嬉しい`, `うれし`, `嬉しかっ`, `うれしかっ`,
		`幸せ`, `しあわせ`, `最高`, `サイコー`,
		`よかった`, `良かった`, `ワクワク`, `わくわく`,
		`好き`, `大好き`, `はまってる`, `ハマってる`,
		`楽しみ`, `面白い`, `おもしろい`,
		`褒められ`, `ほめられ`, `褒めてくれた`, `ほめてくれた`,
		`うまく描け`, `上手く描け`, `うまくできた`, `上手くできた`,
		`うまくいっ`, `上手くいっ`,
		`学校.*楽しい`, `友達.*楽しい`, `楽しくて`,
		`爆笑`, `腹筋崩壊`, `神回`, `優勝レベル`, `優勝だった`,
		`楽しすぎ`, `楽しすぎた`, `エモい`,
		`気がラクになった`, `ちょっとラクになった`,
		`ホッとした`, `ほっとした`,
		`救われた気がする`, `気持ちが軽くなった`,
	),
	Sad: compileAll(
		`悲しい`, `かなしい`, `悲しかっ`,
		`辛い`, `つらい`, `寂し`, `さみし`,
		`落ち込`, `萎え`, `萎えた`,
		`泣きたい`, `泣いた`, `泣いて`, `涙`,
		`ショック`, `へこむ`, `へこんだ`,
	),
	Angry: compileAll(
		`怒`, `ムカつく`, `むかつく`, `腹立`,
		`イライラ`, `いらいら`, `うざい`, `ウザい`,
		`許せない`, `キレた`, `キレそう`,
		`ブチギレ`, `キレそうだ`, `腹立つ`,
		`理不尽`, `納得いかない`, `悔し`,
	),
	Anxious: compileAll(
		`不安`, `心配`, `しんぱい`, `怖い`, `こわい`,
		`緊張`, `ドキドキ`, `どきどき`,
		`やばい`, `ヤバい`, `どうしよう`,
		`テスト`, `試験`, `受験`, `発表`, `面接`,
		`どうやったら.*できる`, `どうしたら.*できる`,
		`うまくいくか分からない`, `怒られそう`,
	),
	Tired: compileAll(
		`疲れ`, `つかれ`, `疲れた`, `しんどい`,
		`大変`, `たいへん`, `きつい`, `きつかった`,
		`だるい`, `だるかった`, `眠い`, `ねむい`,
		`分からん`, `わからん`, `分かんない`, `わかんない`,
		`難しい`, `むずかしい`, `困った`,
		`めんどくさい`, `めんどう`, `面倒`,
		`苦しい`, `つらい`, `無理`,
		`もう無理`, `無理すぎ`, `無理だ`, `限界`, `無理かも`,
		`できない`, `苦手`, `モヤモヤ`, `もやもや`,
	),
}

var (
	greetingPattern = regexp.MustCompile(`(こんにちは|おはよう|こんばんは|お疲れ|おつかれ)`)
	reliefPattern   = regexp.MustCompile(`無理(しない|しなくていい|しないで|せず)`)

	notTiredPattern   = regexp.MustCompile(`(しんどくない|大丈夫|そこまでしんどくない)`)
	notAnxiousPattern = regexp.MustCompile(`(不安ってわけじゃない|そこまで不安|不安ではない)`)
	recoveredYesterday = regexp.MustCompile(`昨日.*しんどかった`)
	fineToday          = regexp.MustCompile(`今日は.*大丈夫`)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// HasCrisisPhrase reports whether text contains a crisis phrase. The
// ingest layer uses it to raise a safety audit event regardless of
// which engine classified the submission.
func HasCrisisPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range crisisPhrases {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// Detect classifies text with the legacy priority ordering. prev is
// the previously observed label, if any; with no new signal the engine
// carries it forward at reduced confidence rather than flapping to
// Neutral.
func (c *LegacyClassifier) Detect(text string, prev *Label) (Label, float64) {
	// Only the truly empty string takes the 0.5-confidence carry;
	// whitespace-only text falls through and exits via the no-hit
	// branch at 0.4 like any other signal-free submission.
	if text == "" {
		if prev != nil && *prev != Neutral && prev.Valid() {
			return *prev, 0.5
		}
		return Neutral, 0.3
	}

	lower := strings.ToLower(text)

	// Crisis phrases dominate everything and must run first.
	if HasCrisisPhrase(text) {
		return Tired, 0.98
	}

	if likeHateConflict.MatchString(lower) {
		return Tired, 0.7
	}

	var scores Vector
	for label, patterns := range legacyPatterns {
		for _, re := range patterns {
			if re.MatchString(lower) {
				scores[label] += 1.0
			}
		}
	}

	if greetingPattern.MatchString(lower) {
		scores[Neutral] += 0.5
	}
	if reliefPattern.MatchString(lower) {
		scores[Tired] = max(0.0, scores[Tired]-1.0)
	}

	if scores.Sum() == 0 {
		if prev != nil && *prev != Neutral && prev.Valid() {
			return *prev, 0.4
		}
		return Neutral, 0.3
	}

	top := scores.ArgMax()
	second := secondPlace(scores, top)
	total := scores.Sum()
	baseConf := clamp(scores[top]/(total+1e-6)+0.3, 0.5, 0.9)

	// Pure positive: only Fun is lit, nothing negative at all.
	if top == Fun && scores[Sad] == 0 && scores[Angry] == 0 && scores[Anxious] == 0 && scores[Tired] == 0 {
		return Fun, baseConf
	}

	// Mixed positive/negative within the window compresses to Tired:
	// ambivalence is treated as strain, not joy.
	if scores[second] > 0 && abs(scores[top]-scores[second]) <= c.params.MixedWindow {
		if (top == Fun && negativeSet[second]) || (negativeSet[top] && second == Fun) {
			return Tired, max(0.6, min(baseConf, 0.8))
		}
	}

	// Explicit negation overrides, checked on the raw text.
	if strings.Contains(text, "しんど") && notTiredPattern.MatchString(text) {
		return Neutral, 0.5
	}
	if strings.Contains(text, "不安") && notAnxiousPattern.MatchString(text) {
		return Neutral, 0.5
	}
	if recoveredYesterday.MatchString(text) && fineToday.MatchString(text) {
		return Neutral, 0.6
	}

	return top, baseConf
}

// Classify adapts the legacy engine to the Classifier interface. The
// returned distribution is the one-hot of the detected label with the
// engine's confidence as the score.
func (c *LegacyClassifier) Classify(_ context.Context, text string) Result {
	label, conf := c.Detect(text, nil)
	return Result{Emotion: label, Score: conf, Labels: OneHot(label)}
}

// secondPlace returns the runner-up label, ties broken canonically.
func secondPlace(scores Vector, top Label) Label {
	best := Label(0)
	found := false
	for l := Label(0); l < numLabels; l++ {
		if l == top {
			continue
		}
		if !found || scores[l] > scores[best] {
			best = l
			found = true
		}
	}
	return best
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
