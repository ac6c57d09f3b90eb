package emotion

import "regexp"

// weightedPattern pairs a compiled pattern with the weight each
// distinct match contributes to its label's accumulator. Weights sit
// roughly on a weak 1.0 / medium 1.5 / strong 2.0 scale.
type weightedPattern struct {
	re     *regexp.Regexp
	weight float64
}

// lexicon is the ordered pattern table for the five non-neutral
// labels. It is compiled once at package init and never mutated.
var lexicon = map[Label][]weightedPattern{
	Fun: {
		{regexp.MustCompile(`(楽しい|嬉し|うれし|最高|自己ベスト|優勝|合格|盛れた|神った)`), 1.8},
		{regexp.MustCompile(`(よかった|助かった|順調|ワクワク|楽しみ|期待してる|期待している)`), 1.3},
		{regexp.MustCompile(`(自信|自信ある|自信あり|自信がある)`), 1.4},
	},
	Sad: {
		{regexp.MustCompile(`(悲し|かなしい|落ち込|萎え|萎えた|泣きたい|ショック|へこむ)`), 1.8},
		{regexp.MustCompile(`(失敗|ミス|うまくいかない|つらい)`), 1.3},
	},
	Angry: {
		{regexp.MustCompile(`(ムカつ|むかつ|イラつ|腹立|許せない|キレそう|納得いかない)`), 1.8},
		{regexp.MustCompile(`(不公平|理不尽|雑|舐めてる|雑に)`), 1.4},
	},
	Anxious: {
		{regexp.MustCompile(`(不安|心配|焦る|焦っ|緊張|プレッシャ|間に合わない|大丈夫かな)`), 1.8},
		// Contrastives and hedges hint at unease but only weakly.
		{regexp.MustCompile(`(でも|けど|ただ|かも)`), 0.6},
	},
	Tired: {
		{regexp.MustCompile(`(しんど|つら|きつ|だる|疲れ|つかれ|眠い|頭痛|体調悪)`), 1.8},
		{regexp.MustCompile(`(限界|もう無理|休みたい)`), 2.0},
	},
}

// negationMarkers invert a match's effect when one appears within the
// negationWindow runes immediately after it.
var negationMarkers = []string{"ない", "じゃない", "なく", "ません", "できない", "無理"}

// negationWindow is the rune span inspected after each match.
const negationWindow = 5

// longVowelRun matches an elongated vowel marker run ("つらーーい").
var longVowelRun = regexp.MustCompile(`ー{2,}`)

// confidenceWord and softContrast drive the Anxious damp applied to
// the normalized share: a student writing 自信 plus a hedge is not
// actually anxious.
var (
	confidenceWord = regexp.MustCompile(`自信`)
	softContrast   = regexp.MustCompile(`(でも|けど|ただ|かも)`)
)
