package emotion

import "strings"

// Signals are auxiliary per-submission observations persisted next to
// the classified emotion: what the entry talks about, whether peer
// relationships come up, and how much negation/avoidance language it
// carries. They feed the teacher dashboard, not the classifier.
type Signals struct {
	TopicTags           []string `json:"topic_tags"`
	RelationshipMention bool     `json:"relationship_mention"`
	NegationIndex       float64  `json:"negation_index"`
	Avoidance           float64  `json:"avoidance"`
}

var topicLexicon = []struct {
	tag   string
	words []string
}{
	{"友だち", []string{"友だち", "友達", "ともだち", "いじめ", "無視", "仲間", "先輩", "後輩"}},
	{"勉強", []string{"勉強", "テスト", "宿題", "成績", "授業", "課題", "受験"}},
	{"家庭", []string{"家", "家族", "親", "父", "母", "兄", "姉", "弟", "妹"}},
	{"部活", []string{"部活", "クラブ", "サークル", "試合", "大会", "練習"}},
	{"体調", []string{"体調", "熱", "風邪", "腹痛", "頭痛", "眠い", "疲れ", "しんどい"}},
}

var relationshipWords = []string{"友だち", "友達", "ともだち", "いじめ", "無視", "悪口", "仲間はずれ", "ぼっち"}
var negationWords = []string{"ない", "できない", "無理", "嫌い", "いやだ", "ダメ", "もうやだ"}
var avoidanceWords = []string{"別に", "なんでもない", "知らない", "まあいい", "どうでもいい"}

// ComputeSignals extracts Signals from raw text. Total over any input.
func ComputeSignals(text string) Signals {
	sig := Signals{TopicTags: []string{}}
	if text == "" {
		return sig
	}
	for _, topic := range topicLexicon {
		for _, w := range topic.words {
			if strings.Contains(text, w) {
				sig.TopicTags = append(sig.TopicTags, topic.tag)
				break
			}
		}
	}
	for _, w := range relationshipWords {
		if strings.Contains(text, w) {
			sig.RelationshipMention = true
			break
		}
	}
	sig.NegationIndex = termDensity(text, negationWords)
	sig.Avoidance = termDensity(text, avoidanceWords)
	return sig
}

// termDensity counts occurrences of the terms and squashes to [0,1]
// with ten hits saturating the scale.
func termDensity(text string, terms []string) float64 {
	hits := 0
	for _, w := range terms {
		hits += strings.Count(text, w)
	}
	d := float64(hits) / 10.0
	if d > 1 {
		return 1
	}
	return d
}
