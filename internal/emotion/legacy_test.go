package emotion

import (
	"context"
	"testing"
)

func TestLegacy_CrisisShortCircuit(t *testing.T) {
	c := NewLegacyClassifier(DefaultParams())

	// The crisis check dominates everything, even strong positives.
	for _, text := range []string{
		"もう無理、死にたい",
		"楽しいこともあるけど消えたい",
		"最高だけどリスカした",
	} {
		label, conf := c.Detect(text, nil)
		if label != Tired || conf != 0.98 {
			t.Errorf("Detect(%q) = (%s, %v), want (しんどい, 0.98)", text, label, conf)
		}
	}
}

func TestLegacy_EmptyTextFallback(t *testing.T) {
	c := NewLegacyClassifier(DefaultParams())

	prev := Sad
	if label, conf := c.Detect("", &prev); label != Sad || conf != 0.5 {
		t.Errorf("empty with prev = (%s, %v), want (悲しい, 0.5)", label, conf)
	}
	if label, conf := c.Detect("", nil); label != Neutral || conf != 0.3 {
		t.Errorf("empty without prev = (%s, %v), want (中立, 0.3)", label, conf)
	}
	neutralPrev := Neutral
	if label, conf := c.Detect("", &neutralPrev); label != Neutral || conf != 0.3 {
		t.Errorf("empty with neutral prev = (%s, %v), want (中立, 0.3)", label, conf)
	}

	// Whitespace-only is not empty: it reaches the pattern scan, hits
	// nothing, and carries prev at the weaker no-hit confidence.
	if label, conf := c.Detect("   ", &prev); label != Sad || conf != 0.4 {
		t.Errorf("whitespace with prev = (%s, %v), want (悲しい, 0.4)", label, conf)
	}
}

func TestLegacy_LikeHateConflict(t *testing.T) {
	c := NewLegacyClassifier(DefaultParams())
	if label, conf := c.Detect("あの子のこと好きだけど嫌い", nil); label != Tired || conf != 0.7 {
		t.Errorf("got (%s, %v), want (しんどい, 0.7)", label, conf)
	}
}

func TestLegacy_NoHitCarriesPrevForward(t *testing.T) {
	c := NewLegacyClassifier(DefaultParams())

	prev := Anxious
	label, conf := c.Detect("きょうは天気の話をした", &prev)
	if label != Anxious || conf != 0.4 {
		t.Errorf("got (%s, %v), want (不安, 0.4)", label, conf)
	}
	if label, conf := c.Detect("きょうは天気の話をした", nil); label != Neutral || conf != 0.3 {
		t.Errorf("got (%s, %v), want (中立, 0.3)", label, conf)
	}
}

func TestLegacy_PurePositive(t *testing.T) {
	c := NewLegacyClassifier(DefaultParams())
	label, conf := c.Detect("部活で褒められて最高だった", nil)
	if label != Fun {
		t.Fatalf("label = %s, want 楽しい", label)
	}
	if conf < 0.5 || conf > 0.9 {
		t.Errorf("confidence %v outside [0.5, 0.9]", conf)
	}
}

func TestLegacy_MixedCompressesToTired(t *testing.T) {
	c := NewLegacyClassifier(DefaultParams())

	// One positive and one negative hit within the window.
	label, conf := c.Detect("楽しかったけど泣いた", nil)
	if label != Tired {
		t.Fatalf("label = %s, want しんどい", label)
	}
	if conf < 0.6 || conf > 0.8 {
		t.Errorf("compressed confidence %v outside [0.6, 0.8]", conf)
	}
}

func TestLegacy_GreetingLeansNeutral(t *testing.T) {
	c := NewLegacyClassifier(DefaultParams())
	// Greeting alone has no emotion hits but a Neutral bump, so the
	// zero-hit prev fallback must not fire.
	label, _ := c.Detect("こんにちは", nil)
	if label != Neutral {
		t.Errorf("label = %s, want 中立", label)
	}
}

func TestLegacy_ReliefDecrementsTired(t *testing.T) {
	c := NewLegacyClassifier(DefaultParams())

	// 無理しないでね hits 無理 for Tired, but the relief phrasing cancels
	// the single hit and the text falls through to the no-hit path.
	if label, conf := c.Detect("無理しないでね", nil); label != Neutral || conf != 0.3 {
		t.Errorf("relief phrase = (%s, %v), want (中立, 0.3)", label, conf)
	}

	// The decrement is a single -1: a second Tired hit (おつかれ matches
	// つかれ) survives it and the text still reads as しんどい.
	if label, _ := c.Detect("無理しないでね、おつかれ", nil); label != Tired {
		t.Errorf("double Tired hit with one relief = %s, want しんどい", label)
	}
}

func TestLegacy_NegationOverrides(t *testing.T) {
	c := NewLegacyClassifier(DefaultParams())

	// The override only fires once some pattern has scored; a bare
	// negation with no other signal falls through to the no-hit path.
	cases := []string{
		"疲れたけどそこまでしんどくないよ",
		"テストが不安ってわけじゃないんだけど",
		"昨日は疲れてしんどかったけど今日は大丈夫",
	}
	for _, text := range cases {
		label, conf := c.Detect(text, nil)
		if label != Neutral || conf != 0.5 {
			t.Errorf("Detect(%q) = (%s, %v), want (中立, 0.5)", text, label, conf)
		}
	}

	if label, conf := c.Detect("そこまでしんどくないよ", nil); label != Neutral || conf != 0.3 {
		t.Errorf("bare negation = (%s, %v), want the no-hit (中立, 0.3)", label, conf)
	}
}

func TestLegacy_ClassifierAdapter(t *testing.T) {
	c := NewLegacyClassifier(DefaultParams())
	res := c.Classify(context.Background(), "もう無理、死にたい")
	if res.Emotion != Tired || res.Score != 0.98 {
		t.Errorf("adapter result = (%s, %v)", res.Emotion, res.Score)
	}
	if res.Labels != OneHot(Tired) {
		t.Errorf("adapter labels = %v, want one-hot", res.Labels)
	}
}
