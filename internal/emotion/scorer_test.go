package emotion

import "testing"

func TestScorer_EmptyInput(t *testing.T) {
	s := NewScorer(DefaultParams())
	for _, in := range []string{"", "   ", "\n"} {
		if got := s.Score(in); got != (Vector{}) {
			t.Errorf("Score(%q) = %v, want all-zero", in, got)
		}
	}
}

func TestScorer_PurePositive(t *testing.T) {
	s := NewScorer(DefaultParams())
	vec := s.Score("今日は楽しい！嬉しい！")

	if vec[Fun] <= 0 {
		t.Fatalf("Fun accumulator = %v, want > 0", vec[Fun])
	}
	for _, l := range []Label{Sad, Angry, Tired} {
		if vec[l] != 0 {
			t.Errorf("%s accumulator = %v, want 0", l, vec[l])
		}
	}
}

func TestScorer_ExclaimBoost(t *testing.T) {
	s := NewScorer(DefaultParams())
	plain := s.Score("楽しい")
	boosted := s.Score("楽しい！")
	if boosted[Fun] <= plain[Fun] {
		t.Errorf("exclamation boost missing: %v <= %v", boosted[Fun], plain[Fun])
	}
}

func TestScorer_RepeatBoost(t *testing.T) {
	s := NewScorer(DefaultParams())
	plain := s.Score("つらい")
	elongated := s.Score("つらーーい")
	if elongated[Tired] <= plain[Tired] {
		t.Errorf("elongation boost missing: %v <= %v", elongated[Tired], plain[Tired])
	}
}

func TestScorer_NegationInvertsPositive(t *testing.T) {
	s := NewScorer(DefaultParams())
	p := DefaultParams()

	with := NormalizeFloor(s.Score("嬉しくない"), p)
	without := NormalizeFloor(s.Score("嬉しい"), p)

	if with[Fun] >= without[Fun] {
		t.Errorf("negated Fun share %v not below plain %v", with[Fun], without[Fun])
	}
	if with[Sad] == 0 && with[Anxious] == 0 {
		t.Error("negation shifted no mass into Sad/Anxious")
	}
}

func TestScorer_NegationSoftensNegative(t *testing.T) {
	s := NewScorer(DefaultParams())
	raw := s.Score("疲れてなくて元気")
	if raw[Fun] <= 0 {
		t.Errorf("negated Tired should leak toward Fun, got %v", raw)
	}
}

func TestScorer_ConfidenceLeavesAccumulatorAlone(t *testing.T) {
	s := NewScorer(DefaultParams())
	// The confidence adjustment works on the normalized share, never on
	// the accumulator: both texts hit 緊張 and けど identically raw.
	withConfidence := s.Score("自信があるけど緊張する")
	without := s.Score("緊張するけど頑張る")
	if withConfidence[Anxious] != without[Anxious] {
		t.Errorf("raw Anxious differs: %v vs %v", withConfidence[Anxious], without[Anxious])
	}
}

func TestConfidenceResolve(t *testing.T) {
	cases := map[string]bool{
		"自信があるけど緊張する": true,
		"不安だけど自信":     true,
		"自信がある":       false,
		"緊張するけど頑張る":   false,
	}
	for text, want := range cases {
		if got := confidenceResolve(text); got != want {
			t.Errorf("confidenceResolve(%q) = %v, want %v", text, got, want)
		}
	}
}
