package emotion

import (
	"math"
	"testing"
)

func TestBlend_NilPrevTakesLatest(t *testing.T) {
	p := DefaultParams()
	out := Blend(nil, OneHot(Fun), p)
	assertDistribution(t, out)
	if out.ArgMax() != Fun {
		t.Fatalf("argmax = %s, want 楽しい", out.ArgMax())
	}
	if math.Abs(out[Fun]-1.0) > 1e-9 {
		t.Errorf("Fun = %v, want 1.0 for a first one-hot submission", out[Fun])
	}
}

func TestBlend_StableWinnerUnderRepeat(t *testing.T) {
	p := DefaultParams()
	v := Normalize(Vector{Fun: 3, Sad: 1})

	out := Blend(&v, v, p)
	assertDistribution(t, out)
	if out.ArgMax() != v.ArgMax() {
		t.Fatalf("repeating the same distribution moved the winner: %s -> %s", v.ArgMax(), out.ArgMax())
	}
	// The latest-observation bonus only ever strengthens a winner that
	// already leads.
	if out[Fun] < v[Fun] {
		t.Errorf("winner share shrank: %v -> %v", v[Fun], out[Fun])
	}
}

func TestBlend_HistoryOutweighsOneContraryReading(t *testing.T) {
	p := DefaultParams()
	prev := Normalize(OneHot(Sad))

	out := Blend(&prev, OneHot(Fun), p)
	assertDistribution(t, out)
	if out.ArgMax() != Sad {
		t.Fatalf("single contrary reading flipped the day to %s", out.ArgMax())
	}
	if out[Fun] <= 0 {
		t.Error("latest observation left no trace in the blend")
	}
}

func TestBlend_RepeatedReadingsEventuallyFlip(t *testing.T) {
	p := DefaultParams()
	state := Normalize(OneHot(Sad))

	for i := 0; i < 2; i++ {
		state = Blend(&state, OneHot(Fun), p)
		assertDistribution(t, state)
	}
	if state.ArgMax() != Fun {
		t.Fatalf("two 楽しい readings did not overturn 悲しい: argmax = %s", state.ArgMax())
	}
}

func TestBlend_AlwaysDistribution(t *testing.T) {
	p := DefaultParams()
	prevs := []*Vector{nil, ptr(Normalize(Vector{Angry: 1, Anxious: 1})), ptr(pureNeutral())}
	latests := []Vector{
		{},
		OneHot(Tired),
		{Fun: 0.1, Sad: 0.2, Angry: 0.3, Anxious: 0.4, Tired: 0.5},
		{Fun: -1, Sad: 2},
	}
	for _, prev := range prevs {
		for _, latest := range latests {
			assertDistribution(t, Blend(prev, latest, p))
		}
	}
}

func ptr(v Vector) *Vector { return &v }
