package emotion

import "strings"

// Scorer scans raw text against the weighted lexicon and produces a
// raw, unnormalized accumulator vector. It never fails: empty or
// signal-free input yields the all-zero vector. Whatever lands in the
// Neutral slot here is scratch; the distribution normalizer recomputes
// Neutral as the residual.
type Scorer struct {
	params Params
}

// NewScorer returns a Scorer with the given tunables.
func NewScorer(p Params) *Scorer {
	return &Scorer{params: p}
}

// Score produces the raw per-label accumulator vector for text.
func (s *Scorer) Score(text string) Vector {
	t := strings.TrimSpace(text)
	var vec Vector
	if t == "" {
		return vec
	}

	for _, label := range nonNeutral {
		for _, wp := range lexicon[label] {
			for _, loc := range wp.re.FindAllStringIndex(t, -1) {
				vec[label] += wp.weight
				if negatedAfter(t, loc[1]) {
					vec = s.invertNegated(vec, label, wp.weight)
				}
			}
		}
	}

	if strings.ContainsAny(t, "!！") {
		for _, l := range nonNeutral {
			vec[l] *= s.params.ExclaimBoost
		}
	}
	if hasElongation(t) {
		for _, l := range nonNeutral {
			vec[l] *= s.params.RepeatBoost
		}
	}

	return vec
}

// confidenceResolve reports a confidence word next to a soft
// contrastive, which reads as resolve rather than worry. The damp it
// triggers applies to the normalized Anxious share, not the raw
// accumulator: damping pre-partition would shrink the divisor and
// inflate every other share.
func confidenceResolve(t string) bool {
	return confidenceWord.MatchString(t) && softContrast.MatchString(t)
}

// invertNegated redistributes a negated match's weight. "Not happy"
// reads as distress, so a negated positive pushes weight into Sad and
// Anxious rather than simply zeroing out; a negated negative leaks
// toward Fun and Neutral instead.
func (s *Scorer) invertNegated(vec Vector, label Label, w float64) Vector {
	p := s.params
	if label == Fun {
		vec[Sad] += w * p.NegPosToSad
		vec[Anxious] += w * p.NegPosToAnxious
		vec[Fun] -= w * p.NegPosSelf
	} else {
		vec[Fun] += w * p.NegNegToFun
		vec[Neutral] += w * p.NegNegToNeutral
		vec[label] -= w * p.NegNegSelf
	}
	return vec
}

// negatedAfter reports whether a negation marker starts within
// negationWindow runes after byte offset end.
func negatedAfter(t string, end int) bool {
	tail := []rune(t[end:])
	if len(tail) > negationWindow {
		tail = tail[:negationWindow]
	}
	window := string(tail)
	for _, marker := range negationMarkers {
		if strings.Contains(window, marker) {
			return true
		}
	}
	return false
}

// hasElongation reports a run of two or more long-vowel markers or
// three or more repeats of the same rune. The repeat check is done by
// hand because RE2 has no backreferences.
func hasElongation(t string) bool {
	if longVowelRun.MatchString(t) {
		return true
	}
	var prev rune
	run := 0
	for _, r := range t {
		if r == prev {
			run++
			if run >= 3 {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}
