// Package emotion implements the six-way emotion model used across
// kokorolog: canonical labels, probability vectors over them, the
// lexicon scorer, distribution normalization, classification engines,
// and temporal blending. Everything in this package is a pure function
// over immutable inputs and is safe for concurrent use.
package emotion

import (
	"encoding/json"
	"fmt"
)

// Label identifies one of the six canonical emotion categories.
// The numeric order is the canonical enumeration order and is used to
// break ties deterministically.
type Label uint8

const (
	Fun     Label = iota // 楽しい
	Sad                  // 悲しい
	Angry                // 怒り
	Anxious              // 不安
	Tired                // しんどい
	Neutral              // 中立

	numLabels = 6
)

var labelNames = [numLabels]string{"楽しい", "悲しい", "怒り", "不安", "しんどい", "中立"}

// String returns the canonical Japanese literal for the label.
func (l Label) String() string {
	if int(l) >= numLabels {
		return fmt.Sprintf("Label(%d)", uint8(l))
	}
	return labelNames[l]
}

// Valid reports whether l is one of the six canonical labels.
func (l Label) Valid() bool { return int(l) < numLabels }

// ParseLabel maps a canonical literal to its Label. It does not apply
// alias resolution or folding; see Normalizer for that.
func ParseLabel(s string) (Label, bool) {
	for i, name := range labelNames {
		if s == name {
			return Label(i), true
		}
	}
	return Neutral, false
}

// Labels returns all six labels in canonical order.
func Labels() [numLabels]Label {
	return [numLabels]Label{Fun, Sad, Angry, Anxious, Tired, Neutral}
}

// nonNeutral is the iteration order for the five signal-bearing labels.
var nonNeutral = [5]Label{Fun, Sad, Angry, Anxious, Tired}

// negativeSet marks the labels treated as negative by the legacy rule
// engine's mixed pos/neg compression.
var negativeSet = map[Label]bool{Sad: true, Angry: true, Anxious: true, Tired: true}

// Vector maps each canonical label to a non-negative weight. A Vector
// always carries exactly six entries; a missing key is impossible by
// construction. Probability vectors keep the five non-neutral entries
// as a partition of [0,1] with Neutral as the residual.
type Vector [numLabels]float64

// Get returns the value for the given label.
func (v Vector) Get(l Label) float64 { return v[l] }

// Set returns a copy of v with the given label set.
func (v Vector) Set(l Label, val float64) Vector {
	v[l] = val
	return v
}

// SumNonNeutral returns the sum of the five non-neutral entries.
func (v Vector) SumNonNeutral() float64 {
	var s float64
	for _, l := range nonNeutral {
		s += v[l]
	}
	return s
}

// Sum returns the sum of all six entries.
func (v Vector) Sum() float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s
}

// ArgMax returns the label with the highest value, ties broken by
// canonical order.
func (v Vector) ArgMax() Label {
	best := Fun
	for l := Label(1); l < numLabels; l++ {
		if v[l] > v[best] {
			best = l
		}
	}
	return best
}

// ArgMaxNonNeutral returns the non-neutral label with the highest
// value, ties broken by canonical order.
func (v Vector) ArgMaxNonNeutral() Label {
	best := Fun
	for _, l := range nonNeutral[1:] {
		if v[l] > v[best] {
			best = l
		}
	}
	return best
}

// clip returns a copy of v with every entry clamped to >= 0.
func (v Vector) clip() Vector {
	for i, x := range v {
		if x < 0 {
			v[i] = 0
		}
	}
	return v
}

// OneHot returns the vector with 1.0 at l and 0 elsewhere.
func OneHot(l Label) Vector {
	var v Vector
	v[l] = 1.0
	return v
}

// pureNeutral is the fixed fallback distribution for zero-signal input.
func pureNeutral() Vector { return OneHot(Neutral) }

// MarshalJSON encodes the vector as an object keyed by the canonical
// Japanese label names, matching the wire and storage format.
func (v Vector) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, numLabels)
	for i, name := range labelNames {
		m[name] = v[i]
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by label names. Unknown keys
// are dropped, missing keys stay zero, and negative values are clamped
// so stored rows from older writers cannot smuggle in bad state.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out Vector
	for k, val := range m {
		if l, ok := ParseLabel(k); ok && val > 0 {
			out[l] = val
		}
	}
	*v = out
	return nil
}
