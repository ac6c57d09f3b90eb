package emotion

// Params collects every tunable constant used by the scorer, the
// normalizers, and the blender. The zero value is not useful; start
// from DefaultParams. All values are hand-tuned against real journal
// text and carried over verbatim from the deployed rule set — change
// them only with a regression corpus in hand.
type Params struct {
	// ExclaimBoost multiplies all non-neutral accumulators when the
	// text contains an exclamation mark (half or full width).
	ExclaimBoost float64

	// RepeatBoost multiplies all non-neutral accumulators when the
	// text contains an elongated vowel run or a 3+ repeat of the same
	// character.
	RepeatBoost float64

	// NeutralFloor collapses the distribution to pure Neutral when the
	// winning non-neutral share falls below it.
	NeutralFloor float64

	// WinnerBonus is added to the winning label after the floor check
	// to keep borderline calls from decaying back to Neutral.
	WinnerBonus float64

	// Alpha is the EMA weight on the previous day-state when blending.
	// Higher means stickier history.
	Alpha float64

	// LatestBonus is added to the freshest observation's winning label
	// after blending.
	LatestBonus float64

	// ExternalWeight is the convex-combination weight given to an
	// external classifier's distribution when one is available.
	ExternalWeight float64

	// Negation splits. A positive match followed by a negation marker
	// sheds NegPosSelf of its weight and pushes NegPosToSad/NegPosToAnxious
	// shares into the negative labels ("not happy" reads as distress).
	// A negated negative match sheds NegNegSelf and pushes
	// NegNegToFun/NegNegToNeutral shares the other way.
	NegPosToSad     float64
	NegPosToAnxious float64
	NegPosSelf      float64
	NegNegToFun     float64
	NegNegToNeutral float64
	NegNegSelf      float64

	// ConfidenceDamp scales the normalized Anxious share down when a
	// confidence word co-occurs with a soft contrastive
	// (でも/けど/ただ/かも).
	ConfidenceDamp float64

	// MixedWindow is the legacy engine's |top-second| window inside
	// which a positive/negative split collapses to Tired.
	MixedWindow float64
}

// DefaultParams returns the production constants.
func DefaultParams() Params {
	return Params{
		ExclaimBoost:    1.15,
		RepeatBoost:     1.10,
		NeutralFloor:    0.45,
		WinnerBonus:     0.05,
		Alpha:           0.8,
		LatestBonus:     0.2,
		ExternalWeight:  0.7,
		NegPosToSad:     0.7,
		NegPosToAnxious: 0.5,
		NegPosSelf:      0.8,
		NegNegToFun:     0.4,
		NegNegToNeutral: 0.3,
		NegNegSelf:      0.6,
		ConfidenceDamp:  0.7,
		MixedWindow:     1.0,
	}
}
