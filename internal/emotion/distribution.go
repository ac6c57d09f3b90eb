package emotion

// Normalize converts a raw accumulator vector into a probability
// distribution: values are clipped to >= 0, the five non-neutral
// entries are divided by their sum so they partition [0,1], and
// Neutral becomes the residual 1 - sum (zero up to rounding). A vector
// with no non-neutral signal collapses to pure Neutral. Normalize is
// idempotent on its own output.
func Normalize(raw Vector) Vector {
	v := raw.clip()
	total := v.SumNonNeutral()
	if total <= 0 {
		return pureNeutral()
	}
	for _, l := range nonNeutral {
		v[l] /= total
	}
	v[Neutral] = residual(v)
	return v
}

// NormalizeFloor is the variant used by the primary classifier. On top
// of the plain partition it applies the neutral floor — if the winning
// non-neutral share is below p.NeutralFloor the whole vector collapses
// to pure Neutral ("signal too weak to call") — and otherwise nudges
// the winner up by p.WinnerBonus, clamped to 1, with Neutral absorbing
// the remainder.
func NormalizeFloor(raw Vector, p Params) Vector {
	return normalizeFloorDamped(raw, p, false)
}

// normalizeFloorDamped is NormalizeFloor with the confidence
// adjustment: when dampAnxious is set the normalized Anxious share is
// scaled by p.ConfidenceDamp after the partition and before the floor
// check, so a damped winner that falls under the floor collapses to
// pure Neutral like any other weak signal.
func normalizeFloorDamped(raw Vector, p Params, dampAnxious bool) Vector {
	v := raw.clip()
	total := v.SumNonNeutral()
	if total <= 0 {
		return pureNeutral()
	}
	for _, l := range nonNeutral {
		v[l] /= total
	}
	if dampAnxious && v[Anxious] > 0 {
		v[Anxious] *= p.ConfidenceDamp
	}
	winner := v.ArgMaxNonNeutral()
	if v[winner] < p.NeutralFloor {
		return pureNeutral()
	}
	v[winner] = min(1.0, v[winner]+p.WinnerBonus)
	v[Neutral] = residual(v)
	return v
}

// residual returns max(0, 1 - sum(non-neutral)).
func residual(v Vector) float64 {
	r := 1.0 - v.SumNonNeutral()
	if r < 0 {
		return 0
	}
	return r
}
