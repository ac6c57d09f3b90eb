package emotion

// Blend merges a freshly classified distribution into the running
// per-student day state. prev may be nil (first submission of the
// period). latest is renormalized with the plain partition first, the
// five non-neutral labels are blended with an exponential moving
// average weighted p.Alpha toward the past, and the arg-max of the
// *latest* observation — the freshest signal, not the blended one —
// picks up p.LatestBonus before a final renormalization. Two
// submissions in one period therefore converge toward the most recent
// dominant emotion without discarding history. Pure and deterministic.
func Blend(prev *Vector, latest Vector, p Params) Vector {
	var past Vector
	if prev != nil {
		past = prev.clip()
	}
	fresh := Normalize(latest)

	var blended Vector
	for _, l := range nonNeutral {
		blended[l] = p.Alpha*past[l] + (1.0-p.Alpha)*fresh[l]
	}
	blended = Normalize(blended)

	winner := fresh.ArgMaxNonNeutral()
	bonus := p.LatestBonus
	if bonus < 0 {
		bonus = 0
	}
	blended[winner] = min(1.0, blended[winner]+bonus)
	return Normalize(blended)
}
