package synth

// envelope end behavior: exponential segments cannot land on zero, so
// the release ramps to releaseFloor and a short time-constant decay
// finishes the job below audibility.
const (
	releaseFloor   = 0.0005
	finalDecayTau  = 0.01
	stopTailAfter  = 0.2 // oscillators stop this long after release end
	minAttackTime  = 0.01
	minSustainGain = 0.001
)

// ampEnvelope evaluates the voice gain as a pure function of engine
// time. All segment boundaries are fixed at creation from the profile
// snapshot; release always follows decay (there is no note-off).
//
// A forced release (voice steal) replaces the remaining schedule with a
// smoothed decay from whatever the gain was at the steal time, which is
// the only way to avoid a pop when automation is mid-ramp.
type ampEnvelope struct {
	start      float64
	attackEnd  float64
	decayEnd   float64
	releaseEnd float64

	peakGain    float64
	sustainGain float64

	forced     bool
	forcedAt   float64
	forcedFrom float64
	forcedTau  float64
}

func newAmpEnvelope(start float64, p SoundProfile, velocity float64) ampEnvelope {
	peak := velocity * 0.5 * p.Oscillator.typeVolume()
	if peak < releaseFloor {
		peak = releaseFloor
	}
	attack := maxf(minAttackTime, p.Attack)
	e := ampEnvelope{
		start:       start,
		attackEnd:   start + attack,
		peakGain:    peak,
		sustainGain: maxf(minSustainGain, p.Sustain*peak),
	}
	e.decayEnd = e.attackEnd + p.Decay
	e.releaseEnd = e.decayEnd + p.Release
	return e
}

// gainAt returns the envelope gain at time t.
func (e *ampEnvelope) gainAt(t float64) float64 {
	if e.forced && t >= e.forcedAt {
		return e.forcedFrom * expApprox(-(t-e.forcedAt)/e.forcedTau)
	}
	switch {
	case t <= e.start:
		return 0
	case t < e.attackEnd:
		return e.peakGain * (t - e.start) / (e.attackEnd - e.start)
	case t < e.decayEnd:
		return expRamp(e.peakGain, e.sustainGain, (t-e.attackEnd)/(e.decayEnd-e.attackEnd))
	case t < e.releaseEnd:
		return expRamp(e.sustainGain, releaseFloor, (t-e.decayEnd)/(e.releaseEnd-e.decayEnd))
	default:
		return releaseFloor * expApprox(-(t-e.releaseEnd)/finalDecayTau)
	}
}

// forceRelease cancels the remaining schedule at time t and fades to
// zero over roughly fade seconds, starting from the current gain.
func (e *ampEnvelope) forceRelease(t, fade float64) {
	from := e.gainAt(t)
	e.forced = true
	e.forcedAt = t
	e.forcedFrom = from
	e.forcedTau = maxf(fade/3, 1e-4)
}

// filterEnvelope drives the voice lowpass cutoff: +boost Hz ramped in
// during the attack, then an exponential settle back toward (never
// below) the base cutoff by the end of release.
type filterEnvelope struct {
	base      float64
	boost     float64
	start     float64
	attackEnd float64
	tau       float64
}

func newFilterEnvelope(env ampEnvelope, baseCutoff float64) filterEnvelope {
	settle := env.releaseEnd - env.attackEnd
	return filterEnvelope{
		base:      baseCutoff,
		boost:     1000,
		start:     env.start,
		attackEnd: env.attackEnd,
		tau:       maxf(settle/4, 1e-3),
	}
}

func (f *filterEnvelope) cutoffAt(t float64) float64 {
	switch {
	case t <= f.start:
		return f.base
	case t < f.attackEnd:
		return f.base + f.boost*(t-f.start)/(f.attackEnd-f.start)
	default:
		return f.base + f.boost*expApprox(-(t-f.attackEnd)/f.tau)
	}
}
