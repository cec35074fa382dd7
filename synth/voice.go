package synth

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/effects/modulation"

	"github.com/cwbudde/typesynth/dsp"
)

// Voice is one sounding note: an oscillator pair, an envelope-driven
// lowpass filter, optional waveshaper distortion and tremolo, and an
// ADSR gain. It is created per trigger and owned by the voice manager
// until its tail has fully decayed.
type Voice struct {
	sampleRate int
	frequency  float64
	pan        float64
	startTime  float64
	stopTime   float64

	osc            OscillatorType
	phase1, step1  float64
	phase2, step2  float64
	env            ampEnvelope
	fenv           filterEnvelope
	filter         *dsp.Biquad
	filterQ        float64
	curve          []float32
	trem           *modulation.Tremolo
	lastFilterFreq float64
}

// NewVoice builds a voice from a profile snapshot. The snapshot is by
// value: profile changes after this call never reach this voice.
// Adrenaline raises the filter base cutoff by up to 500 Hz, capped at
// 12 kHz total.
func NewVoice(sampleRate int, freq, pan, velocity float64, p SoundProfile, adrenaline float64, startTime float64, curves *distortionCurveCache) (*Voice, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrVoiceCreation, sampleRate)
	}
	if !isFinite(freq) || freq <= 0 || freq >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("%w: frequency %.2f out of range", ErrVoiceCreation, freq)
	}
	p = p.sanitized()

	baseCutoff := minf(12000, p.FilterFreq+500*clamp(adrenaline, 0, 1))
	env := newAmpEnvelope(startTime, p, velocity)

	v := &Voice{
		sampleRate: sampleRate,
		frequency:  freq,
		pan:        clamp(pan, -1, 1),
		startTime:  startTime,
		stopTime:   env.releaseEnd + stopTailAfter,
		osc:        p.Oscillator,
		env:        env,
		fenv:       newFilterEnvelope(env, baseCutoff),
		filterQ:    p.FilterQ,
	}
	v.step1 = 2 * math.Pi * freq / float64(sampleRate)
	detuneRatio := pow2(p.Detune / 1200)
	v.step2 = v.step1 * detuneRatio
	v.filter = dsp.NewLowpass(float32(baseCutoff), float32(sampleRate), float32(p.FilterQ))
	v.lastFilterFreq = baseCutoff

	if curves != nil {
		v.curve = curves.curve(p.Distortion)
	}
	if p.Tremolo != nil && p.Tremolo.Depth > 0 {
		trem, err := modulation.NewTremolo(float64(sampleRate))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrVoiceCreation, err)
		}
		if err := trem.SetDepth(p.Tremolo.Depth); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrVoiceCreation, err)
		}
		if err := trem.SetRateHz(p.Tremolo.SpeedHz); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrVoiceCreation, err)
		}
		v.trem = trem
	}
	return v, nil
}

// Frequency returns the voice pitch in Hz.
func (v *Voice) Frequency() float64 { return v.frequency }

// Pan returns the voice stereo position in [-1, 1].
func (v *Voice) Pan() float64 { return v.pan }

// StartTime returns the scheduled start on the engine clock.
func (v *Voice) StartTime() float64 { return v.startTime }

// ForceRelease steals the voice: schedules a smoothed fade to zero from
// the current gain over roughly fade seconds, replacing any remaining
// envelope automation. The voice keeps rendering until its stop time so
// the fade is audible to the end.
func (v *Voice) ForceRelease(at, fade float64) {
	v.env.forceRelease(at, fade)
}

// GainAt returns the envelope gain at engine time t.
func (v *Voice) GainAt(t float64) float64 {
	return v.env.gainAt(t)
}

// ReleaseEnd returns when the scheduled release ramp completes.
func (v *Voice) ReleaseEnd() float64 { return v.env.releaseEnd }

// done reports whether the voice is past its stop time.
func (v *Voice) done(t float64) bool {
	return t >= v.stopTime
}

// Process renders numFrames mono samples starting at engine time t0.
// The filter is retuned once per block from the filter envelope; block
// sizes are short enough that the sweep stays smooth.
func (v *Voice) Process(dst []float32, t0 float64) {
	dt := 1.0 / float64(v.sampleRate)

	cutoff := v.fenv.cutoffAt(t0)
	if math.Abs(cutoff-v.lastFilterFreq) > 1 {
		v.filter.SetLowpass(float32(cutoff), float32(v.sampleRate), float32(v.filterQ))
		v.lastFilterFreq = cutoff
	}

	for i := range dst {
		t := t0 + float64(i)*dt
		if t < v.startTime || t >= v.stopTime {
			dst[i] = 0
			continue
		}

		x := 0.5 * (waveSample(v.osc, v.phase1) + waveSample(v.osc, v.phase2))
		v.phase1 = wrapPhase(v.phase1 + v.step1)
		v.phase2 = wrapPhase(v.phase2 + v.step2)

		x = float64(v.filter.Process(float32(x)))
		if v.curve != nil {
			x = float64(waveshape(v.curve, float32(x)))
		}
		if v.trem != nil {
			x = v.trem.ProcessSample(x)
		}
		x *= v.env.gainAt(t)
		dst[i] = dsp.FlushDenormals(float32(x))
	}
}

func wrapPhase(p float64) float64 {
	if p > math.Pi {
		p -= 2 * math.Pi
	}
	return p
}

func waveSample(w OscillatorType, phase float64) float64 {
	switch w {
	case Triangle:
		return (2 / math.Pi) * math.Asin(math.Sin(phase))
	case Sawtooth:
		return phase / math.Pi
	case Square:
		if math.Sin(phase) >= 0 {
			return 1
		}
		return -1
	default:
		return math.Sin(phase)
	}
}
