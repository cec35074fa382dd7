package synth

import "math"

// cueTone is one partial of a fixed-shape cue: an exponential frequency
// sweep from freq0 to freq1 over the cue duration.
type cueTone struct {
	freq0, freq1 float64
	amp          float64
}

// cue is a one-shot generator for the metronome tick and the error
// buzz. Cues bypass the voice ADSR and the effects sends entirely; they
// are summed into the output just before the compressor, and scheduled
// with the same lookahead margin as voices.
type cue struct {
	sampleRate int
	start, dur float64
	gainTau    float64
	tones      []cueTone
	phases     []float64
}

func newMetronomeCue(sampleRate int, start float64, accent bool) *cue {
	tone := cueTone{freq0: 1000, freq1: 500, amp: 0.4}
	if accent {
		tone = cueTone{freq0: 1500, freq1: 800, amp: 0.5}
	}
	return &cue{
		sampleRate: sampleRate,
		start:      start,
		dur:        0.12,
		gainTau:    0.03,
		tones:      []cueTone{tone},
		phases:     make([]float64, 1),
	}
}

func newErrorCue(sampleRate int, start float64) *cue {
	return &cue{
		sampleRate: sampleRate,
		start:      start,
		dur:        0.3,
		gainTau:    0.08,
		tones: []cueTone{
			{freq0: 110, freq1: 110, amp: 0.3},
			{freq0: 116.5, freq1: 116.5, amp: 0.3},
		},
		phases: make([]float64, 2),
	}
}

func (c *cue) done(t float64) bool {
	return t >= c.start+c.dur
}

// render adds the cue into a stereo interleaved buffer starting at
// engine time t0.
func (c *cue) render(dst []float32, t0 float64) {
	dt := 1.0 / float64(c.sampleRate)
	frames := len(dst) / 2
	for i := 0; i < frames; i++ {
		t := t0 + float64(i)*dt
		if t < c.start || t >= c.start+c.dur {
			continue
		}
		u := (t - c.start) / c.dur
		env := expApprox(-(t - c.start) / c.gainTau)

		var x float64
		for j, tone := range c.tones {
			f := tone.freq0
			if tone.freq1 != tone.freq0 {
				f = tone.freq0 * expApprox(math.Log(tone.freq1/tone.freq0)*u)
			}
			c.phases[j] += 2 * math.Pi * f * dt
			x += tone.amp * env * math.Sin(c.phases[j])
		}
		dst[i*2] += float32(x)
		dst[i*2+1] += float32(x)
	}
}
