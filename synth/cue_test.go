package synth

import (
	"math"
	"testing"
)

func renderCue(c *cue, sampleRate int, seconds float64) []float32 {
	frames := int(seconds * float64(sampleRate))
	dst := make([]float32, frames*2)
	c.render(dst, 0)
	return dst
}

func TestMetronomeCueShape(t *testing.T) {
	const sampleRate = 44100
	c := newMetronomeCue(sampleRate, 0.01, false)

	out := renderCue(c, sampleRate, 0.2)
	requireFinite(t, out, "metronome cue")

	if rms := stereoRMS(out); rms < 1e-4 {
		t.Fatalf("metronome cue silent: rms=%g", rms)
	}

	// Silent before its scheduled start.
	preFrames := sampleRate * 9 / 1000
	for i := 0; i < preFrames*2; i++ {
		if out[i] != 0 {
			t.Fatalf("cue sounded before start at %d: %f", i, out[i])
		}
	}

	if !c.done(0.01 + 0.12) {
		t.Fatalf("cue should be done after its duration")
	}
	if c.done(0.05) {
		t.Fatalf("cue done too early")
	}
}

func TestMetronomeAccentIsLouder(t *testing.T) {
	const sampleRate = 44100
	plain := renderCue(newMetronomeCue(sampleRate, 0, false), sampleRate, 0.15)
	accent := renderCue(newMetronomeCue(sampleRate, 0, true), sampleRate, 0.15)

	if stereoRMS(accent) <= stereoRMS(plain) {
		t.Fatalf("accent tick not louder: accent=%g plain=%g", stereoRMS(accent), stereoRMS(plain))
	}
}

func TestErrorCueIsDissonantPair(t *testing.T) {
	const sampleRate = 44100
	c := newErrorCue(sampleRate, 0)
	out := renderCue(c, sampleRate, 0.35)
	requireFinite(t, out, "error cue")

	if rms := stereoRMS(out); rms < 1e-4 {
		t.Fatalf("error cue silent: rms=%g", rms)
	}
	// Two tones a quartertone-ish apart beat against each other: the
	// envelope of the sum must dip well below its own peak within the
	// first beat period (~1/6.5 s).
	mono := make([]float32, len(out)/2)
	for i := range mono {
		mono[i] = out[i*2]
	}
	window := sampleRate / 20
	peak, trough := 0.0, math.Inf(1)
	for start := 0; start+window < len(mono); start += window / 2 {
		var sum float64
		for _, s := range mono[start : start+window] {
			sum += float64(s) * float64(s)
		}
		r := math.Sqrt(sum / float64(window))
		if r > peak {
			peak = r
		}
		if r < trough {
			trough = r
		}
	}
	if peak <= 0 || trough >= peak {
		t.Fatalf("expected beating envelope, peak=%g trough=%g", peak, trough)
	}
}

func TestCueRenderAccumulates(t *testing.T) {
	const sampleRate = 44100
	c1 := newMetronomeCue(sampleRate, 0, false)
	c2 := newMetronomeCue(sampleRate, 0, false)

	solo := renderCue(newMetronomeCue(sampleRate, 0, false), sampleRate, 0.05)
	dst := make([]float32, len(solo))
	c1.render(dst, 0)
	c2.render(dst, 0)

	if stereoRMS(dst) <= stereoRMS(solo)*1.5 {
		t.Fatalf("render must add into the buffer: double=%g solo=%g", stereoRMS(dst), stereoRMS(solo))
	}
}
