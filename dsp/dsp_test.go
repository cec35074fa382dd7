package dsp

import (
	"math"
	"testing"
)

func sineResponse(b *Biquad, freq, sampleRate float64, n int) float64 {
	var peak float64
	for i := 0; i < n; i++ {
		x := float32(math.Sin(2 * math.Pi * freq * float64(i) / sampleRate))
		y := float64(b.Process(x))
		if i > n/2 { // skip the transient
			if a := math.Abs(y); a > peak {
				peak = a
			}
		}
	}
	return peak
}

func TestLowpassPassesLowAndAttenuatesHigh(t *testing.T) {
	const sampleRate = 48000

	low := NewLowpass(1000, sampleRate, 0.7071)
	passed := sineResponse(low, 100, sampleRate, 9600)
	if passed < 0.9 {
		t.Fatalf("passband attenuated: %f", passed)
	}

	high := NewLowpass(1000, sampleRate, 0.7071)
	stopped := sineResponse(high, 10000, sampleRate, 9600)
	if stopped > 0.1 {
		t.Fatalf("stopband insufficiently attenuated: %f", stopped)
	}
}

func TestSetLowpassRetunesWithoutReset(t *testing.T) {
	const sampleRate = 48000
	b := NewLowpass(500, sampleRate, 1)

	// Run signal through, then retune; state must carry over without a
	// discontinuity blowing up.
	for i := 0; i < 1000; i++ {
		b.Process(float32(math.Sin(float64(i) * 0.05)))
	}
	x1, y1 := b.x1, b.y1
	b.SetLowpass(4000, sampleRate, 1)
	if b.x1 != x1 || b.y1 != y1 {
		t.Fatalf("SetLowpass must not clear filter state")
	}

	out := b.Process(0.5)
	if math.IsNaN(float64(out)) || math.Abs(float64(out)) > 10 {
		t.Fatalf("unstable output after retune: %f", out)
	}
}

func TestSetLowpassClampsDegenerateInput(t *testing.T) {
	b := &Biquad{}
	b.SetLowpass(100000, 48000, 0) // above nyquist, non-positive q
	for i := 0; i < 4800; i++ {
		y := b.Process(1)
		if math.IsNaN(float64(y)) || math.IsInf(float64(y), 0) {
			t.Fatalf("clamped filter unstable at %d: %f", i, y)
		}
	}
}

func TestBiquadReset(t *testing.T) {
	b := NewLowpass(1000, 48000, 0.7071)
	b.Process(1)
	b.Process(1)
	b.Reset()
	if b.x1 != 0 || b.x2 != 0 || b.y1 != 0 || b.y2 != 0 {
		t.Fatalf("state not cleared")
	}
}

func TestDelayLineRoundTrip(t *testing.T) {
	d := NewDelayLine(16)
	for i := 0; i < 16; i++ {
		d.Write(float32(i))
	}
	for delay := 1; delay < 16; delay++ {
		want := float32(16 - delay)
		if got := d.Read(delay); got != want {
			t.Fatalf("Read(%d) got=%f want=%f", delay, got, want)
		}
	}
}

func TestDelayLineClampsExcessDelay(t *testing.T) {
	d := NewDelayLine(8)
	d.Write(42)
	for i := 0; i < 6; i++ {
		d.Write(0)
	}
	if got := d.Read(100); got != 42 {
		t.Fatalf("excess delay must clamp to oldest sample: %f", got)
	}
}

func TestDelayLineFractionalRead(t *testing.T) {
	d := NewDelayLine(8)
	d.Write(0)
	d.Write(1)
	// Halfway between the two most recent samples.
	got := d.ReadFractional(1.5)
	if math.Abs(float64(got)-0.5) > 1e-6 {
		t.Fatalf("fractional read got=%f want=0.5", got)
	}
}

func TestFlushDenormals(t *testing.T) {
	if got := FlushDenormals(1e-35); got != 0 {
		t.Fatalf("denormal not flushed: %g", got)
	}
	if got := FlushDenormals(0.5); got != 0.5 {
		t.Fatalf("normal value altered: %g", got)
	}
	if got := FlushDenormals(-0.5); got != -0.5 {
		t.Fatalf("normal value altered: %g", got)
	}
}
