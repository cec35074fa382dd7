package analysis

import (
	"math"
	"testing"
)

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Fatalf("RMS(nil) got=%f want=0", got)
	}
	x := []float64{1, -1, 1, -1}
	if got := RMS(x); math.Abs(got-1) > 1e-12 {
		t.Fatalf("RMS got=%f want=1", got)
	}
}

func TestRMSEnvelopeFraming(t *testing.T) {
	x := make([]float64, 100)
	for i := range x {
		x[i] = 1
	}
	env := RMSEnvelope(x, 10, 5)
	if len(env) != 19 {
		t.Fatalf("envelope length got=%d want=19", len(env))
	}
	for i, v := range env {
		if math.Abs(v-1) > 1e-12 {
			t.Fatalf("constant signal must have unit envelope at %d: %f", i, v)
		}
	}
	if env := RMSEnvelope(x, 0, 5); env != nil {
		t.Fatalf("invalid frame must return nil")
	}
	if env := RMSEnvelope(x[:5], 10, 5); env != nil {
		t.Fatalf("short input must return nil")
	}
}

func TestLinToDB(t *testing.T) {
	if got := LinToDB(1); math.Abs(got) > 1e-12 {
		t.Fatalf("LinToDB(1) got=%f want=0", got)
	}
	if got := LinToDB(0.1); math.Abs(got+20) > 1e-9 {
		t.Fatalf("LinToDB(0.1) got=%f want=-20", got)
	}
	if got := LinToDB(0); got < -241 || got > -239 {
		t.Fatalf("LinToDB(0) not floored: %f", got)
	}
}

func TestDecaySlopeRecoversKnownDecay(t *testing.T) {
	// Synthesize an envelope decaying at exactly -60 dB/s.
	const hopSec = 0.01
	env := make([]float64, 300)
	for i := range env {
		db := -60.0 * float64(i) * hopSec
		env[i] = math.Pow(10, db/20)
	}

	slope := DecaySlopeDBPerS(env, hopSec)
	if math.IsNaN(slope) {
		t.Fatalf("unexpected NaN slope")
	}
	if math.Abs(slope+60) > 1 {
		t.Fatalf("slope got=%f want=-60", slope)
	}
}

func TestDecaySlopeTooShortIsNaN(t *testing.T) {
	if !math.IsNaN(DecaySlopeDBPerS([]float64{1, 0.5, 0.25}, 0.01)) {
		t.Fatalf("short envelope must yield NaN")
	}
	if !math.IsNaN(DecaySlopeDBPerS(make([]float64, 100), 0)) {
		t.Fatalf("non-positive hop must yield NaN")
	}
}

func TestStereoToMono(t *testing.T) {
	st := []float32{1, 0, 0, 1, 0.5, 0.5}
	mono := StereoToMono(st)
	want := []float64{0.5, 0.5, 0.5}
	if len(mono) != len(want) {
		t.Fatalf("length got=%d want=%d", len(mono), len(want))
	}
	for i := range want {
		if math.Abs(mono[i]-want[i]) > 1e-9 {
			t.Fatalf("downmix mismatch at %d: got=%f want=%f", i, mono[i], want[i])
		}
	}
	if StereoToMono([]float32{1}) != nil {
		t.Fatalf("sub-frame input must return nil")
	}
}
