package synth

import (
	"math"
	"testing"
)

func runBusSilence(b *EffectsBus, frames int) {
	const block = 128
	dry := make([]float32, block*2)
	send := make([]float32, block)
	aux := make([]float32, block*2)
	out := make([]float32, block*2)
	for done := 0; done < frames; done += block {
		b.Process(dry, send, aux, out)
	}
}

func TestEffectsBusBuildsAtCommonRates(t *testing.T) {
	// The dynamics stage rejects out-of-range parameters at build time;
	// in particular the compressor knee is limited to [0, 24] dB. A bad
	// constant here would make every NewEffectsBus call fail and leave
	// the engine permanently silent.
	if compKneeDB < 0 || compKneeDB > 24 {
		t.Fatalf("compressor knee %v outside [0, 24]", compKneeDB)
	}
	for _, sr := range []int{22050, 44100, 48000, 96000} {
		if _, err := NewEffectsBus(sr); err != nil {
			t.Fatalf("NewEffectsBus(%d): %v", sr, err)
		}
	}
}

func TestEffectsBusMixTargetsForFullReverb(t *testing.T) {
	b, err := NewEffectsBus(44100)
	if err != nil {
		t.Fatalf("NewEffectsBus: %v", err)
	}
	b.SetReverbMix(1.0)

	// Run well past the smoothing time constant so the gains converge.
	runBusSilence(b, 44100)

	dry, wet, send := b.MixGains()
	if math.Abs(dry-0.6) > 1e-2 {
		t.Fatalf("dry gain got=%f want=0.6", dry)
	}
	if math.Abs(wet-0.8) > 1e-2 {
		t.Fatalf("wet gain got=%f want=0.8", wet)
	}
	if math.Abs(send-0.32) > 1e-2 {
		t.Fatalf("delay send gain got=%f want=0.32", send)
	}
}

func TestEffectsBusMixTargetsForDrySignal(t *testing.T) {
	b, err := NewEffectsBus(44100)
	if err != nil {
		t.Fatalf("NewEffectsBus: %v", err)
	}
	b.SetReverbMix(1.0)
	runBusSilence(b, 22050)
	b.SetReverbMix(0)
	runBusSilence(b, 44100)

	dry, wet, send := b.MixGains()
	if math.Abs(dry-1.0) > 1e-2 || wet > 1e-2 || send > 1e-2 {
		t.Fatalf("gains did not return to dry: dry=%f wet=%f send=%f", dry, wet, send)
	}
}

func TestEffectsBusMixChangesAreSmoothed(t *testing.T) {
	b, err := NewEffectsBus(44100)
	if err != nil {
		t.Fatalf("NewEffectsBus: %v", err)
	}
	b.SetReverbMix(1.0)

	prev, _, _ := b.MixGains()
	runBusSilence(b, 128)
	after, _, _ := b.MixGains()

	// One block in, the gain must have moved but nowhere near the target.
	if after >= prev {
		t.Fatalf("dry gain not ramping down: %f -> %f", prev, after)
	}
	if after < 0.9 {
		t.Fatalf("dry gain jumped instead of ramping: %f", after)
	}
}

func TestEffectsBusOutputStaysFinite(t *testing.T) {
	const sampleRate = 44100
	b, err := NewEffectsBus(sampleRate)
	if err != nil {
		t.Fatalf("NewEffectsBus: %v", err)
	}
	b.SetReverbMix(0.7)

	const block = 128
	dry := make([]float32, block*2)
	send := make([]float32, block)
	aux := make([]float32, block*2)
	out := make([]float32, block*2)

	phase := 0.0
	for blockIdx := 0; blockIdx < 400; blockIdx++ {
		for i := 0; i < block; i++ {
			x := float32(math.Sin(phase)) * 0.9
			phase += 2 * math.Pi * 330 / sampleRate
			dry[i*2] = x
			dry[i*2+1] = x
			send[i] = x
		}
		b.Process(dry, send, aux, out)
		requireFinite(t, out, "bus output")
	}
}

func TestEffectsBusLimiterBoundsOutput(t *testing.T) {
	b, err := NewEffectsBus(44100)
	if err != nil {
		t.Fatalf("NewEffectsBus: %v", err)
	}
	b.SetReverbMix(0.8)

	const block = 128
	dry := make([]float32, block*2)
	send := make([]float32, block)
	aux := make([]float32, block*2)
	out := make([]float32, block*2)
	for i := range dry {
		dry[i] = 0.99
	}
	for i := range send {
		send[i] = 0.99
	}

	for blockIdx := 0; blockIdx < 200; blockIdx++ {
		b.Process(dry, send, aux, out)
	}
	// After the limiter attack settles, hot input must stay near or
	// below full scale.
	for i, s := range out {
		if math.Abs(float64(s)) > 1.2 {
			t.Fatalf("limited output too hot at %d: %f", i, s)
		}
	}
}

func TestEffectsBusDelayEchoesSend(t *testing.T) {
	const sampleRate = 8000 // keep the tap short for the test
	b, err := NewEffectsBus(sampleRate)
	if err != nil {
		t.Fatalf("NewEffectsBus: %v", err)
	}
	// Force the send gain up without waiting for the ramp.
	b.send.value = 1.0
	b.send.target = 1.0
	b.dry.value = 0
	b.dry.target = 0
	b.wet.value = 0
	b.wet.target = 0

	tap := int(delayTapSeconds * sampleRate)
	dry := make([]float32, 2)
	aux := make([]float32, 2)
	out := make([]float32, 2)

	var nearTap float64
	for i := 0; i <= tap+2; i++ {
		send := []float32{0}
		if i == 0 {
			send[0] = 1
		}
		b.Process(dry, send, aux, out)
		if i >= tap-2 {
			if v := math.Abs(float64(out[0])); v > nearTap {
				nearTap = v
			}
		}
	}
	if nearTap < 1e-3 {
		t.Fatalf("expected delayed echo at tap, got %f", nearTap)
	}
}

func TestEffectsBusDelayTapKeepsFraction(t *testing.T) {
	b, err := NewEffectsBus(44100)
	if err != nil {
		t.Fatalf("NewEffectsBus: %v", err)
	}
	// 0.375 s at 44.1 kHz is 16537.5 samples; the tap is read with
	// fractional interpolation rather than truncated.
	if got, want := b.delayTap, float32(16537.5); got != want {
		t.Fatalf("delay tap got=%f want=%f", got, want)
	}
}

func TestEffectsBusRejectsInvalidSampleRate(t *testing.T) {
	if _, err := NewEffectsBus(0); err == nil {
		t.Fatalf("expected error for zero sample rate")
	}
}
