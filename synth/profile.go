package synth

import "fmt"

// OscillatorType selects the voice waveform.
type OscillatorType int

const (
	Sine OscillatorType = iota
	Square
	Sawtooth
	Triangle
)

// OscillatorTypeByName resolves an oscillator type by its lowercase name.
func OscillatorTypeByName(name string) (OscillatorType, error) {
	switch name {
	case "sine":
		return Sine, nil
	case "square":
		return Square, nil
	case "sawtooth":
		return Sawtooth, nil
	case "triangle":
		return Triangle, nil
	}
	return Sine, fmt.Errorf("unknown oscillator type %q", name)
}

func (t OscillatorType) String() string {
	switch t {
	case Square:
		return "square"
	case Sawtooth:
		return "sawtooth"
	case Triangle:
		return "triangle"
	default:
		return "sine"
	}
}

// typeVolume compensates perceived loudness per waveform.
func (t OscillatorType) typeVolume() float64 {
	switch t {
	case Square:
		return 0.35
	case Sawtooth:
		return 0.3
	default:
		return 1.0
	}
}

// TremoloSettings enables LFO amplitude modulation on a voice.
type TremoloSettings struct {
	Depth   float64 // 0..1
	SpeedHz float64
}

// SoundProfile is the timbre definition read by every new voice. The
// engine owns one active profile and replaces it wholesale; voices take
// a value snapshot at creation, so later changes never affect notes
// already sounding.
type SoundProfile struct {
	Oscillator OscillatorType

	// ADSR envelope, seconds. Attack/Decay/Release are forced positive
	// at use; Sustain is a gain fraction in [0,1].
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64

	FilterFreq float64 // lowpass base cutoff, Hz
	FilterQ    float64

	Distortion float64 // 0..1, 0 disables the waveshaper
	ReverbMix  float64 // 0..1

	Detune  float64 // second-oscillator detune in cents, 0 disables it
	Tremolo *TremoloSettings
}

// DefaultProfile returns the engine's starting timbre.
func DefaultProfile() SoundProfile {
	return SoundProfile{
		Oscillator: Sine,
		Attack:     0.01,
		Decay:      0.2,
		Sustain:    0.3,
		Release:    0.6,
		FilterFreq: 2200,
		FilterQ:    1.0,
		Distortion: 0,
		ReverbMix:  0.25,
		Detune:     0,
	}
}

// sanitized returns a copy with out-of-range values pulled back to the
// contract ranges. Applied at use, not at assignment, so a profile can
// be patched field by field without transient rejections.
func (p SoundProfile) sanitized() SoundProfile {
	p.Attack = maxf(p.Attack, 0.001)
	p.Decay = maxf(p.Decay, 0.001)
	p.Release = maxf(p.Release, 0.001)
	p.Sustain = clamp(p.Sustain, 0, 1)
	p.FilterFreq = clamp(p.FilterFreq, 20, 20000)
	if p.FilterQ <= 0 {
		p.FilterQ = 0.7071
	}
	p.Distortion = clamp(p.Distortion, 0, 1)
	p.ReverbMix = clamp(p.ReverbMix, 0, 1)
	if p.Tremolo != nil {
		t := *p.Tremolo
		t.Depth = clamp(t.Depth, 0, 1)
		t.SpeedHz = clamp(t.SpeedHz, 0.05, 20)
		p.Tremolo = &t
	}
	return p
}
