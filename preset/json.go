// Package preset loads engine settings from JSON files. Fields are
// pointers so a preset can override any subset of the defaults.
package preset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cwbudde/typesynth/synth"
)

// File is the JSON schema for typesynth presets.
type File struct {
	Oscillator *string  `json:"oscillator"`
	Attack     *float64 `json:"attack"`
	Decay      *float64 `json:"decay"`
	Sustain    *float64 `json:"sustain"`
	Release    *float64 `json:"release"`
	FilterFreq *float64 `json:"filter_freq"`
	FilterQ    *float64 `json:"filter_q"`
	Distortion *float64 `json:"distortion"`
	ReverbMix  *float64 `json:"reverb_mix"`
	Detune     *float64 `json:"detune"`

	Tremolo *TremoloSetting `json:"tremolo"`

	Scale      *string  `json:"scale"`
	Harmonizer *bool    `json:"harmonizer"`
	Adrenaline *float64 `json:"adrenaline"`
}

// TremoloSetting enables the optional tremolo on the profile.
type TremoloSetting struct {
	Depth   float64 `json:"depth"`
	SpeedHz float64 `json:"speed_hz"`
}

// Settings is a fully resolved preset: a sound profile plus the
// engine-wide modifiers a preset may set.
type Settings struct {
	Profile    synth.SoundProfile
	Scale      synth.Scale
	Harmonizer bool
	Adrenaline float64
}

// DefaultSettings mirrors the engine's own startup state.
func DefaultSettings() *Settings {
	return &Settings{
		Profile: synth.DefaultProfile(),
		Scale:   synth.ScalePentatonic,
	}
}

// LoadJSON loads a preset JSON file and applies it on top of defaults.
func LoadJSON(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	s := DefaultSettings()
	if err := ApplyFile(s, &f); err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyFile applies a parsed preset file onto existing settings.
func ApplyFile(dst *Settings, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination settings")
	}
	if f == nil {
		return nil
	}

	if f.Oscillator != nil {
		osc, err := synth.OscillatorTypeByName(*f.Oscillator)
		if err != nil {
			return err
		}
		dst.Profile.Oscillator = osc
	}
	if f.Attack != nil {
		if *f.Attack <= 0 {
			return fmt.Errorf("attack must be > 0")
		}
		dst.Profile.Attack = *f.Attack
	}
	if f.Decay != nil {
		if *f.Decay <= 0 {
			return fmt.Errorf("decay must be > 0")
		}
		dst.Profile.Decay = *f.Decay
	}
	if f.Sustain != nil {
		if *f.Sustain < 0 || *f.Sustain > 1 {
			return fmt.Errorf("sustain must be in [0,1]")
		}
		dst.Profile.Sustain = *f.Sustain
	}
	if f.Release != nil {
		if *f.Release <= 0 {
			return fmt.Errorf("release must be > 0")
		}
		dst.Profile.Release = *f.Release
	}
	if f.FilterFreq != nil {
		if *f.FilterFreq <= 0 {
			return fmt.Errorf("filter_freq must be > 0")
		}
		dst.Profile.FilterFreq = *f.FilterFreq
	}
	if f.FilterQ != nil {
		if *f.FilterQ <= 0 {
			return fmt.Errorf("filter_q must be > 0")
		}
		dst.Profile.FilterQ = *f.FilterQ
	}
	if f.Distortion != nil {
		if *f.Distortion < 0 || *f.Distortion > 1 {
			return fmt.Errorf("distortion must be in [0,1]")
		}
		dst.Profile.Distortion = *f.Distortion
	}
	if f.ReverbMix != nil {
		if *f.ReverbMix < 0 || *f.ReverbMix > 1 {
			return fmt.Errorf("reverb_mix must be in [0,1]")
		}
		dst.Profile.ReverbMix = *f.ReverbMix
	}
	if f.Detune != nil {
		dst.Profile.Detune = *f.Detune
	}
	if f.Tremolo != nil {
		if f.Tremolo.Depth < 0 || f.Tremolo.Depth > 1 {
			return fmt.Errorf("tremolo.depth must be in [0,1]")
		}
		if f.Tremolo.SpeedHz <= 0 {
			return fmt.Errorf("tremolo.speed_hz must be > 0")
		}
		dst.Profile.Tremolo = &synth.TremoloSettings{
			Depth:   f.Tremolo.Depth,
			SpeedHz: f.Tremolo.SpeedHz,
		}
	}
	if f.Scale != nil {
		scale, err := synth.ScaleByName(*f.Scale)
		if err != nil {
			return err
		}
		dst.Scale = scale
	}
	if f.Harmonizer != nil {
		dst.Harmonizer = *f.Harmonizer
	}
	if f.Adrenaline != nil {
		if *f.Adrenaline < 0 || *f.Adrenaline > 1 {
			return fmt.Errorf("adrenaline must be in [0,1]")
		}
		dst.Adrenaline = *f.Adrenaline
	}
	return nil
}

// Apply pushes resolved settings into a live engine.
func (s *Settings) Apply(e *synth.AudioEngine) {
	e.SetProfile(s.Profile)
	e.SetScale(s.Scale)
	e.SetHarmonizer(s.Harmonizer)
	e.SetAdrenaline(s.Adrenaline)
}
