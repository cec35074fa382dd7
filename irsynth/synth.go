// Package irsynth synthesizes the impulse response used by the engine's
// convolution reverb: an exponentially shaped stereo noise burst,
// generated once per engine start.
package irsynth

import (
	"fmt"
	"math"
	"math/rand"
)

// Config controls synthetic IR generation.
type Config struct {
	SampleRate    int
	DurationS     float64
	Decay         float64 // envelope exponent: amplitude(t) = (1 - t/duration)^Decay
	Seed          int64
	NormalizePeak float64
}

// DefaultConfig returns the reverb IR the engine ships with.
func DefaultConfig() Config {
	return Config{
		SampleRate:    44100,
		DurationS:     2.5,
		Decay:         2.0,
		Seed:          1,
		NormalizePeak: 0.9,
	}
}

func (c *Config) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if c.Decay <= 0 {
		return fmt.Errorf("decay must be > 0")
	}
	if c.NormalizePeak <= 0 {
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

// GenerateStereo synthesizes a stereo IR according to cfg. Both channels
// carry independent noise under the same decay envelope, so the tail is
// decorrelated left/right; the result is normalized so the louder
// channel peaks at cfg.NormalizePeak.
func GenerateStereo(cfg Config) ([]float32, []float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	n := int(math.Round(cfg.DurationS * float64(cfg.SampleRate)))
	if n < 1 {
		n = 1
	}
	left := make([]float32, n)
	right := make([]float32, n)

	rng := rand.New(rand.NewSource(cfg.Seed))
	for i := 0; i < n; i++ {
		env := math.Pow(1.0-float64(i)/float64(n), cfg.Decay)
		left[i] = float32((rng.Float64()*2 - 1) * env)
		right[i] = float32((rng.Float64()*2 - 1) * env)
	}

	peak := maxAbs(left)
	if rp := maxAbs(right); rp > peak {
		peak = rp
	}
	if peak < 1e-12 {
		peak = 1e-12
	}
	s := float32(cfg.NormalizePeak / float64(peak))
	for i := 0; i < n; i++ {
		left[i] *= s
		right[i] *= s
	}
	return left, right, nil
}

func maxAbs(buf []float32) float32 {
	var m float32
	for _, v := range buf {
		if v < 0 {
			v = -v
		}
		if v > m {
			m = v
		}
	}
	return m
}
