package synth

import "fmt"

// RootFreq is the scale root, C3.
const RootFreq = 130.81

// Scale is a fixed set of intervals in semitones from the root.
type Scale []int

// Named scales available to SetScale.
var (
	ScalePentatonic = Scale{0, 2, 4, 7, 9}
	ScaleMajor      = Scale{0, 2, 4, 5, 7, 9, 11}
	ScaleMinor      = Scale{0, 2, 3, 5, 7, 8, 10}
	ScaleBlues      = Scale{0, 3, 5, 6, 7, 10}
	ScaleChromatic  = Scale{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
)

var scalesByName = map[string]Scale{
	"pentatonic": ScalePentatonic,
	"major":      ScaleMajor,
	"minor":      ScaleMinor,
	"blues":      ScaleBlues,
	"chromatic":  ScaleChromatic,
}

// ScaleByName resolves a scale by its lowercase name.
func ScaleByName(name string) (Scale, error) {
	s, ok := scalesByName[name]
	if !ok {
		return nil, fmt.Errorf("unknown scale %q", name)
	}
	return s, nil
}

// MapChar deterministically maps a character code onto the scale,
// returning the note frequency in Hz and a stereo pan in [-0.8, 0.8].
// Identical (charCode, scale) inputs always yield identical results.
func MapChar(charCode int, scale Scale) (freq float64, pan float64) {
	n := len(scale)
	if n == 0 {
		return RootFreq, 0
	}
	if charCode < 0 {
		charCode = -charCode
	}
	noteIndex := charCode % (2 * n)
	octave := noteIndex/n + 3
	interval := scale[noteIndex%n]

	freq = RootFreq * pow2(float64(interval)/12.0+float64(octave-3))
	pan = clamp(float64(noteIndex-n)/float64(n), -0.8, 0.8)
	return freq, pan
}

func pow2(x float64) float64 {
	const ln2 = 0.69314718055994530942
	return expApprox(x * ln2)
}
