package playback

import (
	"github.com/cwbudde/typesynth/internal/wavio"
)

// WAVSource is a synth.SampleSource backed by a WAV file, looped. It
// stands in for a live microphone where no capture device is wired up,
// and doubles as the passthrough test input.
type WAVSource struct {
	samples []float32
	pos     int
	loop    bool
}

// NewWAVSource loads a WAV file (downmixed to mono) as an input source.
func NewWAVSource(path string, loop bool) (*WAVSource, error) {
	samples, _, err := wavio.ReadWAVMono(path)
	if err != nil {
		return nil, err
	}
	return &WAVSource{samples: samples, loop: loop}, nil
}

// ReadSamples fills dst from the file, looping when configured; the
// return value is the number of samples written.
func (s *WAVSource) ReadSamples(dst []float32) int {
	if len(s.samples) == 0 {
		return 0
	}
	n := 0
	for n < len(dst) {
		if s.pos >= len(s.samples) {
			if !s.loop {
				break
			}
			s.pos = 0
		}
		dst[n] = s.samples[s.pos]
		s.pos++
		n++
	}
	return n
}
