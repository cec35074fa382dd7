package playback

import (
	"fmt"
	"io"
	"sync"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"

	"github.com/cwbudde/typesynth/synth"
)

// VideoStream is the externally owned video track handle merged into a
// recording. The engine never looks inside it.
type VideoStream io.Reader

// Clip is a finished recording: the engine's capture-sink audio encoded
// as WAV, alongside the caller's video track.
type Clip struct {
	SampleRate int
	Channels   int
	BitDepth   int
	AudioWAV   []byte
	Video      VideoStream
}

// Recorder implements synth.CaptureSink, accumulating post-limiter
// stereo frames while armed.
type Recorder struct {
	mu         sync.Mutex
	sampleRate int
	armed      bool
	frames     []float32
	video      VideoStream
}

func NewRecorder(sampleRate int) *Recorder {
	return &Recorder{sampleRate: sampleRate}
}

// WriteFrames receives one rendered block. Called from the render
// goroutine; it must stay cheap.
func (r *Recorder) WriteFrames(frames []float32) {
	r.mu.Lock()
	if r.armed {
		r.frames = append(r.frames, frames...)
	}
	r.mu.Unlock()
}

// Start arms the recorder and attaches the video track.
func (r *Recorder) Start(video VideoStream) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.armed {
		return fmt.Errorf("recording already in progress")
	}
	r.armed = true
	r.frames = r.frames[:0]
	r.video = video
	return nil
}

// Stop encodes the captured audio and returns the clip. Encoding tries
// 24-bit PCM first and falls back to 16-bit; with no working variant
// the recording is dropped as ErrRecordingUnsupported and synthesis is
// unaffected.
func (r *Recorder) Stop() (*Clip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.armed {
		return nil, fmt.Errorf("no recording in progress")
	}
	r.armed = false

	var lastErr error
	for _, bits := range []int{24, 16} {
		data, err := encodeWAV(r.frames, r.sampleRate, bits)
		if err != nil {
			lastErr = err
			continue
		}
		return &Clip{
			SampleRate: r.sampleRate,
			Channels:   2,
			BitDepth:   bits,
			AudioWAV:   data,
			Video:      r.video,
		}, nil
	}
	return nil, fmt.Errorf("%w: %v", synth.ErrRecordingUnsupported, lastErr)
}

func encodeWAV(frames []float32, sampleRate, bitDepth int) ([]byte, error) {
	var buf seekBuffer
	enc := wav.NewEncoder(&buf, sampleRate, bitDepth, 2, 1)
	ab := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: 2,
		},
		Data:           frames,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(ab); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.data, nil
}

// seekBuffer is the in-memory io.WriteSeeker the WAV encoder needs to
// back-patch chunk sizes.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if need := b.pos + len(p); need > len(b.data) {
		grown := make([]byte, need)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var next int
	switch whence {
	case io.SeekStart:
		next = int(offset)
	case io.SeekCurrent:
		next = b.pos + int(offset)
	case io.SeekEnd:
		next = len(b.data) + int(offset)
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("negative seek position")
	}
	b.pos = next
	return int64(next), nil
}
