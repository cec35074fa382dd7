// Package playback connects the engine to real I/O: the hardware
// output stream, the recording capture sink, and live input sources.
package playback

import (
	"fmt"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/typesynth/synth"
)

// Output owns the hardware audio context and pulls engine blocks on the
// platform's render goroutine.
type Output struct {
	engine    *synth.AudioEngine
	otoCtx    *oto.Context
	otoPlayer *oto.Player
	recorder  *Recorder
	running   bool
}

// NewOutput opens the audio device for the engine's sample rate. A
// device that cannot be opened is reported as ErrDeviceUnavailable; the
// engine itself stays usable (and silent).
func NewOutput(engine *synth.AudioEngine) (*Output, error) {
	op := &oto.NewContextOptions{
		SampleRate:   engine.SampleRate(),
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", synth.ErrDeviceUnavailable, err)
	}
	<-ready

	o := &Output{
		engine:   engine,
		otoCtx:   otoCtx,
		recorder: NewRecorder(engine.SampleRate()),
	}
	o.otoPlayer = otoCtx.NewPlayer(&engineStream{out: o})
	o.otoPlayer.SetBufferSize(engine.SampleRate() / 10) // 100ms
	return o, nil
}

// Start brings the graph up and begins pulling audio. Idempotent.
func (o *Output) Start() error {
	if err := o.engine.Start(); err != nil {
		return err
	}
	if !o.running {
		o.running = true
		o.otoPlayer.Play()
	}
	return nil
}

// StartRecording arms the capture sink, merging the externally owned
// video stream handle into the eventual clip.
func (o *Output) StartRecording(video VideoStream) error {
	o.engine.SetCaptureSink(o.recorder)
	return o.recorder.Start(video)
}

// StopRecording detaches the sink and returns the recorded clip.
func (o *Output) StopRecording() (*Clip, error) {
	o.engine.SetCaptureSink(nil)
	return o.recorder.Stop()
}

// Suspend pauses the hardware stream without tearing the graph down.
func (o *Output) Suspend() error {
	return o.otoCtx.Suspend()
}

// Resume restarts a suspended stream. Platforms can refuse until user
// interaction; that is reported as ErrResumeBlocked and Resume may be
// retried on the next trigger.
func (o *Output) Resume() error {
	if err := o.otoCtx.Resume(); err != nil {
		return fmt.Errorf("%w: %v", synth.ErrResumeBlocked, err)
	}
	return nil
}

// Close stops playback and releases the device.
func (o *Output) Close() {
	o.running = false
	if o.otoPlayer != nil {
		o.otoPlayer.Close()
	}
}

// engineStream adapts engine blocks to the byte stream oto pulls.
type engineStream struct {
	out *Output
}

func (s *engineStream) Read(buf []byte) (int, error) {
	const bytesPerFrame = 4 // 2 channels x int16
	frames := len(buf) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	if !s.out.running {
		for i := range buf[:frames*bytesPerFrame] {
			buf[i] = 0
		}
		return frames * bytesPerFrame, nil
	}

	block := s.out.engine.Process(frames)
	for i, sample := range block {
		if sample > 1.0 {
			sample = 1.0
		}
		if sample < -1.0 {
			sample = -1.0
		}
		s16 := int16(sample * 32767)
		buf[i*2] = byte(s16)
		buf[i*2+1] = byte(uint16(s16) >> 8)
	}
	return frames * bytesPerFrame, nil
}
