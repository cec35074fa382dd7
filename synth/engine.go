package synth

import (
	"fmt"
	"log"
	"math"
	"sync"
)

// SampleSource supplies live mono input samples (microphone passthrough).
type SampleSource interface {
	// ReadSamples fills dst and returns the number of samples written.
	// Short reads are padded with silence by the engine.
	ReadSamples(dst []float32) int
}

// CaptureSink receives the final stereo interleaved output, after the
// compressor/limiter, for recording.
type CaptureSink interface {
	WriteFrames(frames []float32)
}

const micGain = 0.8

// AudioEngine is the facade over the whole synthesis graph. Control
// calls (triggers, parameter updates) may come from any goroutine; the
// render side pulls stereo blocks via Process. Every control mutation
// is expressed as a future-dated schedule (a voice start time or a
// smoothed gain target), never as a direct write into the current
// block, and always at least ScheduleAhead in the future.
type AudioEngine struct {
	mu sync.Mutex

	sampleRate int
	clock      *sampleClock
	logger     *log.Logger

	started    bool
	profile    SoundProfile
	scale      Scale
	harmonizer bool
	adrenaline float64

	voices *voiceManager
	bus    *EffectsBus
	cues   []*cue

	mic        SampleSource
	micEnabled bool
	capture    CaptureSink

	stolen int

	dryBuf, sendBuf, auxBuf, outBuf, voiceBuf, micBuf []float32
}

// NewAudioEngine creates an engine. Start must be called before any
// audio is produced; until then Process renders silence.
func NewAudioEngine(sampleRate int) *AudioEngine {
	return &AudioEngine{
		sampleRate: sampleRate,
		clock:      newSampleClock(sampleRate),
		profile:    DefaultProfile(),
		scale:      ScalePentatonic,
		voices:     newVoiceManager(),
	}
}

// SetLogger routes engine diagnostics; nil silences them.
func (e *AudioEngine) SetLogger(l *log.Logger) {
	e.mu.Lock()
	e.logger = l
	e.mu.Unlock()
}

func (e *AudioEngine) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}

// Start lazily constructs the effects graph. It is idempotent, and a
// failure leaves the engine silently inert: Start may be retried, and
// every trigger retries it opportunistically.
func (e *AudioEngine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startLocked()
}

func (e *AudioEngine) startLocked() error {
	if e.started {
		return nil
	}
	bus, err := NewEffectsBus(e.sampleRate)
	if err != nil {
		e.logf("engine start failed: %v", err)
		return fmt.Errorf("start engine: %w", err)
	}
	e.bus = bus
	e.bus.SetReverbMix(e.profile.ReverbMix)
	e.started = true
	return nil
}

// Started reports whether the engine graph is up.
func (e *AudioEngine) Started() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started
}

// SampleRate returns the engine sample rate in Hz.
func (e *AudioEngine) SampleRate() int { return e.sampleRate }

// Now returns the engine clock in seconds.
func (e *AudioEngine) Now() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.Now()
}

// SetProfile replaces the active sound profile wholesale. Voices
// already sounding keep their snapshot; the reverb mix targets move to
// match the new profile.
func (e *AudioEngine) SetProfile(p SoundProfile) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profile = p
	if e.bus != nil {
		e.bus.SetReverbMix(p.ReverbMix)
	}
}

// Profile returns a copy of the active sound profile.
func (e *AudioEngine) Profile() SoundProfile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile
}

// UpdateParam patches a single numeric profile parameter by key.
func (e *AudioEngine) UpdateParam(key string, value float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch key {
	case "attack":
		e.profile.Attack = value
	case "decay":
		e.profile.Decay = value
	case "sustain":
		e.profile.Sustain = value
	case "release":
		e.profile.Release = value
	case "filterFreq":
		e.profile.FilterFreq = value
	case "filterQ":
		e.profile.FilterQ = value
	case "distortion":
		e.profile.Distortion = value
	case "detune":
		e.profile.Detune = value
	case "reverbMix":
		e.profile.ReverbMix = value
		if e.bus != nil {
			e.bus.SetReverbMix(value)
		}
	default:
		return fmt.Errorf("unknown parameter %q", key)
	}
	return nil
}

// SetScale selects the scale used to map future key triggers.
func (e *AudioEngine) SetScale(s Scale) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(s) > 0 {
		e.scale = s
	}
}

// SetHarmonizer toggles the fifth-above harmony voice on key triggers.
func (e *AudioEngine) SetHarmonizer(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.harmonizer = on
}

// SetAdrenaline sets the 0..1 intensity modifier consumed by future
// voice creations (it raises the filter cutoff ceiling).
func (e *AudioEngine) SetAdrenaline(level float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.adrenaline = clamp(level, 0, 1)
}

// PlayKey maps the character onto the current scale and triggers a
// voice. With the harmonizer active a second, quieter voice sounds at
// 1.5x the frequency 80 ms later. A voice that cannot be built is
// dropped without affecting playback of other notes.
func (e *AudioEngine) PlayKey(ch rune) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.startLocked(); err != nil {
		return err
	}

	freq, pan := MapChar(int(ch), e.scale)
	start := e.clock.Now() + ScheduleAhead

	if err := e.triggerLocked(freq, pan, 1.0, start); err != nil {
		e.logf("voice dropped: %v", err)
		return nil
	}
	if e.harmonizer {
		if err := e.triggerLocked(freq*1.5, pan, 0.6, start+0.08); err != nil {
			e.logf("harmony voice dropped: %v", err)
		}
	}
	return nil
}

func (e *AudioEngine) triggerLocked(freq, pan, velocity, start float64) error {
	v, err := NewVoice(e.sampleRate, freq, pan, velocity, e.profile, e.adrenaline, start, e.bus.curves)
	if err != nil {
		return err
	}
	e.stolen += e.voices.trigger(v, start)
	return nil
}

// PlayMetronomeTick fires the fixed tick cue, optionally accented.
func (e *AudioEngine) PlayMetronomeTick(accent bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.startLocked(); err != nil {
		return err
	}
	e.cues = append(e.cues, newMetronomeCue(e.sampleRate, e.clock.Now()+ScheduleAhead, accent))
	return nil
}

// PlayError fires the fixed dissonant error cue.
func (e *AudioEngine) PlayError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.startLocked(); err != nil {
		return err
	}
	e.cues = append(e.cues, newErrorCue(e.sampleRate, e.clock.Now()+ScheduleAhead))
	return nil
}

// SetMicrophoneSource injects the live input used by the microphone
// passthrough. The engine never opens devices itself.
func (e *AudioEngine) SetMicrophoneSource(src SampleSource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mic = src
}

// EnableMicrophone toggles the live input merge. The microphone feeds
// the effect sends only, never the dry path, at a fixed gain. Enabling
// without an available source is MicrophoneAccessDenied; the rest of
// the engine is unaffected.
func (e *AudioEngine) EnableMicrophone(enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if enabled && e.mic == nil {
		e.logf("microphone unavailable: no input source")
		return ErrMicrophoneAccessDenied
	}
	e.micEnabled = enabled
	return nil
}

// SetCaptureSink attaches a recording sink fed the post-limiter output;
// nil detaches it.
func (e *AudioEngine) SetCaptureSink(sink CaptureSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.capture = sink
}

// ActiveVoices returns the size of the active voice set.
func (e *AudioEngine) ActiveVoices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.voices.activeCount()
}

// FadingVoices returns how many stolen voices are still fading out.
func (e *AudioEngine) FadingVoices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.voices.fadingCount()
}

// StolenVoices returns the total number of oldest-voice steals so far.
func (e *AudioEngine) StolenVoices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stolen
}

// Process renders one stereo interleaved block of numFrames frames.
// This is the render-side pull; before Start succeeds it returns
// silence. The returned slice is reused across calls.
func (e *AudioEngine) Process(numFrames int) []float32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ensureBuffers(numFrames)
	out := e.outBuf[:numFrames*2]
	if !e.started {
		for i := range out {
			out[i] = 0
		}
		e.clock.advance(numFrames)
		return out
	}

	dry := e.dryBuf[:numFrames*2]
	aux := e.auxBuf[:numFrames*2]
	send := e.sendBuf[:numFrames]
	for i := range dry {
		dry[i] = 0
		aux[i] = 0
	}
	for i := range send {
		send[i] = 0
	}

	t0 := e.clock.Now()

	voiceBuf := e.voiceBuf[:numFrames]
	e.voices.all(func(v *Voice) {
		v.Process(voiceBuf, t0)
		lg, rg := panGains(v.Pan())
		for i, x := range voiceBuf {
			dry[i*2] += x * lg
			dry[i*2+1] += x * rg
			send[i] += x
		}
	})

	if e.micEnabled && e.mic != nil {
		mic := e.micBuf[:numFrames]
		n := e.mic.ReadSamples(mic)
		for i := 0; i < n; i++ {
			send[i] += mic[i] * micGain
		}
	}

	for _, c := range e.cues {
		c.render(aux, t0)
	}

	e.bus.Process(dry, send, aux, out)

	e.clock.advance(numFrames)
	tEnd := e.clock.Now()
	e.voices.cleanup(tEnd)
	e.cues = compactCues(e.cues, tEnd)

	if e.capture != nil {
		e.capture.WriteFrames(out)
	}
	return out
}

func compactCues(cues []*cue, t float64) []*cue {
	keep := cues[:0]
	for _, c := range cues {
		if !c.done(t) {
			keep = append(keep, c)
		}
	}
	return keep
}

// panGains implements an equal-power pan law.
func panGains(pan float64) (left, right float32) {
	a := (pan + 1) * math.Pi / 4
	return float32(math.Cos(a)), float32(math.Sin(a))
}

func (e *AudioEngine) ensureBuffers(numFrames int) {
	if len(e.voiceBuf) >= numFrames {
		return
	}
	e.dryBuf = make([]float32, numFrames*2)
	e.auxBuf = make([]float32, numFrames*2)
	e.outBuf = make([]float32, numFrames*2)
	e.sendBuf = make([]float32, numFrames)
	e.voiceBuf = make([]float32, numFrames)
	e.micBuf = make([]float32, numFrames)
}
