package synth

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/effects/dynamics"

	"github.com/cwbudde/typesynth/dsp"
	"github.com/cwbudde/typesynth/irsynth"
)

const (
	delayTapSeconds  = 0.375
	delayFeedback    = 0.3
	delayMaxSeconds  = 4.0
	mixTimeConstant  = 0.1
	maxReverbSend    = 0.8
	delaySendScale   = 0.4
	dryReverbScale   = 0.5
	compThresholdDB  = -15
	compKneeDB       = 24 // dynamics.Compressor caps the knee at 24 dB
	compRatio        = 3
	compAttackMs     = 5
	compReleaseMs    = 250
	limitThresholdDB = -0.3
	limitReleaseMs   = 100
)

// smoothedGain moves toward its target with a one-pole time constant so
// mix changes never produce an audible step.
type smoothedGain struct {
	value  float64
	target float64
	coef   float64
}

func newSmoothedGain(initial float64, sampleRate int) smoothedGain {
	return smoothedGain{
		value:  initial,
		target: initial,
		coef:   1 - expApprox(-1.0/(mixTimeConstant*float64(sampleRate))),
	}
}

func (g *smoothedGain) setTarget(t float64) { g.target = t }

func (g *smoothedGain) step() float64 {
	g.value += (g.target - g.value) * g.coef
	return g.value
}

// EffectsBus is the shared signal chain applied after all voices sum:
// a generated-impulse convolution reverb, a feedback delay, smoothed
// dry/wet/delay-send mix gains, and a per-channel compressor/limiter
// pair placed before the output and capture sink. State persists for
// the engine lifetime; only the mix targets change at runtime.
type EffectsBus struct {
	sampleRate int

	conv     *reverbConvolver
	delay    *dsp.DelayLine
	delayTap float32

	dry  smoothedGain
	wet  smoothedGain
	send smoothedGain

	compL, compR *dynamics.Compressor
	limL, limR   *dynamics.Limiter

	curves *distortionCurveCache
}

// NewEffectsBus builds the bus for the given sample rate, generating
// the reverb impulse response once.
func NewEffectsBus(sampleRate int) (*EffectsBus, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be > 0: %d", sampleRate)
	}

	irCfg := irsynth.DefaultConfig()
	irCfg.SampleRate = sampleRate
	left, right, err := irsynth.GenerateStereo(irCfg)
	if err != nil {
		return nil, fmt.Errorf("generate reverb impulse: %w", err)
	}

	b := &EffectsBus{
		sampleRate: sampleRate,
		conv:       newReverbConvolver(sampleRate),
		delay:      dsp.NewDelayLine(int(delayMaxSeconds * float64(sampleRate))),
		delayTap:   float32(delayTapSeconds * float64(sampleRate)),
		dry:        newSmoothedGain(1, sampleRate),
		wet:        newSmoothedGain(0, sampleRate),
		send:       newSmoothedGain(0, sampleRate),
		curves:     newDistortionCurveCache(),
	}
	b.conv.setIR(left, right)

	for _, ch := range []**dynamics.Compressor{&b.compL, &b.compR} {
		comp, err := dynamics.NewCompressor(float64(sampleRate))
		if err != nil {
			return nil, fmt.Errorf("build compressor: %w", err)
		}
		if err := configureCompressor(comp); err != nil {
			return nil, fmt.Errorf("configure compressor: %w", err)
		}
		*ch = comp
	}
	for _, ch := range []**dynamics.Limiter{&b.limL, &b.limR} {
		lim, err := dynamics.NewLimiter(float64(sampleRate))
		if err != nil {
			return nil, fmt.Errorf("build limiter: %w", err)
		}
		if err := configureLimiter(lim); err != nil {
			return nil, fmt.Errorf("configure limiter: %w", err)
		}
		*ch = lim
	}
	return b, nil
}

func configureCompressor(c *dynamics.Compressor) error {
	if err := c.SetThreshold(compThresholdDB); err != nil {
		return err
	}
	if err := c.SetKnee(compKneeDB); err != nil {
		return err
	}
	if err := c.SetRatio(compRatio); err != nil {
		return err
	}
	if err := c.SetAttack(compAttackMs); err != nil {
		return err
	}
	return c.SetRelease(compReleaseMs)
}

func configureLimiter(l *dynamics.Limiter) error {
	if err := l.SetThreshold(limitThresholdDB); err != nil {
		return err
	}
	return l.SetRelease(limitReleaseMs)
}

// SetReverbMix recomputes the three mix targets from the profile's
// reverbMix. The gains ramp toward the targets; they never jump.
func (b *EffectsBus) SetReverbMix(mix float64) {
	reverbAmt := minf(maxReverbSend, clamp(mix, 0, 1))
	delayAmt := reverbAmt * delaySendScale
	b.dry.setTarget(1 - reverbAmt*dryReverbScale)
	b.wet.setTarget(reverbAmt)
	b.send.setTarget(delayAmt)
}

// SetIRFromWAV replaces the generated reverb impulse with one loaded
// from a WAV file, resampled to the engine rate when needed.
func (b *EffectsBus) SetIRFromWAV(path string) error {
	return b.conv.setIRFromWAV(path)
}

// DistortionCurve returns the cached waveshaper curve for amount.
func (b *EffectsBus) DistortionCurve(amount float64) []float32 {
	return b.curves.curve(amount)
}

// MixGains returns the current (dry, wet, delaySend) gain values.
func (b *EffectsBus) MixGains() (dry, wet, send float64) {
	return b.dry.value, b.wet.value, b.send.value
}

// Process runs one block through the bus. dryIn and aux are stereo
// interleaved, sendIn is the mono effect send; out receives stereo
// interleaved samples and must be twice len(sendIn). aux enters after
// the mix (it bypasses reverb and delay) but before the compressor.
func (b *EffectsBus) Process(dryIn, sendIn, aux, out []float32) {
	wetStereo := b.conv.process(sendIn)

	for i := range sendIn {
		dg := float32(b.dry.step())
		wg := float32(b.wet.step())
		sg := float32(b.send.step())

		d := b.delay.ReadFractional(b.delayTap)
		b.delay.Write(dsp.FlushDenormals(sendIn[i] + d*delayFeedback))

		l := dryIn[i*2]*dg + wetStereo[i*2]*wg + d*sg + aux[i*2]
		r := dryIn[i*2+1]*dg + wetStereo[i*2+1]*wg + d*sg + aux[i*2+1]

		l64 := b.limL.ProcessSample(b.compL.ProcessSample(float64(l)))
		r64 := b.limR.ProcessSample(b.compR.ProcessSample(float64(r)))
		out[i*2] = float32(l64)
		out[i*2+1] = float32(r64)
	}
}
