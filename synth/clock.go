package synth

// ScheduleAhead is the safety margin added to every externally triggered
// schedule time. Control calls arrive with unpredictable jitter relative
// to the render pull; anything scheduled closer than this to "now" risks
// landing in an already-rendered block.
const ScheduleAhead = 0.04

// Clock is the engine-relative time base used to date all scheduling.
// Implementations must be monotonically non-decreasing.
type Clock interface {
	// Now returns the current engine time in seconds.
	Now() float64
}

// sampleClock counts rendered frames; one tick of Now per sample.
type sampleClock struct {
	frames     int64
	sampleRate int
}

func newSampleClock(sampleRate int) *sampleClock {
	return &sampleClock{sampleRate: sampleRate}
}

func (c *sampleClock) Now() float64 {
	return float64(c.frames) / float64(c.sampleRate)
}

func (c *sampleClock) advance(frames int) {
	c.frames += int64(frames)
}

// ManualClock is a Clock advanced explicitly by the caller. It exists so
// scheduling behavior can be exercised without rendering audio.
type ManualClock struct {
	T float64
}

func (c *ManualClock) Now() float64 { return c.T }
