package synth

// MaxPolyphony bounds the number of logically active voices.
const MaxPolyphony = 30

const (
	// selfStealFade is the fade applied when a new trigger lands within
	// pitchStealWindow of an active voice; letting two near-identical
	// pitches overlap just phases against itself.
	selfStealFade    = 0.04
	pitchStealWindow = 1.0 // Hz

	// oldestStealFade frees a polyphony slot when the set is full.
	oldestStealFade = 0.1
)

// voiceManager owns the active voice set and enforces polyphony.
//
// Stolen voices leave the active set immediately, freeing their logical
// slot, but keep rendering from the fading list until their own stop
// time so the forced fade plays out instead of cutting to silence.
// cleanup is the single teardown path for both lists.
type voiceManager struct {
	active []*Voice
	fading []*Voice
}

func newVoiceManager() *voiceManager {
	return &voiceManager{
		active: make([]*Voice, 0, MaxPolyphony),
		fading: make([]*Voice, 0, MaxPolyphony),
	}
}

// trigger inserts v, stealing as needed. It returns how many voices
// were stolen to make room (not counting same-pitch self-steals).
func (m *voiceManager) trigger(v *Voice, now float64) int {
	// Same-pitch self-steal.
	keep := m.active[:0]
	for _, a := range m.active {
		d := a.Frequency() - v.Frequency()
		if d < pitchStealWindow && d > -pitchStealWindow {
			a.ForceRelease(now, selfStealFade)
			m.fading = append(m.fading, a)
			continue
		}
		keep = append(keep, a)
	}
	m.active = keep

	// Oldest-voice steal until a slot is free.
	stolen := 0
	for len(m.active) >= MaxPolyphony {
		oldest := 0
		for i, a := range m.active {
			if a.StartTime() < m.active[oldest].StartTime() {
				oldest = i
			}
		}
		a := m.active[oldest]
		a.ForceRelease(now, oldestStealFade)
		m.fading = append(m.fading, a)
		m.active = append(m.active[:oldest], m.active[oldest+1:]...)
		stolen++
	}

	m.active = append(m.active, v)
	return stolen
}

// all iterates every sounding voice, active and fading.
func (m *voiceManager) all(f func(*Voice)) {
	for _, v := range m.active {
		f(v)
	}
	for _, v := range m.fading {
		f(v)
	}
}

// cleanup removes voices whose stop time has passed. Dropping the last
// reference releases all voice-owned state; there is no other teardown.
func (m *voiceManager) cleanup(t float64) {
	m.active = compactDone(m.active, t)
	m.fading = compactDone(m.fading, t)
}

func compactDone(voices []*Voice, t float64) []*Voice {
	keep := voices[:0]
	for _, v := range voices {
		if !v.done(t) {
			keep = append(keep, v)
		}
	}
	return keep
}

func (m *voiceManager) activeCount() int { return len(m.active) }
func (m *voiceManager) fadingCount() int { return len(m.fading) }
