package synth

import "errors"

// Engine error taxonomy. None of these are fatal to rendering: a failed
// start may be retried, a denied microphone leaves synthesis untouched,
// and a voice that cannot be built is dropped without affecting
// subsequent notes.
var (
	// ErrDeviceUnavailable means no audio output device could be opened.
	ErrDeviceUnavailable = errors.New("audio device unavailable")

	// ErrResumeBlocked means the output exists but is suspended and could
	// not be resumed yet; the engine retries on the next trigger.
	ErrResumeBlocked = errors.New("audio output suspended")

	// ErrMicrophoneAccessDenied means no live input source is available.
	ErrMicrophoneAccessDenied = errors.New("microphone access denied")

	// ErrRecordingUnsupported means no supported capture encoding exists.
	ErrRecordingUnsupported = errors.New("recording unsupported")

	// ErrVoiceCreation means a single voice could not be constructed.
	ErrVoiceCreation = errors.New("voice creation failed")
)
