// Package voice runs a bidirectional audio conversation with a live model:
// captured microphone frames go up, model speech comes back and is scheduled
// gaplessly on the playback clock.
package voice

// State is the lifecycle of a voice session.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateActive
	StateInterrupted
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateInterrupted:
		return "interrupted"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	CaptureSampleRate  = 16000
	PlaybackSampleRate = 24000
	// FrameSize is the number of samples per captured frame.
	FrameSize       = 4096
	CaptureMIMEType = "audio/pcm;rate=16000"
)
