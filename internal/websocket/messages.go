package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/satriahrh/linksense/internal/voice"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	MessageTypeState         MessageType = "state"
	MessageTypeAudioFragment MessageType = "audio_fragment"
	MessageTypeFragmentStop  MessageType = "fragment_stop"
	MessageTypeInterrupted   MessageType = "interrupted"
	MessageTypeError         MessageType = "error"
	MessageTypePing          MessageType = "ping"
	MessageTypePong          MessageType = "pong"
	MessageTypeStop          MessageType = "stop"
)

// FragmentEncoding is the sample layout of audio_fragment payloads.
const FragmentEncoding = "f32le"

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp"`
	MessageID string      `json:"message_id,omitempty"`
}

// StateMessage reports a voice session state change
type StateMessage struct {
	BaseMessage
	State string `json:"state"`
}

// AudioFragmentMessage carries one scheduled piece of model speech. StartAt
// and Duration are seconds on the playback clock, which starts at zero when
// the session opens.
type AudioFragmentMessage struct {
	BaseMessage
	FragmentID uint64  `json:"fragment_id"`
	StartAt    float64 `json:"start_at"`
	Duration   float64 `json:"duration"`
	SampleRate int     `json:"sample_rate"`
	Encoding   string  `json:"encoding"`
	AudioData  string  `json:"audio_data"` // base64 encoded
}

// FragmentStopMessage tells the client to drop a fragment
type FragmentStopMessage struct {
	BaseMessage
	FragmentID uint64 `json:"fragment_id"`
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// StopMessage asks the server to end the voice session
type StopMessage struct {
	BaseMessage
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct {
	maxFrameSamples int
}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{maxFrameSamples: maxMessageSize / 4}
}

// ValidateMessage validates an incoming control message
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	case MessageTypeStop:
		return &StopMessage{BaseMessage: base}, nil

	case "":
		return nil, fmt.Errorf("type is required")

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

// ValidateCaptureFrame decodes a binary frame of float32 little-endian
// microphone samples
func (v *MessageValidator) ValidateCaptureFrame(frame []byte) ([]float32, error) {
	if len(frame) == 0 {
		return nil, fmt.Errorf("capture frame is empty")
	}
	if len(frame)%4 != 0 {
		return nil, fmt.Errorf("capture frame length %d is not a multiple of 4", len(frame))
	}
	if len(frame)/4 > v.maxFrameSamples {
		return nil, fmt.Errorf("capture frame has %d samples, limit is %d", len(frame)/4, v.maxFrameSamples)
	}
	return voice.DecodeFloat32(frame), nil
}

func newBase(t MessageType) BaseMessage {
	return BaseMessage{
		Type:      t,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(code, message, details string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: newBase(MessageTypeError),
		Code:        code,
		Message:     message,
		Details:     details,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: newBase(MessageTypePong),
		Data:        data,
	}
}

func CreateStateMessage(state voice.State) *StateMessage {
	return &StateMessage{
		BaseMessage: newBase(MessageTypeState),
		State:       state.String(),
	}
}

func CreateInterruptedMessage() *BaseMessage {
	base := newBase(MessageTypeInterrupted)
	return &base
}

// CreateAudioFragmentMessage encodes a scheduled fragment for the browser
func CreateAudioFragmentMessage(f voice.Fragment) *AudioFragmentMessage {
	return &AudioFragmentMessage{
		BaseMessage: newBase(MessageTypeAudioFragment),
		FragmentID:  f.ID,
		StartAt:     f.StartAt,
		Duration:    f.Duration,
		SampleRate:  f.SampleRate,
		Encoding:    FragmentEncoding,
		AudioData:   voice.EncodeChunk(voice.EncodeFloat32(f.Samples)),
	}
}

func CreateFragmentStopMessage(id uint64) *FragmentStopMessage {
	return &FragmentStopMessage{
		BaseMessage: newBase(MessageTypeFragmentStop),
		FragmentID:  id,
	}
}
