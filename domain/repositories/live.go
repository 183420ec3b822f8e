package repositories

import (
	"context"

	"github.com/satriahrh/linksense/domain/entities"
)

// LiveConfig configures a bidirectional audio session.
type LiveConfig struct {
	Model             string
	SystemInstruction string
	VoiceName         string
	InputMIMEType     string
}

// LiveEvent is one inbound message from the live backend. Audio holds raw
// PCM16 little-endian samples.
type LiveEvent struct {
	Audio        []byte
	Interrupted  bool
	TurnComplete bool
}

// LiveBackend opens realtime audio sessions.
type LiveBackend interface {
	Connect(ctx context.Context, cred entities.Credential, cfg LiveConfig) (LiveConn, error)
}

// LiveConn is an open realtime session. Receive blocks until an event arrives
// and returns io.EOF once the backend closed the session.
type LiveConn interface {
	SendAudio(pcm []byte) error
	Receive() (LiveEvent, error)
	Close() error
}
