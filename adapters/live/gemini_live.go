// Package live connects voice sessions to the Gemini Live API.
package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/linksense/adapters/llm"
	"github.com/satriahrh/linksense/domain/entities"
	"github.com/satriahrh/linksense/domain/repositories"
)

const (
	defaultModel         = "gemini-2.5-flash-native-audio-preview-09-2025"
	defaultVoiceName     = "Kore"
	defaultInputMIMEType = "audio/pcm;rate=16000"
)

// GeminiLive implements repositories.LiveBackend
type GeminiLive struct {
	baseURL string
	logger  *zap.Logger
}

var _ repositories.LiveBackend = (*GeminiLive)(nil)

// NewGeminiLive creates a live backend. baseURL overrides the API endpoint
// and is empty in production.
func NewGeminiLive(baseURL string, logger *zap.Logger) *GeminiLive {
	return &GeminiLive{baseURL: baseURL, logger: logger}
}

// Connect implements repositories.LiveBackend
func (g *GeminiLive) Connect(ctx context.Context, cred entities.Credential, cfg repositories.LiveConfig) (repositories.LiveConn, error) {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.VoiceName == "" {
		cfg.VoiceName = defaultVoiceName
	}
	if cfg.InputMIMEType == "" {
		cfg.InputMIMEType = defaultInputMIMEType
	}

	client, err := llm.NewGenAIClient(ctx, cred, g.baseURL)
	if err != nil {
		return nil, err
	}

	connectConfig := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: cfg.VoiceName},
			},
		},
	}
	if cfg.SystemInstruction != "" {
		connectConfig.SystemInstruction = genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser)
	}

	session, err := client.Live.Connect(ctx, cfg.Model, connectConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect live session: %w", err)
	}

	g.logger.Info("Live session connected",
		zap.String("model", cfg.Model),
		zap.String("voice", cfg.VoiceName),
		zap.String("credential", cred.Name))

	return &conn{session: session, mimeType: cfg.InputMIMEType, logger: g.logger}, nil
}

type conn struct {
	session  *genai.Session
	mimeType string
	logger   *zap.Logger

	sendMu  sync.Mutex
	pending []repositories.LiveEvent
	closed  atomic.Bool
}

func (c *conn) SendAudio(pcm []byte) error {
	if c.closed.Load() {
		return io.ErrClosedPipe
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	err := c.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Audio: &genai.Blob{Data: pcm, MIMEType: c.mimeType},
	})
	if err != nil {
		return fmt.Errorf("failed to send audio: %w", err)
	}
	return nil
}

// Receive returns the next audio or control event. Messages that carry
// neither are skipped.
func (c *conn) Receive() (repositories.LiveEvent, error) {
	for len(c.pending) == 0 {
		if c.closed.Load() {
			return repositories.LiveEvent{}, io.EOF
		}

		msg, err := c.session.Receive()
		if err != nil {
			if c.closed.Load() || isNormalClose(err) {
				return repositories.LiveEvent{}, io.EOF
			}
			return repositories.LiveEvent{}, fmt.Errorf("live receive failed: %w", err)
		}
		c.pending = append(c.pending, eventsFrom(msg)...)
	}

	ev := c.pending[0]
	c.pending = c.pending[1:]
	return ev, nil
}

func (c *conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.logger.Info("Live session closed")
	return c.session.Close()
}

// eventsFrom splits one server message into events: one per inline audio
// part, then the interruption and turn markers.
func eventsFrom(msg *genai.LiveServerMessage) []repositories.LiveEvent {
	if msg == nil || msg.ServerContent == nil {
		return nil
	}
	content := msg.ServerContent

	var events []repositories.LiveEvent
	if content.ModelTurn != nil {
		for _, part := range content.ModelTurn.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			events = append(events, repositories.LiveEvent{Audio: part.InlineData.Data})
		}
	}
	if content.Interrupted {
		events = append(events, repositories.LiveEvent{Interrupted: true})
	}
	if content.TurnComplete {
		events = append(events, repositories.LiveEvent{TurnComplete: true})
	}
	return events
}

func isNormalClose(err error) bool {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Code == websocket.CloseNormalClosure || closeErr.Code == websocket.CloseGoingAway
	}
	return false
}
