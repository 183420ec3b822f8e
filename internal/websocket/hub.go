package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/linksense/internal/voice"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024

	captureBuffer = 32
)

var upgrader = websocket.Upgrader{
	// Any origin may connect.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// VoiceSessions builds voice sessions bound to a stored batch.
type VoiceSessions interface {
	NewSession(ctx context.Context, batchID string, devices voice.Devices, onState func(voice.State)) (*voice.Session, error)
}

// Hub maintains the set of connected voice clients.
type Hub struct {
	// Registered clients.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	// done is closed when Run returns.
	done chan struct{}

	sessions VoiceSessions
	logger   *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(sessions VoiceSessions, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		sessions:   sessions,
		logger:     logger,
	}
}

// Run starts the hub's main loop. It returns when ctx is done, after
// stopping every session still connected.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.logger.Info("Client registered",
				zap.String("clientID", client.id),
				zap.String("batchID", client.batchID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				client.closeSend()
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("clientID", client.id))

		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				client.stopSession()
				client.closeSend()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		c.closeSend()
	}
}

// ActiveClients lists the ids of connected clients
func (h *Hub) ActiveClients() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and one voice
// session. It doubles as the session's audio devices: binary frames from the
// browser are the microphone, audio_fragment messages are the speaker.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send     chan WriteData
	sendMu   sync.Mutex
	sendDone bool

	id      string
	batchID string

	validator *MessageValidator
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	session  *voice.Session
	capture  *captureSource
	playback *playbackSink
}

var _ voice.Devices = (*Client)(nil)

// HandleVoice upgrades the request and attaches a voice session for the
// batch named by the batch_id query parameter.
func HandleVoice(hub *Hub, c echo.Context, logger *zap.Logger) error {
	batchID := c.QueryParam("batch_id")
	if batchID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error":   "missing_batch_id",
			"message": "batch_id query parameter is required",
		})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan WriteData, 256),
		id:        uuid.New().String(),
		batchID:   batchID,
		validator: NewMessageValidator(),
		logger:    logger.With(zap.String("batchID", batchID)),
		ctx:       ctx,
		cancel:    cancel,
	}

	if !hub.join(client) {
		cancel()
		conn.Close()
		return nil
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()
	go client.runSession()

	return nil
}

// runSession starts the voice session and tears the connection down once it
// ends.
func (c *Client) runSession() {
	session, err := c.hub.sessions.NewSession(c.ctx, c.batchID, c, c.onState)
	if err == nil {
		c.mu.Lock()
		c.session = session
		c.mu.Unlock()
		err = session.Start(c.ctx)
	}
	if err != nil {
		c.logger.Error("Failed to start voice session", zap.Error(err))
		c.sendJSON(CreateErrorMessage("session_failed", "voice session could not be started", err.Error()))
		c.hub.leave(c)
		return
	}

	select {
	case <-session.Done():
	case <-c.ctx.Done():
		session.Stop()
		<-session.Done()
	}

	if err := session.Err(); err != nil {
		c.sendJSON(CreateErrorMessage("session_error", "voice session ended with an error", err.Error()))
	}
	c.hub.leave(c)
}

// readPump pumps messages from the websocket connection to the session.
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		case websocket.BinaryMessage:
			c.processCaptureFrame(message)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage handles a control message from the browser
func (c *Client) processMessage(message []byte) {
	msg, err := c.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Invalid control message", zap.Error(err))
		c.sendJSON(CreateErrorMessage("invalid_message", "message rejected", err.Error()))
		return
	}

	switch m := msg.(type) {
	case *PingMessage:
		c.sendJSON(CreatePongMessage(m.Data))
	case *StopMessage:
		c.logger.Info("Stop requested by client")
		c.stopSession()
	}
}

// processCaptureFrame forwards one microphone frame to the session
func (c *Client) processCaptureFrame(data []byte) {
	samples, err := c.validator.ValidateCaptureFrame(data)
	if err != nil {
		c.logger.Warn("Invalid capture frame", zap.Error(err))
		c.sendJSON(CreateErrorMessage("invalid_frame", "capture frame rejected", err.Error()))
		return
	}

	c.mu.Lock()
	capture := c.capture
	c.mu.Unlock()

	if capture == nil {
		c.logger.Debug("Capture frame before session is active", zap.Int("samples", len(samples)))
		return
	}
	if !capture.push(samples) {
		c.logger.Warn("Capture buffer full, dropping frame", zap.Int("samples", len(samples)))
	}
}

func (c *Client) onState(state voice.State) {
	c.sendJSON(CreateStateMessage(state))
	if state == voice.StateInterrupted {
		c.sendJSON(CreateInterruptedMessage())
	}
}

func (c *Client) stopSession() {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session != nil {
		session.Stop()
	}
}

// sendJSON queues a text message. It reports false once the client is gone.
func (c *Client) sendJSON(v any) bool {
	return c.trySendJSON(v) == nil
}

// trySendJSON is sendJSON reporting why a message was not queued:
// errClientGone once the client is closed, errSendBufferFull when the writer
// is behind.
func (c *Client) trySendJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal message", zap.Error(err))
		return err
	}
	return c.offer(WriteData{Type: websocket.TextMessage, Payload: payload})
}

func (c *Client) offer(data WriteData) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendDone {
		return errClientGone
	}
	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn("Send buffer full, dropping message")
		return errSendBufferFull
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendDone {
		c.sendDone = true
		close(c.send)
	}
}

// OpenCapture implements voice.Devices
func (c *Client) OpenCapture(ctx context.Context, sampleRate int) (voice.Capture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.capture != nil {
		return nil, errors.New("capture already open")
	}
	c.capture = newCaptureSource(captureBuffer)
	return c.capture, nil
}

// OpenPlayback implements voice.Devices
func (c *Client) OpenPlayback(ctx context.Context, sampleRate int) (voice.Playback, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playback != nil {
		return nil, errors.New("playback already open")
	}
	c.playback = newPlaybackSink(c, time.Now())
	return c.playback, nil
}
