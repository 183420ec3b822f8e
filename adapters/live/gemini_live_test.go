package live

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/linksense/domain/entities"
	"github.com/satriahrh/linksense/domain/repositories"
)

var testCred = entities.Credential{Name: "default", APIKey: "live-key"}

func TestGeminiLive_RoundTrip(t *testing.T) {
	upgrader := websocket.Upgrader{}
	setup := make(chan map[string]any, 1)
	realtime := make(chan map[string]any, 1)
	var gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		var msg map[string]any
		if err := ws.ReadJSON(&msg); err != nil {
			return
		}
		setup <- msg

		if err := ws.ReadJSON(&msg); err != nil {
			return
		}
		realtime <- msg

		audio := base64.StdEncoding.EncodeToString([]byte{1, 0, 2, 0})
		ws.WriteMessage(websocket.TextMessage, []byte(`{"setupComplete":{}}`))
		ws.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf(
			`{"serverContent":{"modelTurn":{"parts":[{"inlineData":{"mimeType":"audio/pcm;rate=24000","data":%q}},{"text":"ignored"}]}}}`, audio)))
		ws.WriteMessage(websocket.TextMessage, []byte(`{"serverContent":{"interrupted":true}}`))
		ws.WriteMessage(websocket.TextMessage, []byte(`{"serverContent":{"turnComplete":true}}`))
		ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	}))
	defer srv.Close()

	backend := NewGeminiLive("ws"+strings.TrimPrefix(srv.URL, "http")+"/", zap.NewNop())
	c, err := backend.Connect(context.Background(), testCred, repositories.LiveConfig{
		Model:             "live-test",
		SystemInstruction: "You are LinkSense AI.",
	})
	require.NoError(t, err)
	defer c.Close()

	first := <-setup
	assert.Equal(t, "live-key", gotKey)
	body, _ := json.Marshal(first)
	assert.Contains(t, string(body), "models/live-test")
	assert.Contains(t, string(body), "Kore")
	assert.Contains(t, string(body), "You are LinkSense AI.")
	assert.Contains(t, string(body), "AUDIO")

	require.NoError(t, c.SendAudio([]byte{9, 9}))
	sent, _ := json.Marshal(<-realtime)
	assert.Contains(t, string(sent), "audio/pcm;rate=16000")

	ev, err := c.Receive()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 2, 0}, ev.Audio)

	ev, err = c.Receive()
	require.NoError(t, err)
	assert.True(t, ev.Interrupted)

	ev, err = c.Receive()
	require.NoError(t, err)
	assert.True(t, ev.TurnComplete)

	_, err = c.Receive()
	assert.ErrorIs(t, err, io.EOF)
}

func TestGeminiLive_RequiresCredential(t *testing.T) {
	backend := NewGeminiLive("", zap.NewNop())
	_, err := backend.Connect(context.Background(), entities.Credential{}, repositories.LiveConfig{})
	require.Error(t, err)
}

func TestEventsFrom(t *testing.T) {
	assert.Nil(t, eventsFrom(nil))
	assert.Nil(t, eventsFrom(&genai.LiveServerMessage{SetupComplete: &genai.LiveServerSetupComplete{}}))

	events := eventsFrom(&genai.LiveServerMessage{ServerContent: &genai.LiveServerContent{
		ModelTurn: &genai.Content{Parts: []*genai.Part{
			{InlineData: &genai.Blob{Data: []byte{1, 2}}},
			nil,
			{InlineData: &genai.Blob{Data: []byte{3, 4}}},
		}},
		TurnComplete: true,
	}})
	require.Len(t, events, 3)
	assert.Equal(t, []byte{1, 2}, events[0].Audio)
	assert.Equal(t, []byte{3, 4}, events[1].Audio)
	assert.True(t, events[2].TurnComplete)
}
