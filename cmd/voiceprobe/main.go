package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v2"

	"github.com/satriahrh/linksense/internal/voice"
)

type serverMessage struct {
	Type       string  `json:"type"`
	State      string  `json:"state"`
	FragmentID uint64  `json:"fragment_id"`
	StartAt    float64 `json:"start_at"`
	Duration   float64 `json:"duration"`
	Code       string  `json:"error_code"`
	Message    string  `json:"message"`
}

func main() {
	app := &cli.App{
		Name:  "voiceprobe",
		Usage: "Stream audio to a voice session and print what comes back",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server", Value: "localhost:8080", Usage: "host:port of the server"},
			&cli.StringFlag{Name: "batch", Required: true, Usage: "batch id to talk about"},
			&cli.StringFlag{Name: "audio", Usage: "raw float32 LE mono 16 kHz file; silence when empty"},
			&cli.DurationFlag{Name: "duration", Value: 10 * time.Second, Usage: "how long to stream"},
		},
		Action: probe,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func probe(c *cli.Context) error {
	wsURL := url.URL{Scheme: "ws", Host: c.String("server"), Path: "/ws/voice"}
	q := wsURL.Query()
	q.Set("batch_id", c.String("batch"))
	wsURL.RawQuery = q.Encode()

	fmt.Printf("Connecting to: %s\n", wsURL.String())

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket connection failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket connection failed: %w", err)
	}
	defer conn.Close()

	fmt.Println("✓ WebSocket connection successful!")

	var source io.Reader
	if path := c.String("audio"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open audio: %w", err)
		}
		defer f.Close()
		source = f
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		printEvents(conn)
	}()

	if err := stream(conn, source, c.Duration("duration")); err != nil {
		return err
	}

	fmt.Println("Stopping session...")
	if err := conn.WriteJSON(map[string]string{"type": "stop"}); err != nil {
		return fmt.Errorf("failed to send stop: %w", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		fmt.Println("No close from server, giving up")
	}
	return nil
}

// stream sends one capture frame per frame period until the source or the
// time budget runs out.
func stream(conn *websocket.Conn, source io.Reader, budget time.Duration) error {
	framePeriod := time.Duration(voice.FrameSize) * time.Second / time.Duration(voice.CaptureSampleRate)
	ticker := time.NewTicker(framePeriod)
	defer ticker.Stop()

	deadline := time.After(budget)
	buf := make([]byte, voice.FrameSize*4)
	silence := voice.EncodeFloat32(make([]float32, voice.FrameSize))
	sent := 0

	for {
		select {
		case <-deadline:
			fmt.Printf("✓ Sent %d frames\n", sent)
			return nil
		case <-ticker.C:
		}

		frame := silence
		if source != nil {
			n, err := io.ReadFull(source, buf)
			if errors.Is(err, io.EOF) {
				fmt.Printf("✓ Audio file finished after %d frames\n", sent)
				return nil
			}
			if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("failed to read audio: %w", err)
			}
			frame = buf[:n-n%4]
			if len(frame) == 0 {
				return nil
			}
		}

		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return fmt.Errorf("failed to send frame: %w", err)
		}
		sent++
	}
}

func printEvents(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				fmt.Println("✓ Server closed the session")
			} else {
				fmt.Printf("Read ended: %v\n", err)
			}
			return
		}

		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			fmt.Printf("Unparsable message: %s\n", data)
			continue
		}

		switch msg.Type {
		case "state":
			fmt.Printf("state -> %s\n", msg.State)
		case "audio_fragment":
			fmt.Printf("fragment %d at %.3fs for %.3fs\n", msg.FragmentID, msg.StartAt, msg.Duration)
		case "fragment_stop":
			fmt.Printf("fragment %d stopped\n", msg.FragmentID)
		case "error":
			fmt.Printf("error %s: %s\n", msg.Code, msg.Message)
		default:
			fmt.Println(msg.Type)
		}
	}
}
