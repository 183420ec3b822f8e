package websocket

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/linksense/internal/voice"
)

var (
	errPlaybackClosed = errors.New("playback closed")
	errClientGone     = errors.New("client disconnected")
	errSendBufferFull = errors.New("send buffer full")
)

// captureSource buffers microphone frames read off the socket.
type captureSource struct {
	mu     sync.Mutex
	frames chan []float32
	closed bool
}

func newCaptureSource(buffer int) *captureSource {
	return &captureSource{frames: make(chan []float32, buffer)}
}

func (s *captureSource) Frames() <-chan []float32 {
	return s.frames
}

// push queues a frame without blocking the read pump. It reports false when
// the frame was dropped.
func (s *captureSource) push(frame []float32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.frames <- frame:
		return true
	default:
		return false
	}
}

func (s *captureSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.frames)
	}
	return nil
}

// playbackSink forwards fragments to the browser, which plays them at
// StartAt on its own audio clock. The server mirrors that clock from the
// moment playback opened and times each fragment's end locally.
type playbackSink struct {
	client *Client
	opened time.Time
	ended  chan uint64
	done   chan struct{}

	mu     sync.Mutex
	timers map[uint64]*time.Timer
	closed bool
}

var _ voice.Playback = (*playbackSink)(nil)

func newPlaybackSink(client *Client, opened time.Time) *playbackSink {
	return &playbackSink{
		client: client,
		opened: opened,
		ended:  make(chan uint64, 256),
		done:   make(chan struct{}),
		timers: make(map[uint64]*time.Timer),
	}
}

func (p *playbackSink) Now() float64 {
	return time.Since(p.opened).Seconds()
}

// Start sends the fragment and arms its end timer. A fragment that does not
// fit in the send buffer is dropped: the browser hears a gap but the fragment
// still ends on schedule, so the session keeps going.
func (p *playbackSink) Start(f voice.Fragment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errPlaybackClosed
	}

	switch err := p.client.trySendJSON(CreateAudioFragmentMessage(f)); {
	case err == nil:
	case errors.Is(err, errSendBufferFull):
		p.client.logger.Warn("Audio fragment dropped", zap.Uint64("fragmentID", f.ID))
	default:
		return err
	}

	remaining := time.Duration((f.StartAt + f.Duration - p.Now()) * float64(time.Second))
	id := f.ID
	p.timers[id] = time.AfterFunc(remaining, func() { p.finish(id) })
	return nil
}

// finish reports a fragment end. It waits for the scheduler rather than
// dropping the id, and gives up only when playback closes.
func (p *playbackSink) finish(id uint64) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	delete(p.timers, id)
	p.mu.Unlock()

	select {
	case p.ended <- id:
	case <-p.done:
	}
}

func (p *playbackSink) Stop(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.timers[id]; ok {
		t.Stop()
		delete(p.timers, id)
	}
	if !p.closed {
		p.client.sendJSON(CreateFragmentStopMessage(id))
	}
}

func (p *playbackSink) Ended() <-chan uint64 {
	return p.ended
}

func (p *playbackSink) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)
	for id, t := range p.timers {
		t.Stop()
		delete(p.timers, id)
	}
	return nil
}
