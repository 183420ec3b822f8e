package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/satriahrh/linksense/domain/entities"
	"github.com/satriahrh/linksense/domain/repositories"
)

// SessionConfig configures one voice session.
type SessionConfig struct {
	Credential entities.Credential
	Live       repositories.LiveConfig
	// OnState is called after every state change. It must not block.
	OnState func(State)
}

// Session is one live conversation. It runs three tasks while active:
// capture to backend, backend to scheduler, and the playback scheduler which
// alone owns the clock and the live fragment set.
type Session struct {
	backend repositories.LiveBackend
	devices Devices
	config  SessionConfig
	logger  *zap.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	err    error
	done   chan struct{}
}

// NewSession creates an idle session.
func NewSession(backend repositories.LiveBackend, devices Devices, config SessionConfig, logger *zap.Logger) *Session {
	if config.Live.InputMIMEType == "" {
		config.Live.InputMIMEType = CaptureMIMEType
	}
	return &Session{
		backend: backend,
		devices: devices,
		config:  config,
		logger:  logger,
		state:   StateIdle,
		done:    make(chan struct{}),
	}
}

// Start opens the audio devices and the backend connection and returns once
// the session is active. Setup failures release whatever was opened and
// leave the session idle. A Stop during setup closes the session instead.
func (s *Session) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		cancel()
		return fmt.Errorf("cannot start session in state %s", state)
	}
	s.cancel = cancel
	s.mu.Unlock()
	s.setState(StateConnecting)

	capture, err := s.devices.OpenCapture(runCtx, CaptureSampleRate)
	if err != nil {
		return s.abortSetup(runCtx, fmt.Errorf("failed to open capture: %w", err))
	}

	playback, err := s.devices.OpenPlayback(runCtx, PlaybackSampleRate)
	if err != nil {
		capture.Close()
		return s.abortSetup(runCtx, fmt.Errorf("failed to open playback: %w", err))
	}

	conn, err := s.backend.Connect(runCtx, s.config.Credential, s.config.Live)
	if err != nil {
		capture.Close()
		playback.Close()
		return s.abortSetup(runCtx, fmt.Errorf("failed to connect live backend: %w", err))
	}

	if runCtx.Err() != nil {
		conn.Close()
		capture.Close()
		playback.Close()
		return s.abortSetup(runCtx, nil)
	}

	s.setState(StateActive)
	s.logger.Info("Voice session active", zap.String("credential", s.config.Credential.Name))

	go s.run(runCtx, cancel, capture, playback, conn)
	return nil
}

// abortSetup ends a Start that did not reach Active. When the session was
// stopped meanwhile it is closed and err is dropped; otherwise it goes back
// to idle and err is returned.
func (s *Session) abortSetup(runCtx context.Context, err error) error {
	stopped := runCtx.Err() != nil

	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	cancel()

	if !stopped {
		s.setState(StateIdle)
		return err
	}

	s.logger.Info("Voice session stopped while connecting")
	s.setState(StateClosed)
	close(s.done)
	return nil
}

// Stop ends the session. During setup it prevents the session from going
// active. Fragments that already started keep playing until the playback
// device is released.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done is closed once a started session has fully shut down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err reports why the session ended. It is nil for a clean close.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	if s.state == state || s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.mu.Unlock()

	if s.config.OnState != nil {
		s.config.OnState(state)
	}
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, capture Capture, playback Playback, conn repositories.LiveConn) {
	events := make(chan repositories.LiveEvent, 16)
	g, gctx := errgroup.WithContext(ctx)

	go func() {
		<-gctx.Done()
		if err := conn.Close(); err != nil {
			s.logger.Warn("Failed to close live connection", zap.Error(err))
		}
	}()

	g.Go(func() error {
		defer cancel()
		return s.sendLoop(gctx, capture, conn)
	})
	g.Go(func() error {
		defer cancel()
		return s.receiveLoop(gctx, conn, events)
	})
	g.Go(func() error {
		defer cancel()
		return s.playLoop(gctx, playback, events)
	})

	err := g.Wait()
	cancel()

	if cerr := capture.Close(); cerr != nil {
		s.logger.Warn("Failed to close capture", zap.Error(cerr))
	}
	if perr := playback.Close(); perr != nil {
		s.logger.Warn("Failed to close playback", zap.Error(perr))
	}

	if err != nil {
		s.logger.Error("Voice session failed", zap.Error(err))
	} else {
		s.logger.Info("Voice session closed")
	}

	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.setState(StateClosed)
	close(s.done)
}

func (s *Session) sendLoop(ctx context.Context, capture Capture, conn repositories.LiveConn) error {
	frames := capture.Frames()
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			if err := conn.SendAudio(EncodePCM16(frame)); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("failed to send capture frame: %w", err)
			}
		}
	}
}

func (s *Session) receiveLoop(ctx context.Context, conn repositories.LiveConn, events chan<- repositories.LiveEvent) error {
	for {
		ev, err := conn.Receive()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to receive from live backend: %w", err)
		}

		select {
		case events <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Session) playLoop(ctx context.Context, playback Playback, events <-chan repositories.LiveEvent) error {
	sched := NewScheduler(playback)
	ended := playback.Ended()

	for {
		select {
		case <-ctx.Done():
			return nil

		case id := <-ended:
			sched.Finished(id)

		case ev := <-events:
			if ev.Interrupted {
				stopped := sched.Interrupt()
				s.setState(StateInterrupted)
				s.logger.Debug("Playback interrupted", zap.Int("stopped", stopped))
			}
			if len(ev.Audio) == 0 {
				continue
			}
			if s.State() == StateInterrupted {
				s.setState(StateActive)
			}
			if _, err := sched.Schedule(DecodePCM16(ev.Audio), PlaybackSampleRate); err != nil {
				return fmt.Errorf("failed to schedule playback: %w", err)
			}
		}
	}
}
