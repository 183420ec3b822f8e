package voice

import (
	"context"
	"math"
)

// Fragment is one decoded piece of model speech placed on the playback clock.
type Fragment struct {
	ID         uint64
	Samples    []float32
	SampleRate int
	StartAt    float64
	Duration   float64
}

// Capture yields microphone frames until closed.
type Capture interface {
	Frames() <-chan []float32
	Close() error
}

// Player plays fragments against a monotonic clock measured in seconds.
type Player interface {
	Now() float64
	Start(f Fragment) error
	Stop(id uint64)
}

// Playback is a Player that reports fragments that finished on their own.
type Playback interface {
	Player
	Ended() <-chan uint64
	Close() error
}

// Devices opens the audio endpoints of one session.
type Devices interface {
	OpenCapture(ctx context.Context, sampleRate int) (Capture, error)
	OpenPlayback(ctx context.Context, sampleRate int) (Playback, error)
}

// Scheduler queues fragments back to back. It is not safe for concurrent
// use; the session's playback task owns it.
type Scheduler struct {
	player    Player
	nextStart float64
	live      map[uint64]Fragment
	seq       uint64
}

func NewScheduler(player Player) *Scheduler {
	return &Scheduler{
		player: player,
		live:   make(map[uint64]Fragment),
	}
}

// Schedule starts samples at max(now, nextStart) and advances nextStart by
// their duration. Empty input schedules nothing.
func (s *Scheduler) Schedule(samples []float32, sampleRate int) (Fragment, error) {
	if len(samples) == 0 || sampleRate <= 0 {
		return Fragment{}, nil
	}

	s.seq++
	f := Fragment{
		ID:         s.seq,
		Samples:    samples,
		SampleRate: sampleRate,
		StartAt:    math.Max(s.player.Now(), s.nextStart),
		Duration:   float64(len(samples)) / float64(sampleRate),
	}

	if err := s.player.Start(f); err != nil {
		return Fragment{}, err
	}

	s.nextStart = f.StartAt + f.Duration
	s.live[f.ID] = f
	return f, nil
}

// Interrupt stops every live fragment and resets the queue so the next
// fragment plays immediately.
func (s *Scheduler) Interrupt() int {
	n := len(s.live)
	for id := range s.live {
		s.player.Stop(id)
		delete(s.live, id)
	}
	s.nextStart = 0
	return n
}

// Finished forgets a fragment that played to its end.
func (s *Scheduler) Finished(id uint64) {
	delete(s.live, id)
}

// Live reports how many fragments are scheduled or playing.
func (s *Scheduler) Live() int {
	return len(s.live)
}

func (s *Scheduler) NextStart() float64 {
	return s.nextStart
}
