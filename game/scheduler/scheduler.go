package scheduler

import (
	"errors"
	"sync"
	"time"
)

// ErrInvalidPeriod is returned when a tick period is zero or negative
var ErrInvalidPeriod = errors.New("tick period must be positive")

// TickFunc is called on every tick. Returning false ends the loop.
type TickFunc func() bool

// Scheduler drives a TickFunc at a fixed, adjustable period from a single
// goroutine, so two ticks never run at the same time.
type Scheduler struct {
	tick TickFunc

	mu      sync.Mutex
	period  time.Duration
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	resetCh chan time.Duration
}

// New creates a stopped scheduler for the given tick function
func New(tick TickFunc) *Scheduler {
	return &Scheduler{tick: tick}
}

// Start begins ticking every period. A running loop is stopped and replaced.
func (s *Scheduler) Start(period time.Duration) error {
	if period <= 0 {
		return ErrInvalidPeriod
	}

	for {
		s.Stop()
		s.mu.Lock()
		if !s.running {
			break
		}
		s.mu.Unlock()
	}
	defer s.mu.Unlock()

	s.period = period
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.resetCh = make(chan time.Duration, 1)

	go s.loop(period, s.stopCh, s.doneCh, s.resetCh)
	return nil
}

// SetPeriod changes the period of a running loop starting with the next tick.
// It never blocks, so it is safe to call from inside the tick function.
func (s *Scheduler) SetPeriod(period time.Duration) {
	if period <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.period == period {
		return
	}
	s.period = period
	if !s.running {
		return
	}

	// Keep only the latest request
	select {
	case <-s.resetCh:
	default:
	}
	s.resetCh <- period
}

// Stop ends the loop and waits for an in-flight tick to finish. It is
// idempotent. It must not be called from inside the tick function; return
// false from the tick instead.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		done := s.doneCh
		s.mu.Unlock()
		if done != nil {
			<-done
		}
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	<-done
}

// Running reports whether the loop is active
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Period returns the current tick period
func (s *Scheduler) Period() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

func (s *Scheduler) loop(period time.Duration, stop <-chan struct{}, done chan<- struct{}, reset <-chan time.Duration) {
	defer close(done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case p := <-reset:
			ticker.Reset(p)
		case <-ticker.C:
			// A stop that raced with the tick wins
			select {
			case <-stop:
				return
			default:
			}

			if !s.tick() {
				s.finish(stop)
				return
			}
		}
	}
}

// finish marks the loop stopped after the tick function ended it
func (s *Scheduler) finish(stop <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Only clear the flag if no newer loop has been started
	if s.stopCh == stop {
		s.running = false
	}
}
