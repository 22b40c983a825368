package timer

import (
	"context"
	"sync"
)

// Stopwatch counts elapsed seconds while running. Saving hands the elapsed
// time to a SaveFunc; a failed save keeps the elapsed time so the user can
// retry without losing the recorded duration.
type Stopwatch struct {
	mu      sync.Mutex
	elapsed int
	running bool
	saving  bool
	subject string
	save    SaveFunc
}

// NewStopwatch builds an idle stopwatch saving under the given subject.
func NewStopwatch(subject string, save SaveFunc) *Stopwatch {
	return &Stopwatch{subject: subject, save: save}
}

// Start begins or resumes counting.
func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
}

// Pause stops counting without discarding elapsed time.
func (s *Stopwatch) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// Reset returns the stopwatch to idle with zero elapsed time.
func (s *Stopwatch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.elapsed = 0
}

// Tick advances the clock by one second. Only counts while running.
func (s *Stopwatch) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.elapsed++
	}
}

// SetSubject changes the subject future saves are recorded under.
func (s *Stopwatch) SetSubject(subject string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subject = subject
}

// Elapsed reports the seconds counted so far.
func (s *Stopwatch) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// State reports idle, running, or paused.
func (s *Stopwatch) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.running:
		return StateRunning
	case s.elapsed > 0:
		return StatePaused
	default:
		return StateIdle
	}
}

// Save persists the elapsed time and resets on success. It is a no-op when
// nothing has been counted or another save is still in flight. Saving while
// running pauses the stopwatch first.
func (s *Stopwatch) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.elapsed == 0 || s.saving {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.saving = true
	duration := s.elapsed
	subject := s.subject
	s.mu.Unlock()

	err := s.save(ctx, subject, duration)

	s.mu.Lock()
	s.saving = false
	if err == nil {
		s.elapsed = 0
	}
	s.mu.Unlock()
	return err
}
