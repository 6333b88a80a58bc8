package engine

import (
	"sync"
	"time"
)

// Stopwatch counts play time. It is paused and resumed by the host and is
// safe to read from a display ticker goroutine.
type Stopwatch struct {
	mu      sync.Mutex
	now     func() time.Time
	since   time.Time
	total   time.Duration
	running bool
}

func NewStopwatch(now func() time.Time) *Stopwatch {
	if now == nil {
		now = time.Now
	}
	return &Stopwatch{now: now}
}

// Start resets the watch and begins counting.
func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = 0
	s.since = s.now()
	s.running = true
}

func (s *Stopwatch) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.total += s.now().Sub(s.since)
	s.running = false
}

func (s *Stopwatch) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.since = s.now()
	s.running = true
}

func (s *Stopwatch) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Stopwatch) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return s.total + s.now().Sub(s.since)
	}
	return s.total
}

// Seconds is the elapsed time truncated to whole seconds.
func (s *Stopwatch) Seconds() int {
	return int(s.Elapsed() / time.Second)
}
