package audio

import (
	"sync"
	"time"
)

// NopSink satisfies the player without touching any audio device. Demo mode
// uses it so the queue and dashboard can be exercised on machines without
// ffplay installed. A demo track never finishes on its own.
type NopSink struct {
	mu           sync.Mutex
	path         string
	offset       time.Duration
	playedBefore time.Duration
	resumedAt    time.Time
	paused       bool
}

// NewNopSink creates a silent sink.
func NewNopSink() *NopSink {
	return &NopSink{}
}

// OnDone is a no-op, silence never ends.
func (s *NopSink) OnDone(func()) {}

// Load pretends to start the file at the given offset.
func (s *NopSink) Load(path string, startAt time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
	s.offset = startAt
	s.playedBefore = 0
	s.resumedAt = time.Now()
	s.paused = false
	return nil
}

// Play resumes the position clock.
func (s *NopSink) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" || !s.paused {
		return
	}
	s.resumedAt = time.Now()
	s.paused = false
}

// Pause freezes the position clock.
func (s *NopSink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" || s.paused {
		return
	}
	s.playedBefore += time.Since(s.resumedAt)
	s.paused = true
}

// Stop unloads the track.
func (s *NopSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = ""
	s.offset = 0
	s.playedBefore = 0
	s.paused = false
}

// Seek moves the position clock.
func (s *NopSink) Seek(to time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if to < 0 {
		to = 0
	}
	s.offset = to
	s.playedBefore = 0
	s.resumedAt = time.Now()
	return nil
}

// SetVolume does nothing, silence has one volume.
func (s *NopSink) SetVolume(volume float64) {}

// Position returns how far the clock has run.
func (s *NopSink) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return 0
	}
	pos := s.offset + s.playedBefore
	if !s.paused {
		pos += time.Since(s.resumedAt)
	}
	return pos
}

// Empty reports whether no track is loaded.
func (s *NopSink) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path == ""
}
