package audio

import (
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"
)

// FFplaySink plays audio by driving an ffplay process. Pausing maps to
// SIGSTOP and SIGCONT, seeking and volume changes restart the process at the
// wanted offset since ffplay takes no runtime commands without a display.
type FFplaySink struct {
	mu           sync.Mutex
	binary       string
	path         string
	volume       float64
	cmd          *exec.Cmd
	offset       time.Duration
	playedBefore time.Duration
	resumedAt    time.Time
	paused       bool
	onDone       func()
}

// NewFFplaySink creates a sink that shells out to the given ffplay binary.
func NewFFplaySink(binary string, volume float64) *FFplaySink {
	if binary == "" {
		binary = "ffplay"
	}
	return &FFplaySink{binary: binary, volume: volume}
}

// OnDone registers the callback fired when a track plays to its end.
func (s *FFplaySink) OnDone(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDone = f
}

// Load starts playing the file from the given offset, replacing whatever was
// playing before.
func (s *FFplaySink) Load(path string, startAt time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
	return s.restart(startAt, false)
}

// Play resumes a paused track.
func (s *FFplaySink) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil || !s.paused {
		return
	}
	s.cmd.Process.Signal(syscall.SIGCONT)
	s.resumedAt = time.Now()
	s.paused = false
}

// Pause freezes playback in place.
func (s *FFplaySink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil || s.paused {
		return
	}
	s.pauseProcess()
}

// Stop kills the player process and unloads the track.
func (s *FFplaySink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kill()
	s.path = ""
	s.offset = 0
	s.playedBefore = 0
	s.paused = false
}

// Seek moves playback to the given position in the current track.
func (s *FFplaySink) Seek(to time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return fmt.Errorf("nothing loaded")
	}
	if to < 0 {
		to = 0
	}
	return s.restart(to, s.paused)
}

// SetVolume applies a new volume, restarting the current track in place when
// one is playing.
func (s *FFplaySink) SetVolume(volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = volume
	if s.cmd == nil {
		return
	}
	if err := s.restart(s.position(), s.paused); err != nil {
		slog.Error("Failed to apply volume", "error", err)
	}
}

// Position returns how far into the track playback currently is.
func (s *FFplaySink) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position()
}

// Empty reports whether no track is loaded.
func (s *FFplaySink) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd == nil
}

// restart kills the current process and spawns ffplay at the given offset.
// Callers hold s.mu.
func (s *FFplaySink) restart(at time.Duration, paused bool) error {
	s.kill()

	args := []string{"-nodisp", "-autoexit", "-loglevel", "quiet", "-volume", strconv.Itoa(s.volumeArg())}
	if at > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.3f", at.Seconds()))
	}
	args = append(args, s.path)

	cmd := exec.Command(s.binary, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffplay: %w", err)
	}
	s.cmd = cmd
	s.offset = at
	s.playedBefore = 0
	s.resumedAt = time.Now()
	s.paused = false

	go s.waitFor(cmd)

	if paused {
		s.pauseProcess()
	}
	slog.Debug("ffplay started", "path", s.path, "offset", at.Seconds(), "volume", s.volumeArg())
	return nil
}

// waitFor reaps the process and fires the completion callback when the track
// ran to its natural end.
func (s *FFplaySink) waitFor(cmd *exec.Cmd) {
	cmd.Wait()
	s.mu.Lock()
	if s.cmd != cmd {
		// Superseded or stopped on purpose
		s.mu.Unlock()
		return
	}
	s.cmd = nil
	done := s.onDone
	s.mu.Unlock()
	if done != nil {
		done()
	}
}

// pauseProcess stops the clock and the process. Callers hold s.mu.
func (s *FFplaySink) pauseProcess() {
	s.cmd.Process.Signal(syscall.SIGSTOP)
	s.playedBefore += time.Since(s.resumedAt)
	s.paused = true
}

// kill discards the current process so its waiter stays silent. Callers hold s.mu.
func (s *FFplaySink) kill() {
	if s.cmd != nil {
		s.cmd.Process.Kill()
		s.cmd = nil
	}
}

// position computes the playback position. Callers hold s.mu.
func (s *FFplaySink) position() time.Duration {
	if s.path == "" {
		return 0
	}
	pos := s.offset + s.playedBefore
	if !s.paused && s.cmd != nil {
		pos += time.Since(s.resumedAt)
	}
	return pos
}

// volumeArg maps the player's 0..1.2 gain onto ffplay's 0..100 scale.
func (s *FFplaySink) volumeArg() int {
	v := int(math.Round(s.volume * 100))
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return v
}
