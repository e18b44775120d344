package playback

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/contre95/ferrum/src/music"
)

// progressInterval is how often a progress event is emitted while playing.
const progressInterval = 500 * time.Millisecond

// previousRestartsAfter is how far into a track the previous control rewinds
// instead of changing tracks.
const previousRestartsAfter = 500 * time.Millisecond

// Service is the player state machine over a sink and the play queue. All
// queue access goes through the service so one mutex serializes everything.
type Service struct {
	mu     sync.Mutex
	sink   Sink
	queue  *music.PlayQueue
	status Status
	volume float64
	events chan Event
	done   chan struct{}
}

// NewService creates a player over the given sink with the starting volume.
func NewService(sink Sink, volume float64) *Service {
	s := &Service{
		sink:   sink,
		queue:  music.NewPlayQueue("queue", nil),
		status: StatusStopped,
		volume: clampVolume(volume),
		events: make(chan Event, 32),
		done:   make(chan struct{}),
	}
	sink.SetVolume(s.volume)
	sink.OnDone(s.handleTrackDone)
	go s.progressLoop()
	return s
}

// Events exposes the playback event stream. Sends never block; events are
// dropped when nobody drains the channel.
func (s *Service) Events() <-chan Event {
	return s.events
}

// Close stops playback and the progress loop.
func (s *Service) Close() {
	s.Stop()
	close(s.done)
}

// PlayTrack starts playing the given track immediately.
func (s *Service) PlayTrack(track *music.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playLocked(track)
}

// Play resumes playback, or starts the queue's current track when nothing is
// loaded.
func (s *Service) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sink.Empty() {
		track := s.queue.Current()
		if track == nil {
			return nil
		}
		return s.playLocked(track)
	}
	s.sink.Play()
	s.status = StatusPlaying
	return nil
}

// Pause freezes playback. Pausing an empty player does nothing.
func (s *Service) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sink.Empty() {
		return
	}
	s.sink.Pause()
	s.status = StatusPaused
}

// Stop unloads the sink.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Toggle resumes when paused, pauses otherwise.
func (s *Service) Toggle() error {
	s.mu.Lock()
	paused := s.status == StatusPaused
	s.mu.Unlock()
	if paused {
		return s.Play()
	}
	s.Pause()
	return nil
}

// Next advances the queue. An exhausted no-repeat queue stops the player.
func (s *Service) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	track := s.queue.Next()
	if track == nil {
		s.stopLocked()
		return nil
	}
	if err := s.playLocked(track); err != nil {
		return err
	}
	s.emit(Event{Type: EventTrackChanged, Track: track})
	return nil
}

// Previous rewinds to the start of the track when more than half a second
// in, otherwise steps the queue back.
func (s *Service) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sink.Position() > previousRestartsAfter {
		return s.sink.Seek(0)
	}
	track := s.queue.Previous()
	if track == nil {
		return nil
	}
	if err := s.playLocked(track); err != nil {
		return err
	}
	s.emit(Event{Type: EventTrackChanged, Track: track})
	return nil
}

// Seek moves playback to the given position in the current track.
func (s *Service) Seek(position time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sink.Empty() {
		return nil
	}
	return s.sink.Seek(position)
}

// Position reports how far into the current track playback is.
func (s *Service) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sink.Position()
}

// SetVolume applies a clamped 0..1.2 gain.
func (s *Service) SetVolume(volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = clampVolume(volume)
	s.sink.SetVolume(s.volume)
}

// Volume returns the current gain.
func (s *Service) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Status returns the player status.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Current returns the queue's current track.
func (s *Service) Current() *music.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Current()
}

// QueueTracks returns a snapshot of the queued tracks in order.
func (s *Service) QueueTracks() []*music.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*music.Track(nil), s.queue.Tracks()...)
}

// QueuePosition returns the queue cursor index.
func (s *Service) QueuePosition() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Position()
}

// QueueLen returns the number of queued tracks.
func (s *Service) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// QueueName returns the queue name.
func (s *Service) QueueName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Name()
}

// SetQueueName renames the queue.
func (s *Service) SetQueueName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.SetName(name)
}

// Append adds a track to the end of the queue.
func (s *Service) Append(track *music.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Append(track)
}

// AppendAll adds the tracks to the end of the queue in order.
func (s *Service) AppendAll(tracks []*music.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.AppendAll(tracks)
}

// AppendAndPlay queues the track at the end, moves the cursor to it and
// starts playing it.
func (s *Service) AppendAndPlay(track *music.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Append(track)
	s.queue.Select(s.queue.Len() - 1)
	if err := s.playLocked(track); err != nil {
		return err
	}
	s.emit(Event{Type: EventTrackChanged, Track: track})
	return nil
}

// ClearQueue empties the queue. Whatever is playing keeps playing.
func (s *Service) ClearQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Clear()
}

// SelectAndPlay moves the queue cursor to index and plays the track there.
// Selecting into an empty queue does nothing.
func (s *Service) SelectAndPlay(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Select(index)
	track := s.queue.Current()
	if track == nil {
		return nil
	}
	if err := s.playLocked(track); err != nil {
		return err
	}
	s.emit(Event{Type: EventTrackChanged, Track: track})
	return nil
}

// Mode returns the queue advance mode.
func (s *Service) Mode() music.QueueMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Mode()
}

// SetMode sets the queue advance mode.
func (s *Service) SetMode(mode music.QueueMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.SetMode(mode)
}

// CycleMode switches to the next queue mode and returns it.
func (s *Service) CycleMode() music.QueueMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.CycleMode()
}

// ShuffleQueue reorders the queued tracks in place.
func (s *Service) ShuffleQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Shuffle()
}

// playLocked loads and starts the track. Callers hold s.mu.
func (s *Service) playLocked(track *music.Track) error {
	if track == nil {
		return fmt.Errorf("no track to play")
	}
	s.sink.Stop()
	if err := s.sink.Load(track.Path, 0); err != nil {
		s.status = StatusStopped
		return fmt.Errorf("failed to play %s: %w", track.Path, err)
	}
	s.status = StatusPlaying
	s.emit(Event{Type: EventPlaybackStarted, Track: track})
	return nil
}

// stopLocked unloads the sink and reports the stop. Callers hold s.mu.
func (s *Service) stopLocked() {
	s.sink.Stop()
	s.status = StatusStopped
	s.emit(Event{Type: EventPlaybackStopped})
}

// handleTrackDone runs when a track finishes on its own. Advancing the queue
// here is also how an exhausted no-repeat queue reaches the stopped state.
func (s *Service) handleTrackDone() {
	s.mu.Lock()
	current := s.queue.Current()
	s.mu.Unlock()
	s.emit(Event{Type: EventPlaybackEnded, Track: current})

	if err := s.Next(); err != nil {
		slog.Error("Failed to advance after track end", "error", err)
	}
}

// progressLoop emits a progress event twice a second while playing.
func (s *Service) progressLoop() {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			playing := s.status == StatusPlaying
			track := s.queue.Current()
			s.mu.Unlock()
			if playing {
				s.emit(Event{Type: EventPlaybackProgress, Track: track})
			}
		case <-s.done:
			return
		}
	}
}

// emit sends without blocking so a stuck consumer cannot stall playback.
func (s *Service) emit(event Event) {
	select {
	case s.events <- event:
	default:
	}
}

func clampVolume(volume float64) float64 {
	if volume < 0 {
		return 0
	}
	if volume > 1.2 {
		return 1.2
	}
	return volume
}
