package playback

import "time"

// Sink is the audio output port. Implementations play one file at a time.
type Sink interface {
	// Load replaces the current source with the file at path and starts
	// playing it from startAt.
	Load(path string, startAt time.Duration) error
	// Play resumes paused playback.
	Play()
	// Pause freezes playback in place.
	Pause()
	// Stop unloads the current source.
	Stop()
	// Seek moves playback to the given position in the current track.
	Seek(position time.Duration) error
	// SetVolume applies a 0..1.2 gain.
	SetVolume(volume float64)
	// Position reports how far into the track playback is.
	Position() time.Duration
	// Empty reports whether no source is loaded.
	Empty() bool
	// OnDone registers the callback fired when a track plays to its natural
	// end. Stops and reloads must not fire it.
	OnDone(fn func())
}
