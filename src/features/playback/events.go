package playback

import "github.com/contre95/ferrum/src/music"

// Status of the player.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
)

// EventType identifies a playback event.
type EventType string

const (
	EventPlaybackStarted  EventType = "playback_started"
	EventPlaybackProgress EventType = "playback_progress"
	EventPlaybackStopped  EventType = "playback_stopped"
	EventPlaybackEnded    EventType = "playback_ended"
	EventTrackChanged     EventType = "track_changed"
)

// Event carries a player state change to subscribers.
type Event struct {
	Type  EventType
	Track *music.Track
}
