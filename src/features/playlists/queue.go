package playlists

import (
	"github.com/contre95/ferrum/src/music"
)

// Queue defines the slice of the player the playlists feature drives.
type Queue interface {
	// QueueTracks returns a copy of the queued tracks in order.
	QueueTracks() []*music.Track

	// QueueLen returns the number of queued tracks.
	QueueLen() int

	// QueueName returns the queue's display name.
	QueueName() string

	// SetQueueName renames the queue.
	SetQueueName(name string)

	// AppendAll appends tracks to the end of the queue.
	AppendAll(tracks []*music.Track)
}
