package music

import "math/rand"

// QueueMode controls how the play queue advances between tracks.
type QueueMode int

const (
	ModeNoRepeat QueueMode = iota
	ModeRepeat
	ModeRepeatSingle
	ModeShuffle
)

// String returns the mode name for display.
func (m QueueMode) String() string {
	switch m {
	case ModeNoRepeat:
		return "no repeat"
	case ModeRepeat:
		return "repeat"
	case ModeRepeatSingle:
		return "repeat single"
	case ModeShuffle:
		return "shuffle"
	default:
		return "unknown"
	}
}

// PlayQueue is an ordered list of tracks with a cursor and a repeat mode.
// It is not safe for concurrent use; the playback service serializes access.
// Every operation tolerates an empty queue.
type PlayQueue struct {
	name    string
	mode    QueueMode
	tracks  []*Track
	current int
	history []int
}

// NewPlayQueue creates a queue over the given tracks in repeat mode.
func NewPlayQueue(name string, tracks []*Track) *PlayQueue {
	return &PlayQueue{
		name:   name,
		mode:   ModeRepeat,
		tracks: tracks,
	}
}

// Current returns the track under the cursor, nil when the queue is empty or
// the cursor points past the end.
func (q *PlayQueue) Current() *Track {
	if q.current < 0 || q.current >= len(q.tracks) {
		return nil
	}
	return q.tracks[q.current]
}

// Position returns the cursor index.
func (q *PlayQueue) Position() int {
	return q.current
}

// Select moves the cursor to index, clamped into range. It drops the shuffle
// history. Selecting into an empty queue does nothing.
func (q *PlayQueue) Select(index int) {
	q.history = nil
	if len(q.tracks) == 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index > len(q.tracks)-1 {
		index = len(q.tracks) - 1
	}
	q.current = index
}

// Next advances the cursor according to the queue mode and returns the new
// current track. In no-repeat mode it returns nil so the caller can stop.
func (q *PlayQueue) Next() *Track {
	switch q.mode {
	case ModeRepeat:
		q.current++
		if q.current >= len(q.tracks) {
			q.current = 0
		}
		return q.Current()
	case ModeRepeatSingle:
		return q.Current()
	case ModeShuffle:
		if len(q.tracks) == 0 {
			return nil
		}
		q.history = append(q.history, q.current)
		q.current = rand.Intn(len(q.tracks))
		return q.Current()
	default:
		q.history = nil
		return nil
	}
}

// Previous pops the shuffle history when there is one, otherwise steps the
// cursor back saturating at the first track.
func (q *PlayQueue) Previous() *Track {
	if n := len(q.history); n > 0 {
		q.current = q.history[n-1]
		q.history = q.history[:n-1]
	} else if q.current > 0 {
		q.current--
	}
	return q.Current()
}

// Tracks returns the queued tracks in order.
func (q *PlayQueue) Tracks() []*Track {
	return q.tracks
}

// Len returns the number of queued tracks.
func (q *PlayQueue) Len() int {
	return len(q.tracks)
}

// Name returns the queue name.
func (q *PlayQueue) Name() string {
	return q.name
}

// SetName renames the queue.
func (q *PlayQueue) SetName(name string) {
	q.name = name
}

// Mode returns the queue mode.
func (q *PlayQueue) Mode() QueueMode {
	return q.mode
}

// SetMode sets the queue mode.
func (q *PlayQueue) SetMode(mode QueueMode) {
	q.mode = mode
}

// CycleMode switches to the next mode in declaration order.
func (q *PlayQueue) CycleMode() QueueMode {
	q.mode = (q.mode + 1) % 4
	return q.mode
}

// Shuffle reorders the queued tracks in place.
func (q *PlayQueue) Shuffle() {
	rand.Shuffle(len(q.tracks), func(i, j int) {
		q.tracks[i], q.tracks[j] = q.tracks[j], q.tracks[i]
	})
}

// Clear empties the queue and resets the cursor and history.
func (q *PlayQueue) Clear() {
	q.tracks = nil
	q.current = 0
	q.history = nil
}

// Append adds a track to the end of the queue.
func (q *PlayQueue) Append(track *Track) {
	q.tracks = append(q.tracks, track)
}

// AppendAll adds the tracks to the end of the queue in order.
func (q *PlayQueue) AppendAll(tracks []*Track) {
	q.tracks = append(q.tracks, tracks...)
}
