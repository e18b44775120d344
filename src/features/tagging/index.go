package tagging

import "github.com/contre95/ferrum/src/music"

// SearchIndex receives re-tagged tracks so search results stay current.
// NOTE: Subset of the scanning feature's index port, served by the same bleve index.
type SearchIndex interface {
	IndexTracks(tracks []*music.Track) error
}
