package scanning

import "github.com/contre95/ferrum/src/music"

// SearchIndex keeps the full-text index in step with the catalog.
type SearchIndex interface {
	IndexTracks(tracks []*music.Track) error
	DeletePaths(paths []string) error
	RebuildFrom(tracks []*music.Track) error
}
