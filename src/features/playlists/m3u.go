package playlists

import (
	"github.com/contre95/ferrum/src/music"
)

// M3UParser defines the interface for M3U playlist parsing and generation
type M3UParser interface {
	// ParseM3U reads an M3U file and returns the track paths it lists.
	// Relative entries are resolved against the playlist file's directory.
	ParseM3U(path string) ([]string, error)

	// GenerateM3U renders tracks as extended M3U content.
	GenerateM3U(name string, tracks []*music.Track) string
}
