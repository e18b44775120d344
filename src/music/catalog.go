package music

import (
	"context"
	"time"
)

// Catalog is the interface for the track catalog store.
// It's our primary repository interface for the library domain.
type Catalog interface {
	// UpsertTrack inserts the track, or overwrites every column except id and
	// path when a row with the same path already exists. Returns the row id.
	UpsertTrack(ctx context.Context, track *Track) (int64, error)
	// UpsertTracks stores a batch of tracks inside a single transaction and
	// returns how many rows were written.
	UpsertTracks(ctx context.Context, tracks []*Track) (int, error)
	// GetAllTracks returns the whole catalog ordered by album, then disc and
	// track number compared as integers.
	GetAllTracks(ctx context.Context) ([]*Track, error)
	GetTrack(ctx context.Context, id int64) (*Track, error)
	FindTrackByPath(ctx context.Context, path string) (*Track, error)
	// GetTrackPaths maps every stored path to its row stamp, so a scan can
	// decide which files need re-reading.
	GetTrackPaths(ctx context.Context) (map[string]TrackStamp, error)
	// RemoveMissing deletes rows whose file is gone and returns the count.
	RemoveMissing(ctx context.Context) (int, error)
	GetTracksCount(ctx context.Context) (int, error)
	GetStats(ctx context.Context) (*LibraryStats, error)
	Close() error
}

// TrackStamp is the catalog's view of a stored file for freshness checks.
type TrackStamp struct {
	ID       int64
	Modified *time.Time
}

// StatCount is a single bucket of a stats distribution.
type StatCount struct {
	Name  string
	Count int
}

// LibraryStats holds catalog totals and groupings for display.
type LibraryStats struct {
	TotalTracks  int
	TotalArtists int
	TotalAlbums  int
	TotalGenres  int
	TotalSeconds int64
	Genres       []StatCount
	AlbumArtists []StatCount
	Extensions   []StatCount
}
