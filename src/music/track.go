package music

import (
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/unidecode"
)

// Track represents a single catalog row for an audio file. Every tag column
// is optional; optional fields are pointers so that an absent value and an
// empty string survive a round trip through storage unchanged.
type Track struct {
	ID          int64
	Path        string
	Title       *string
	Artist      *string
	Genre       *string
	Album       *string
	AlbumArtist *string
	Disc        *string
	DiscTotal   *string
	Track       *string
	TrackTotal  *string
	Duration    *int64
	Modified    *time.Time
}

// Validate validates the track fields a catalog row requires.
func (t *Track) Validate() error {
	if strings.TrimSpace(t.Path) == "" {
		return fmt.Errorf("track path cannot be empty: %w", ErrConstraintViolation)
	}
	return nil
}

// DisplayTitle returns the title, or "-" when the tag is absent.
func (t *Track) DisplayTitle() string {
	return orDash(t.Title)
}

// DisplayArtist returns the artist, or "-" when the tag is absent.
func (t *Track) DisplayArtist() string {
	return orDash(t.Artist)
}

// DisplayAlbum returns the album, or "-" when the tag is absent.
func (t *Track) DisplayAlbum() string {
	return orDash(t.Album)
}

// Number renders the position column of a track listing: "disc.track" when
// both tags are present, the zero-padded track number when only the track is
// known, empty otherwise.
func (t *Track) Number() string {
	switch {
	case t.Disc != nil && t.Track != nil:
		return fmt.Sprintf("%s.%s", *t.Disc, padNumber(*t.Track))
	case t.Track != nil:
		return padNumber(*t.Track)
	default:
		return ""
	}
}

// DurationSeconds returns the duration in whole seconds, zero when unknown.
func (t *Track) DurationSeconds() int64 {
	if t.Duration == nil {
		return 0
	}
	return *t.Duration
}

// MatchesFilter reports whether the query occurs in the track's album, title
// or artist. Matching is case-insensitive and accent-insensitive.
func (t *Track) MatchesFilter(query string) bool {
	if strings.TrimSpace(query) == "" {
		return true
	}
	haystack := fmt.Sprintf("%s %s %s", Deref(t.Album), Deref(t.Title), Deref(t.Artist))
	return strings.Contains(normalizeFilter(haystack), normalizeFilter(query))
}

// FilterTracks returns the tracks matching the query, preserving order.
func FilterTracks(tracks []*Track, query string) []*Track {
	if strings.TrimSpace(query) == "" {
		return tracks
	}
	var matched []*Track
	for _, t := range tracks {
		if t.MatchesFilter(query) {
			matched = append(matched, t)
		}
	}
	return matched
}

// String returns a pointer to s, for building optional tag fields.
func String(s string) *string {
	return &s
}

// Int64 returns a pointer to v, for building optional numeric fields.
func Int64(v int64) *int64 {
	return &v
}

// Time returns a pointer to t, for building optional timestamps.
func Time(t time.Time) *time.Time {
	return &t
}

// Deref returns the value behind an optional string, empty when absent.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func padNumber(n string) string {
	for len(n) < 2 {
		n = "0" + n
	}
	return n
}

// normalizeFilter folds accents and case so "Björk" matches "bjork".
func normalizeFilter(s string) string {
	return strings.TrimSpace(strings.ToLower(unidecode.Unidecode(s)))
}
