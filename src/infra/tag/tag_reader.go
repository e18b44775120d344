package tag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/contre95/ferrum/src/music"
	"github.com/dhowden/tag"
	goflac "github.com/go-flac/go-flac"
)

// TagReader reads file metadata using the dhowden/tag library.
type TagReader struct{}

// NewTagReader creates a new TagReader
func NewTagReader() *TagReader {
	return &TagReader{}
}

// ReadFileTags reads metadata from a music file. A file whose tags cannot be
// parsed still yields a track carrying its path and modification time, so the
// scanner does not re-read untagged files on every pass.
func (r *TagReader) ReadFileTags(ctx context.Context, filePath string) (*music.Track, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	track := &music.Track{
		Path:     filePath,
		Modified: music.Time(info.ModTime()),
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	tags, err := tag.ReadFrom(file)
	if err != nil {
		// Untagged file, keep the path-only track
		return track, nil
	}

	track.Title = nullable(tags.Title())
	track.Artist = nullable(tags.Artist())
	track.Genre = nullable(tags.Genre())
	track.Album = nullable(tags.Album())
	track.AlbumArtist = nullable(tags.AlbumArtist())

	trackNumber, trackTotal := tags.Track()
	track.Track = numberString(trackNumber)
	track.TrackTotal = numberString(trackTotal)

	discNumber, discTotal := tags.Disc()
	track.Disc = numberString(discNumber)
	track.DiscTotal = numberString(discTotal)

	if seconds := readDuration(filePath); seconds > 0 {
		track.Duration = music.Int64(seconds)
	}

	return track, nil
}

// ReadArtwork returns the embedded front cover image of a music file and its
// MIME type.
func (r *TagReader) ReadArtwork(ctx context.Context, filePath string) ([]byte, string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	tags, err := tag.ReadFrom(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read tags: %w", err)
	}

	pic := tags.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return nil, "", fmt.Errorf("no embedded artwork in %s", filepath.Base(filePath))
	}
	return pic.Data, pic.MIMEType, nil
}

// nullable maps empty tag values to absent columns
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// numberString stores tag numbers the way they arrive on disk, as text
func numberString(n int) *string {
	if n <= 0 {
		return nil
	}
	return music.String(strconv.Itoa(n))
}

// readDuration extracts the duration in seconds from the FLAC stream info
// block. MP3 and WAV tags carry no reliable duration, those stay unset.
func readDuration(filePath string) int64 {
	if strings.ToLower(filepath.Ext(filePath)) != ".flac" {
		return 0
	}
	f, err := goflac.ParseFile(filePath)
	if err != nil {
		return 0
	}
	info, err := f.GetStreamInfo()
	if err != nil || info.SampleRate <= 0 {
		return 0
	}
	return info.SampleCount / int64(info.SampleRate)
}
