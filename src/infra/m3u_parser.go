package infra

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/contre95/ferrum/src/features/playlists"
	"github.com/contre95/ferrum/src/music"
)

// M3UParserImpl implements the M3UParser interface
type M3UParserImpl struct{}

// NewM3UParser creates a new M3U parser
func NewM3UParser() playlists.M3UParser {
	return &M3UParserImpl{}
}

// ParseM3U reads an M3U file and extracts the track paths it lists.
func (p *M3UParserImpl) ParseM3U(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open M3U file: %w", err)
	}
	defer file.Close()

	dir := filepath.Dir(path)

	var paths []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Clean the path (remove quotes if present)
		entry := strings.Trim(line, "\"'")
		if entry == "" {
			continue
		}

		// Entries may be relative to the playlist file
		if !filepath.IsAbs(entry) {
			entry = filepath.Join(dir, entry)
		}
		paths = append(paths, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading M3U file: %w", err)
	}

	return paths, nil
}

// GenerateM3U renders tracks as extended M3U content.
func (p *M3UParserImpl) GenerateM3U(name string, tracks []*music.Track) string {
	var builder strings.Builder

	// Write M3U header
	builder.WriteString("#EXTM3U\n")
	if name != "" {
		builder.WriteString(fmt.Sprintf("#PLAYLIST:%s\n", name))
	}

	for _, track := range tracks {
		duration := track.DurationSeconds()
		if duration <= 0 {
			duration = -1 // Unknown duration
		}

		title := music.Deref(track.Title)
		if title == "" {
			title = filepath.Base(track.Path)
		}
		if artist := music.Deref(track.Artist); artist != "" {
			title = artist + " - " + title
		}

		builder.WriteString(fmt.Sprintf("#EXTINF:%d,%s\n", duration, title))
		builder.WriteString(track.Path)
		builder.WriteString("\n")
	}

	return builder.String()
}
