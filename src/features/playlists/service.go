package playlists

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/contre95/ferrum/src/music"
)

// Service is the domain service for the playlists feature.
type Service struct {
	catalog music.Catalog
	queue   Queue
	parser  M3UParser
}

// NewService creates a new playlists service.
func NewService(catalog music.Catalog, queue Queue, parser M3UParser) *Service {
	return &Service{
		catalog: catalog,
		queue:   queue,
		parser:  parser,
	}
}

// ExportQueue writes the current queue to an M3U file and returns how many
// tracks it wrote.
func (s *Service) ExportQueue(ctx context.Context, path string) (int, error) {
	slog.Debug("ExportQueue service called", "path", path)

	tracks := s.queue.QueueTracks()
	content := s.parser.GenerateM3U(s.queue.QueueName(), tracks)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		slog.Error("ExportQueue failed", "path", path, "error", err)
		return 0, fmt.Errorf("failed to write M3U file: %w", err)
	}

	slog.Debug("ExportQueue completed", "path", path, "tracks", len(tracks))
	return len(tracks), nil
}

// LoadIntoQueue reads an M3U file, resolves its entries against the catalog
// and appends the matches to the queue. Entries not in the catalog are logged
// and skipped. When the queue was empty it takes the playlist file's name.
// Returns the number of tracks appended.
func (s *Service) LoadIntoQueue(ctx context.Context, path string) (int, error) {
	slog.Debug("LoadIntoQueue service called", "path", path)

	entries, err := s.parser.ParseM3U(path)
	if err != nil {
		slog.Error("LoadIntoQueue failed", "path", path, "error", err)
		return 0, err
	}

	wasEmpty := s.queue.QueueLen() == 0

	var loaded []*music.Track
	for _, entry := range entries {
		track, err := s.catalog.FindTrackByPath(ctx, entry)
		if err != nil {
			slog.Warn("LoadIntoQueue: entry not in catalog, skipping", "path", entry, "error", err)
			continue
		}
		loaded = append(loaded, track)
	}

	if len(loaded) == 0 {
		slog.Debug("LoadIntoQueue completed", "path", path, "entries", len(entries), "loaded", 0)
		return 0, nil
	}

	s.queue.AppendAll(loaded)
	if wasEmpty {
		s.queue.SetQueueName(playlistName(path))
	}

	slog.Debug("LoadIntoQueue completed", "path", path, "entries", len(entries), "loaded", len(loaded))
	return len(loaded), nil
}

// playlistName derives a queue name from the playlist file name.
func playlistName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
