package library

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/contre95/ferrum/src/features/config"
	"github.com/contre95/ferrum/src/music"
)

// Searcher resolves a free-text query to catalog paths, best match first.
type Searcher interface {
	Search(query string, limit int) ([]string, error)
}

// Service is the domain service for the library feature.
type Service struct {
	catalog       music.Catalog
	searcher      Searcher
	configManager *config.Manager
}

// NewService creates a new library service.
func NewService(catalog music.Catalog, searcher Searcher, cfgManager *config.Manager) *Service {
	return &Service{
		catalog:       catalog,
		searcher:      searcher,
		configManager: cfgManager,
	}
}

// GetAllTracks returns every track in album, disc, track order.
func (s *Service) GetAllTracks(ctx context.Context) ([]*music.Track, error) {
	slog.Debug("GetAllTracks service called")
	tracks, err := s.catalog.GetAllTracks(ctx)
	if err != nil {
		slog.Error("GetAllTracks failed", "error", err)
		return nil, err
	}
	slog.Debug("GetAllTracks completed", "count", len(tracks))
	return tracks, nil
}

// GetTrack returns a single track by catalog id.
func (s *Service) GetTrack(ctx context.Context, id int64) (*music.Track, error) {
	slog.Debug("GetTrack service called", "id", id)
	track, err := s.catalog.GetTrack(ctx, id)
	if err != nil {
		slog.Error("GetTrack failed", "id", id, "error", err)
		return nil, err
	}
	return track, nil
}

// FindTrackByPath returns the track stored under the given file path.
func (s *Service) FindTrackByPath(ctx context.Context, path string) (*music.Track, error) {
	slog.Debug("FindTrackByPath service called", "path", path)
	track, err := s.catalog.FindTrackByPath(ctx, path)
	if err != nil {
		slog.Error("FindTrackByPath failed", "path", path, "error", err)
		return nil, err
	}
	return track, nil
}

// GetTracksCount returns the total count of tracks in the catalog.
func (s *Service) GetTracksCount(ctx context.Context) (int, error) {
	slog.Debug("GetTracksCount service called")
	count, err := s.catalog.GetTracksCount(ctx)
	if err != nil {
		slog.Error("GetTracksCount failed", "error", err)
		return 0, err
	}
	return count, nil
}

// Search runs the query through the full-text index and resolves the hits
// back to catalog rows. Paths that left the catalog since the last index
// rebuild are skipped.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*music.Track, error) {
	slog.Debug("Search service called", "query", query, "limit", limit)
	paths, err := s.searcher.Search(query, limit)
	if err != nil {
		slog.Error("Search failed", "query", query, "error", err)
		return nil, err
	}

	tracks := make([]*music.Track, 0, len(paths))
	for _, path := range paths {
		track, err := s.catalog.FindTrackByPath(ctx, path)
		if err != nil {
			slog.Debug("Search hit no longer in catalog", "path", path)
			continue
		}
		tracks = append(tracks, track)
	}
	slog.Debug("Search completed", "query", query, "count", len(tracks))
	return tracks, nil
}

// GetLibraryFileTree returns a tree structure of the library path.
func (s *Service) GetLibraryFileTree() (string, error) {
	libraryPath := s.configManager.Get().LibraryPath
	return s.getFileTree(libraryPath)
}

// getFileTree renders the directory layout with the external tree command.
func (s *Service) getFileTree(path string) (string, error) {
	cmd := exec.Command("tree", path)
	output, err := cmd.Output()
	if err != nil {
		slog.Error("Failed to execute tree command", "error", err)
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("failed to run tree command: %s. Is 'tree' installed on your system?", exitErr.Stderr)
		}
		return "", err
	}
	return string(output), nil
}
