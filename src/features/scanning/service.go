package scanning

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/contre95/ferrum/src/features/config"
	"github.com/contre95/ferrum/src/features/jobs"
	"github.com/contre95/ferrum/src/music"
)

// supportedExtensions are the audio formats a library scan picks up.
var supportedExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".wav":  true,
}

// Service handles library scanning operations.
type Service struct {
	catalog    music.Catalog
	reader     TagReader
	index      SearchIndex
	config     *config.Manager
	jobService jobs.JobService
	watcher    Watcher
	events     <-chan FileEvent
	watching   bool
}

// NewService creates a new scanning service.
func NewService(catalog music.Catalog, reader TagReader, index SearchIndex, cfg *config.Manager, jobService jobs.JobService, watcher Watcher, events <-chan FileEvent) *Service {
	return &Service{
		catalog:    catalog,
		reader:     reader,
		index:      index,
		config:     cfg,
		jobService: jobService,
		watcher:    watcher,
		events:     events,
	}
}

// Scan starts a background scan of the library path. A full scan re-reads
// every file, an incremental one skips tracks whose mtime is unchanged.
func (s *Service) Scan(ctx context.Context, full bool) (string, error) {
	libraryPath := s.config.Get().LibraryPath
	if _, err := os.Stat(libraryPath); err != nil {
		return "", fmt.Errorf("library path not accessible: %w", err)
	}

	jobID, err := s.jobService.StartJob("library_scan", "Library Scan", map[string]any{
		"path": libraryPath,
		"full": full,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start scan job: %w", err)
	}

	slog.Info("Library scan scheduled", "jobID", jobID, "path", libraryPath, "full", full)
	return jobID, nil
}

// Prune removes catalog entries whose files no longer exist on disk.
func (s *Service) Prune(ctx context.Context) (int, error) {
	missing, err := s.missingPaths(ctx)
	if err != nil {
		return 0, err
	}

	removed, err := s.catalog.RemoveMissing(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to prune catalog: %w", err)
	}

	if len(missing) > 0 {
		if err := s.index.DeletePaths(missing); err != nil {
			slog.Warn("Failed to drop pruned tracks from search index", "error", err)
		}
	}
	if removed > 0 {
		slog.Info("Pruned missing tracks", "count", removed)
	}
	return removed, nil
}

// missingPaths lists stored paths that no longer resolve to a file.
func (s *Service) missingPaths(ctx context.Context) ([]string, error) {
	stamps, err := s.catalog.GetTrackPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load known paths: %w", err)
	}
	var missing []string
	for path := range stamps {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			missing = append(missing, path)
		}
	}
	return missing, nil
}

// StartWatching monitors the library path and schedules an incremental scan
// once changes settle.
func (s *Service) StartWatching(ctx context.Context) error {
	if s.watcher == nil {
		return fmt.Errorf("no watcher configured")
	}
	if s.watching {
		return nil
	}

	libraryPath := s.config.Get().LibraryPath
	if err := s.watcher.Start(ctx, libraryPath); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	s.watching = true

	go s.consumeEvents(ctx)

	slog.Info("Watching library for changes", "path", libraryPath)
	return nil
}

// StopWatching stops the library watcher.
func (s *Service) StopWatching() {
	if s.watcher != nil && s.watching {
		s.watcher.Stop()
		s.watching = false
	}
}

func (s *Service) consumeEvents(ctx context.Context) {
	for {
		select {
		case event := <-s.events:
			slog.Info("Library changed", "path", event.Path, "event", event.EventType)
			if _, err := s.Scan(ctx, false); err != nil {
				slog.Error("Failed to schedule scan after library change", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
