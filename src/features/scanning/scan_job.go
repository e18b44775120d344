package scanning

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/contre95/ferrum/src/features/jobs"
	"github.com/contre95/ferrum/src/music"
)

// ScanStats tracks counters for a single library scan.
type ScanStats struct {
	Scanned int `json:"scanned"`
	Stored  int `json:"stored"`
	Skipped int `json:"skipped"`
	Removed int `json:"removed"`
	Errors  int `json:"errors"`
}

// ScanTask handles library scan job processing.
type ScanTask struct {
	service *Service
}

// NewScanTask creates a new scan task handler.
func NewScanTask(service *Service) *ScanTask {
	return &ScanTask{service: service}
}

// MetadataKeys returns the metadata keys required by scan jobs.
func (h *ScanTask) MetadataKeys() []string {
	return []string{"path"}
}

// Execute runs the library scan job.
func (h *ScanTask) Execute(ctx context.Context, job *jobs.Job, progressUpdater func(int, string)) (map[string]any, error) {
	path, _ := job.Metadata["path"].(string)
	full, _ := job.Metadata["full"].(bool)

	stats := &ScanStats{}
	err := h.service.runScan(ctx, path, full, stats, job, progressUpdater)

	if ctx.Err() != nil {
		message := fmt.Sprintf("Scan cancelled after %d files", stats.Scanned)
		job.Logger.Info(message)
		return map[string]any{"stats": stats, "msg": message}, ctx.Err()
	}
	if err != nil {
		job.Logger.Error("Scan failed", "error", err)
		return map[string]any{"stats": stats}, err
	}

	finalMessage := fmt.Sprintf("Scan completed. %d files read (%d stored, %d skipped, %d removed, %d errors)",
		stats.Scanned, stats.Stored, stats.Skipped, stats.Removed, stats.Errors)
	job.Logger.Info(finalMessage)
	return map[string]any{"stats": stats, "msg": finalMessage}, nil
}

// Cleanup is a no-op for scan jobs.
func (h *ScanTask) Cleanup(job *jobs.Job) error {
	return nil
}

// runScan walks the library, refreshes the catalog and keeps the search
// index in step.
func (s *Service) runScan(ctx context.Context, root string, full bool, stats *ScanStats, job *jobs.Job, progressUpdater func(int, string)) error {
	var stamps map[string]music.TrackStamp
	if !full {
		var err error
		stamps, err = s.catalog.GetTrackPaths(ctx)
		if err != nil {
			return fmt.Errorf("failed to load known paths: %w", err)
		}
	}

	totalFiles := countSupportedFiles(root)
	job.Logger.Info("Scanning library", "path", root, "files", totalFiles, "full", full)

	var batch []*music.Track
	processed := 0
	walkErr := walkLibrary(root, map[string]bool{}, func(path string, info fs.FileInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		processed++
		stats.Scanned++

		if !full {
			if stamp, ok := stamps[path]; ok && stamp.Modified != nil && stamp.Modified.Unix() == info.ModTime().Unix() {
				stats.Skipped++
				job.Logger.Info("Unchanged, skipping", "file", filepath.Base(path), "color", "orange")
				return nil
			}
		}

		track, err := s.reader.ReadFileTags(ctx, path)
		if err != nil {
			stats.Errors++
			job.Logger.Warn("Failed to read tags", "file", filepath.Base(path), "error", err)
			return nil
		}
		batch = append(batch, track)
		job.Logger.Info("Read track", "title", track.DisplayTitle(), "color", "green")

		if totalFiles > 0 {
			progress := (processed * 100) / totalFiles
			if progress > 100 {
				progress = 100
			}
			progressUpdater(progress, "Scanned: "+filepath.Base(path))
		}
		return nil
	})
	if walkErr != nil {
		return walkErr
	}

	if len(batch) > 0 {
		stored, err := s.catalog.UpsertTracks(ctx, batch)
		if err != nil {
			return fmt.Errorf("failed to store tracks: %w", err)
		}
		stats.Stored = stored
	}

	if s.config.Get().Scanner.Prune {
		missing, err := s.missingPaths(ctx)
		if err != nil {
			return err
		}
		removed, err := s.catalog.RemoveMissing(ctx)
		if err != nil {
			return fmt.Errorf("failed to prune catalog: %w", err)
		}
		stats.Removed = removed
		if len(missing) > 0 {
			if err := s.index.DeletePaths(missing); err != nil {
				job.Logger.Warn("Failed to drop pruned tracks from search index", "error", err)
			}
		}
		if removed > 0 {
			job.Logger.Info("Pruned missing tracks", "count", removed, "color", "violet")
		}
	}

	if err := s.reindex(ctx, full, batch, job); err != nil {
		return err
	}

	progressUpdater(100, "Scan completed")
	return nil
}

// reindex pushes scan results into the search index. Full scans rebuild the
// whole index so stale documents cannot survive.
func (s *Service) reindex(ctx context.Context, full bool, batch []*music.Track, job *jobs.Job) error {
	if full {
		tracks, err := s.catalog.GetAllTracks(ctx)
		if err != nil {
			return fmt.Errorf("failed to list tracks for indexing: %w", err)
		}
		if err := s.index.RebuildFrom(tracks); err != nil {
			return fmt.Errorf("failed to rebuild search index: %w", err)
		}
		job.Logger.Info("Search index rebuilt", "tracks", len(tracks), "color", "cyan")
		return nil
	}

	if len(batch) == 0 {
		return nil
	}
	if err := s.index.IndexTracks(batch); err != nil {
		return fmt.Errorf("failed to update search index: %w", err)
	}
	job.Logger.Info("Search index updated", "tracks", len(batch), "color", "cyan")
	return nil
}
