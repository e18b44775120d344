package stats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/contre95/ferrum/src/music"
)

// Service provides library statistics for display.
type Service struct {
	catalog music.Catalog
}

// NewService creates a new stats service.
func NewService(catalog music.Catalog) *Service {
	return &Service{catalog: catalog}
}

// GetStats returns catalog totals and distributions.
func (s *Service) GetStats(ctx context.Context) (*music.LibraryStats, error) {
	slog.Debug("GetStats service called")

	stats, err := s.catalog.GetStats(ctx)
	if err != nil {
		slog.Error("GetStats failed", "error", err)
		return nil, err
	}

	slog.Debug("GetStats completed", "tracks", stats.TotalTracks)
	return stats, nil
}

// FormatTotalDuration renders a library's playing time as h:mm:ss.
func FormatTotalDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	sec := seconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
}
