package tagging

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/contre95/ferrum/src/music"
)

// TagChanges holds the field edits to apply to a file. Nil fields leave the
// file's current value in place.
type TagChanges struct {
	Title       *string
	Artist      *string
	Album       *string
	AlbumArtist *string
	Genre       *string
	Track       *string
	TrackTotal  *string
	Disc        *string
	DiscTotal   *string
}

// Empty reports whether the edit carries no changes.
func (c *TagChanges) Empty() bool {
	return c.Title == nil && c.Artist == nil && c.Album == nil &&
		c.AlbumArtist == nil && c.Genre == nil && c.Track == nil &&
		c.TrackTotal == nil && c.Disc == nil && c.DiscTotal == nil
}

// track converts the changes into the sparse track the tag writer expects.
func (c *TagChanges) track(path string) *music.Track {
	return &music.Track{
		Path:        path,
		Title:       c.Title,
		Artist:      c.Artist,
		Album:       c.Album,
		AlbumArtist: c.AlbumArtist,
		Genre:       c.Genre,
		Track:       c.Track,
		TrackTotal:  c.TrackTotal,
		Disc:        c.Disc,
		DiscTotal:   c.DiscTotal,
	}
}

// Service provides tag editing functionality
type Service struct {
	reader  TagReader
	writer  TagWriter
	covers  CoverCache
	catalog music.Catalog
	index   SearchIndex
}

// NewService creates a new tagging service.
func NewService(reader TagReader, writer TagWriter, covers CoverCache, catalog music.Catalog, index SearchIndex) *Service {
	return &Service{
		reader:  reader,
		writer:  writer,
		covers:  covers,
		catalog: catalog,
		index:   index,
	}
}

// ReadTags returns the file's current tags, read from disk rather than the
// catalog so pending external edits show up.
func (s *Service) ReadTags(ctx context.Context, path string) (*music.Track, error) {
	slog.Debug("ReadTags service called", "path", path)

	track, err := s.reader.ReadFileTags(ctx, path)
	if err != nil {
		slog.Error("ReadTags failed", "path", path, "error", err)
		return nil, err
	}
	return track, nil
}

// EditTags writes the changed fields into the file, re-reads the result and
// stores it, so file and catalog row never drift apart. The row id is stable
// because the upsert matches on path. Returns the stored track.
func (s *Service) EditTags(ctx context.Context, path string, changes *TagChanges) (*music.Track, error) {
	slog.Info("EditTags service called", "path", path)

	if changes == nil || changes.Empty() {
		return nil, fmt.Errorf("no tag changes given")
	}

	if err := s.writer.WriteFileTags(ctx, path, changes.track(path)); err != nil {
		slog.Error("EditTags: writing tags failed", "path", path, "error", err)
		return nil, fmt.Errorf("failed to write tags: %w", err)
	}

	track, err := s.reader.ReadFileTags(ctx, path)
	if err != nil {
		slog.Error("EditTags: re-reading tags failed", "path", path, "error", err)
		return nil, fmt.Errorf("failed to re-read tags: %w", err)
	}

	id, err := s.catalog.UpsertTrack(ctx, track)
	if err != nil {
		slog.Error("EditTags: storing track failed", "path", path, "error", err)
		return nil, fmt.Errorf("failed to store track: %w", err)
	}
	track.ID = id

	if s.index != nil {
		if err := s.index.IndexTracks([]*music.Track{track}); err != nil {
			slog.Warn("EditTags: reindex failed", "path", path, "error", err)
		}
	}

	slog.Info("EditTags completed", "path", path, "id", id)
	return track, nil
}

// SetArtwork embeds the image file as the track's front cover and refreshes
// the catalog row's stamp so the next scan does not re-read the file.
func (s *Service) SetArtwork(ctx context.Context, path, imagePath string) error {
	slog.Info("SetArtwork service called", "path", path, "image", imagePath)

	imgData, err := os.ReadFile(imagePath)
	if err != nil {
		slog.Error("SetArtwork: reading image failed", "image", imagePath, "error", err)
		return fmt.Errorf("failed to read image file: %w", err)
	}

	if err := s.writer.WriteArtwork(ctx, path, imgData); err != nil {
		slog.Error("SetArtwork: embedding failed", "path", path, "error", err)
		return fmt.Errorf("failed to embed artwork: %w", err)
	}

	track, err := s.reader.ReadFileTags(ctx, path)
	if err != nil {
		slog.Warn("SetArtwork: re-reading tags failed", "path", path, "error", err)
		return nil
	}
	if _, err := s.catalog.UpsertTrack(ctx, track); err != nil {
		slog.Warn("SetArtwork: refreshing catalog row failed", "path", path, "error", err)
	}

	slog.Info("SetArtwork completed", "path", path)
	return nil
}

// GetArtwork returns a path to the track's cover image, extracted from the
// file and resized to fit maxSize pixels when maxSize is positive.
func (s *Service) GetArtwork(ctx context.Context, path string, maxSize int) (string, error) {
	slog.Debug("GetArtwork service called", "path", path, "maxSize", maxSize)

	coverPath, err := s.covers.CoverFile(ctx, path, maxSize)
	if err != nil {
		slog.Error("GetArtwork failed", "path", path, "error", err)
		return "", err
	}
	return coverPath, nil
}
