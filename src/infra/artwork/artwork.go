package artwork

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/contre95/ferrum/src/features/config"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

const cacheTTL = 24 * time.Hour

// Extractor pulls embedded cover art out of audio files.
type Extractor interface {
	ReadArtwork(ctx context.Context, filePath string) ([]byte, string, error)
}

// Service hands out cover images extracted from audio files, keeping resized
// copies in a temp-dir cache so repeated requests skip the decode work.
type Service struct {
	config   *config.Manager
	reader   Extractor
	cacheDir string
}

// NewService creates a new artwork service
func NewService(config *config.Manager, reader Extractor) *Service {
	return &Service{
		config:   config,
		reader:   reader,
		cacheDir: filepath.Join(os.TempDir(), "ferrum-artwork"),
	}
}

// CoverFile returns a path to the track's embedded cover image, scaled down
// to fit maxSize pixels when maxSize is positive. Results for an unchanged
// file are cached for 24 hours.
func (s *Service) CoverFile(ctx context.Context, audioPath string, maxSize int) (string, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat audio file: %w", err)
	}
	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	// Cache key covers the source path, its mtime and the requested size
	hash := md5.Sum([]byte(fmt.Sprintf("%s|%d|%d", audioPath, info.ModTime().UnixNano(), maxSize)))
	cacheKey := fmt.Sprintf("%x", hash)

	for _, ext := range []string{".jpg", ".png"} {
		cached := filepath.Join(s.cacheDir, cacheKey+ext)
		if info, err := os.Stat(cached); err == nil && time.Since(info.ModTime()) < cacheTTL {
			slog.Debug("Using cached artwork", "path", cached)
			return cached, nil
		}
	}

	data, mimeType, err := s.reader.ReadArtwork(ctx, audioPath)
	if err != nil {
		return "", err
	}

	ext := ".jpg"
	if maxSize > 0 {
		resized, err := s.resizeImage(data, maxSize)
		if err != nil {
			return "", fmt.Errorf("failed to resize artwork: %w", err)
		}
		data = resized
	} else if mimeType == "image/png" {
		ext = ".png"
	}

	cachePath := filepath.Join(s.cacheDir, cacheKey+ext)
	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write artwork cache: %w", err)
	}

	slog.Debug("Extracted artwork", "audioPath", audioPath, "path", cachePath, "size", len(data))
	return cachePath, nil
}

// PruneCache drops cached covers past their TTL and trims the cache down to
// the configured entry count, oldest first.
func (s *Service) PruneCache() {
	entries, err := os.ReadDir(s.cacheDir)
	if err != nil {
		return
	}

	type cacheFile struct {
		path string
		mod  time.Time
	}
	var files []cacheFile
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(s.cacheDir, entry.Name())
		if time.Since(info.ModTime()) > cacheTTL {
			os.Remove(path)
			continue
		}
		files = append(files, cacheFile{path: path, mod: info.ModTime()})
	}

	maxEntries := s.config.Get().Artwork.CacheEntries
	if maxEntries <= 0 || len(files) <= maxEntries {
		return
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod.After(files[j].mod) })
	for _, f := range files[maxEntries:] {
		os.Remove(f.path)
	}
	slog.Debug("Trimmed artwork cache", "removed", len(files)-maxEntries, "kept", maxEntries)
}

// resizeImage scales image data down to fit maxSize pixels on the longest side
func (s *Service) resizeImage(imgData []byte, maxSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		return nil, err
	}

	resized := resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Lanczos3)

	quality := s.config.Get().Artwork.EmbedQuality
	if quality <= 0 {
		quality = 85
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
