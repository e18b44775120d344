package artwork

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/contre95/ferrum/src/features/config"
)

type fakeExtractor struct {
	data  []byte
	mime  string
	calls int
}

func (f *fakeExtractor) ReadArtwork(ctx context.Context, filePath string) ([]byte, string, error) {
	f.calls++
	return f.data, f.mime, nil
}

func testPNG(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func newTestService(t *testing.T, extractor *fakeExtractor) *Service {
	t.Helper()
	manager := config.NewManager(&config.Config{
		Artwork: config.Artwork{EmbedMaxSize: 1200, EmbedQuality: 85, CacheEntries: 100},
	})
	service := NewService(manager, extractor)
	service.cacheDir = t.TempDir()
	return service
}

func touchAudioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.flac")
	if err := os.WriteFile(path, []byte("not really flac"), 0644); err != nil {
		t.Fatalf("failed to write audio stub: %v", err)
	}
	return path
}

func TestCoverFile_ExtractsAndCaches(t *testing.T) {
	extractor := &fakeExtractor{data: testPNG(t, 8), mime: "image/png"}
	service := newTestService(t, extractor)
	audioPath := touchAudioFile(t)

	first, err := service.CoverFile(context.Background(), audioPath, 0)
	if err != nil {
		t.Fatalf("CoverFile failed: %v", err)
	}
	if filepath.Ext(first) != ".png" {
		t.Errorf("expected png extension for unresized png cover, got %s", first)
	}

	second, err := service.CoverFile(context.Background(), audioPath, 0)
	if err != nil {
		t.Fatalf("CoverFile failed on cached call: %v", err)
	}
	if first != second {
		t.Errorf("expected cached path %s, got %s", first, second)
	}
	if extractor.calls != 1 {
		t.Errorf("expected a single extraction, got %d", extractor.calls)
	}
}

func TestCoverFile_ResizesToJPEG(t *testing.T) {
	extractor := &fakeExtractor{data: testPNG(t, 64), mime: "image/png"}
	service := newTestService(t, extractor)
	audioPath := touchAudioFile(t)

	path, err := service.CoverFile(context.Background(), audioPath, 16)
	if err != nil {
		t.Fatalf("CoverFile failed: %v", err)
	}
	if filepath.Ext(path) != ".jpg" {
		t.Errorf("expected resized covers to be jpeg, got %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read cover: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("resized cover is not valid jpeg: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > 16 || bounds.Dy() > 16 {
		t.Errorf("expected cover within 16px, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestCoverFile_DifferentSizesGetDifferentEntries(t *testing.T) {
	extractor := &fakeExtractor{data: testPNG(t, 64), mime: "image/png"}
	service := newTestService(t, extractor)
	audioPath := touchAudioFile(t)

	small, err := service.CoverFile(context.Background(), audioPath, 16)
	if err != nil {
		t.Fatalf("CoverFile failed: %v", err)
	}
	full, err := service.CoverFile(context.Background(), audioPath, 0)
	if err != nil {
		t.Fatalf("CoverFile failed: %v", err)
	}
	if small == full {
		t.Error("expected separate cache entries per requested size")
	}
	if extractor.calls != 2 {
		t.Errorf("expected two extractions, got %d", extractor.calls)
	}
}

func TestPruneCache_TrimsToConfiguredEntries(t *testing.T) {
	extractor := &fakeExtractor{data: testPNG(t, 8), mime: "image/png"}
	manager := config.NewManager(&config.Config{
		Artwork: config.Artwork{EmbedMaxSize: 1200, EmbedQuality: 85, CacheEntries: 2},
	})
	service := NewService(manager, extractor)
	service.cacheDir = t.TempDir()

	for i := 0; i < 4; i++ {
		name := filepath.Join(service.cacheDir, time.Now().Format("150405.000")+"-"+string(rune('a'+i))+".jpg")
		if err := os.WriteFile(name, []byte("img"), 0644); err != nil {
			t.Fatalf("failed to seed cache: %v", err)
		}
	}

	service.PruneCache()

	entries, err := os.ReadDir(service.cacheDir)
	if err != nil {
		t.Fatalf("failed to read cache dir: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected cache trimmed to 2 entries, got %d", len(entries))
	}
}
