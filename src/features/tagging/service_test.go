package tagging

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/contre95/ferrum/src/music"
)

type fakeReader struct {
	track *music.Track
	err   error
	calls int
}

func (r *fakeReader) ReadFileTags(ctx context.Context, filePath string) (*music.Track, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if r.track != nil {
		return r.track, nil
	}
	return &music.Track{Path: filePath}, nil
}

type fakeWriter struct {
	written  *music.Track
	artwork  []byte
	writeErr error
}

func (w *fakeWriter) WriteFileTags(ctx context.Context, filePath string, track *music.Track) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.written = track
	return nil
}

func (w *fakeWriter) WriteArtwork(ctx context.Context, filePath string, imgData []byte) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.artwork = imgData
	return nil
}

type fakeCovers struct {
	path    string
	maxSize int
	err     error
}

func (c *fakeCovers) CoverFile(ctx context.Context, audioPath string, maxSize int) (string, error) {
	c.maxSize = maxSize
	return c.path, c.err
}

type fakeIndex struct {
	indexed []*music.Track
}

func (i *fakeIndex) IndexTracks(tracks []*music.Track) error {
	i.indexed = append(i.indexed, tracks...)
	return nil
}

// MockCatalog implements music.Catalog for tests. Methods the tests never
// touch panic through the embedded interface.
type MockCatalog struct {
	music.Catalog
	stored    *music.Track
	upsertID  int64
	upsertErr error
}

func (m *MockCatalog) UpsertTrack(ctx context.Context, track *music.Track) (int64, error) {
	if m.upsertErr != nil {
		return 0, m.upsertErr
	}
	m.stored = track
	return m.upsertID, nil
}

func TestEditTags_WritesRereadsAndStores(t *testing.T) {
	onDisk := &music.Track{
		Path:   "/music/a.mp3",
		Title:  music.String("New Title"),
		Artist: music.String("Old Artist"),
	}
	reader := &fakeReader{track: onDisk}
	writer := &fakeWriter{}
	catalog := &MockCatalog{upsertID: 7}
	index := &fakeIndex{}
	svc := NewService(reader, writer, &fakeCovers{}, catalog, index)

	changes := &TagChanges{Title: music.String("New Title")}
	track, err := svc.EditTags(context.Background(), "/music/a.mp3", changes)
	if err != nil {
		t.Fatalf("EditTags returned error: %v", err)
	}

	if writer.written == nil || music.Deref(writer.written.Title) != "New Title" {
		t.Errorf("expected title change to reach the writer, got %+v", writer.written)
	}
	if writer.written.Artist != nil {
		t.Errorf("expected untouched fields to stay nil, got artist %q", *writer.written.Artist)
	}
	if track.ID != 7 {
		t.Errorf("expected stored row id on the track, got %d", track.ID)
	}
	if catalog.stored != onDisk {
		t.Errorf("expected the re-read track to be stored, got %+v", catalog.stored)
	}
	if len(index.indexed) != 1 || index.indexed[0] != onDisk {
		t.Errorf("expected the re-read track to be reindexed, got %v", index.indexed)
	}
}

func TestEditTags_RejectsEmptyChanges(t *testing.T) {
	writer := &fakeWriter{}
	svc := NewService(&fakeReader{}, writer, &fakeCovers{}, &MockCatalog{}, &fakeIndex{})

	if _, err := svc.EditTags(context.Background(), "/music/a.mp3", &TagChanges{}); err == nil {
		t.Fatal("expected error for empty changes")
	}
	if writer.written != nil {
		t.Error("expected no write for empty changes")
	}
}

func TestEditTags_WriteFailureSkipsStore(t *testing.T) {
	writeErr := errors.New("file locked")
	catalog := &MockCatalog{upsertID: 1}
	svc := NewService(&fakeReader{}, &fakeWriter{writeErr: writeErr}, &fakeCovers{}, catalog, &fakeIndex{})

	_, err := svc.EditTags(context.Background(), "/music/a.mp3", &TagChanges{Title: music.String("X")})
	if !errors.Is(err, writeErr) {
		t.Fatalf("expected write error, got %v", err)
	}
	if catalog.stored != nil {
		t.Error("expected no catalog write after a failed tag write")
	}
}

func TestSetArtwork_EmbedsImageAndRefreshesRow(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "cover.jpg")
	if err := os.WriteFile(imagePath, []byte("jpegbytes"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	writer := &fakeWriter{}
	catalog := &MockCatalog{upsertID: 3}
	svc := NewService(&fakeReader{}, writer, &fakeCovers{}, catalog, &fakeIndex{})

	if err := svc.SetArtwork(context.Background(), "/music/a.mp3", imagePath); err != nil {
		t.Fatalf("SetArtwork returned error: %v", err)
	}
	if string(writer.artwork) != "jpegbytes" {
		t.Errorf("expected image bytes to reach the writer, got %q", writer.artwork)
	}
	if catalog.stored == nil || catalog.stored.Path != "/music/a.mp3" {
		t.Errorf("expected catalog row refresh, got %+v", catalog.stored)
	}
}

func TestSetArtwork_MissingImageFile(t *testing.T) {
	svc := NewService(&fakeReader{}, &fakeWriter{}, &fakeCovers{}, &MockCatalog{}, &fakeIndex{})

	err := svc.SetArtwork(context.Background(), "/music/a.mp3", filepath.Join(t.TempDir(), "nope.png"))
	if err == nil {
		t.Fatal("expected error for missing image file")
	}
}

func TestGetArtwork_DelegatesToCache(t *testing.T) {
	covers := &fakeCovers{path: "/tmp/cache/abc.jpg"}
	svc := NewService(&fakeReader{}, &fakeWriter{}, covers, &MockCatalog{}, &fakeIndex{})

	path, err := svc.GetArtwork(context.Background(), "/music/a.mp3", 300)
	if err != nil {
		t.Fatalf("GetArtwork returned error: %v", err)
	}
	if path != "/tmp/cache/abc.jpg" {
		t.Errorf("unexpected cover path %q", path)
	}
	if covers.maxSize != 300 {
		t.Errorf("expected resize hint to reach the cache, got %d", covers.maxSize)
	}
}
