package playlists

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/contre95/ferrum/src/music"
)

// MockCatalog implements music.Catalog for tests. Methods the tests never
// touch panic through the embedded interface.
type MockCatalog struct {
	music.Catalog
	tracksByPath map[string]*music.Track
}

func newMockCatalog(tracks ...*music.Track) *MockCatalog {
	m := &MockCatalog{tracksByPath: make(map[string]*music.Track)}
	for _, track := range tracks {
		m.tracksByPath[track.Path] = track
	}
	return m
}

func (m *MockCatalog) FindTrackByPath(ctx context.Context, path string) (*music.Track, error) {
	track, ok := m.tracksByPath[path]
	if !ok {
		return nil, music.ErrTrackNotFound
	}
	return track, nil
}

type fakeQueue struct {
	tracks []*music.Track
	name   string
}

func (q *fakeQueue) QueueTracks() []*music.Track {
	return append([]*music.Track(nil), q.tracks...)
}

func (q *fakeQueue) QueueLen() int            { return len(q.tracks) }
func (q *fakeQueue) QueueName() string        { return q.name }
func (q *fakeQueue) SetQueueName(name string) { q.name = name }

func (q *fakeQueue) AppendAll(tracks []*music.Track) {
	q.tracks = append(q.tracks, tracks...)
}

// fakeParser serves canned entries and renders tracks as bare path lines.
type fakeParser struct {
	entries  []string
	parseErr error

	generatedName string
}

func (p *fakeParser) ParseM3U(path string) ([]string, error) {
	if p.parseErr != nil {
		return nil, p.parseErr
	}
	return p.entries, nil
}

func (p *fakeParser) GenerateM3U(name string, tracks []*music.Track) string {
	p.generatedName = name
	lines := make([]string, len(tracks))
	for i, track := range tracks {
		lines[i] = track.Path
	}
	return strings.Join(lines, "\n")
}

func TestExportQueue_WritesQueueToFile(t *testing.T) {
	queue := &fakeQueue{
		name: "Evening",
		tracks: []*music.Track{
			{ID: 1, Path: "/music/a.mp3"},
			{ID: 2, Path: "/music/b.mp3"},
		},
	}
	parser := &fakeParser{}
	svc := NewService(newMockCatalog(), queue, parser)

	path := filepath.Join(t.TempDir(), "queue.m3u")
	count, err := svc.ExportQueue(context.Background(), path)
	if err != nil {
		t.Fatalf("ExportQueue returned error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 exported tracks, got %d", count)
	}
	if parser.generatedName != "Evening" {
		t.Errorf("expected queue name to reach the generator, got %q", parser.generatedName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading exported file: %v", err)
	}
	if string(data) != "/music/a.mp3\n/music/b.mp3" {
		t.Errorf("unexpected file content: %q", data)
	}
}

func TestExportQueue_FailsOnUnwritablePath(t *testing.T) {
	svc := NewService(newMockCatalog(), &fakeQueue{}, &fakeParser{})

	path := filepath.Join(t.TempDir(), "missing", "queue.m3u")
	if _, err := svc.ExportQueue(context.Background(), path); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
}

func TestLoadIntoQueue_AppendsResolvedTracks(t *testing.T) {
	known := &music.Track{ID: 1, Path: "/music/a.mp3"}
	queue := &fakeQueue{name: "Queue"}
	parser := &fakeParser{entries: []string{"/music/a.mp3", "/music/gone.mp3"}}
	svc := NewService(newMockCatalog(known), queue, parser)

	count, err := svc.LoadIntoQueue(context.Background(), "/playlists/mix.m3u")
	if err != nil {
		t.Fatalf("LoadIntoQueue returned error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 loaded track, got %d", count)
	}
	if len(queue.tracks) != 1 || queue.tracks[0] != known {
		t.Fatalf("expected queue to hold the resolved track, got %v", queue.tracks)
	}
	if queue.name != "mix" {
		t.Errorf("expected empty queue to take the playlist name, got %q", queue.name)
	}
}

func TestLoadIntoQueue_KeepsNameWhenQueueNotEmpty(t *testing.T) {
	known := &music.Track{ID: 1, Path: "/music/a.mp3"}
	queue := &fakeQueue{name: "Queue", tracks: []*music.Track{{ID: 9, Path: "/music/z.mp3"}}}
	parser := &fakeParser{entries: []string{"/music/a.mp3"}}
	svc := NewService(newMockCatalog(known), queue, parser)

	if _, err := svc.LoadIntoQueue(context.Background(), "/playlists/mix.m3u"); err != nil {
		t.Fatalf("LoadIntoQueue returned error: %v", err)
	}
	if queue.name != "Queue" {
		t.Errorf("expected queue name to stay, got %q", queue.name)
	}
	if len(queue.tracks) != 2 {
		t.Errorf("expected 2 queued tracks, got %d", len(queue.tracks))
	}
}

func TestLoadIntoQueue_NoMatchesLeavesQueueAlone(t *testing.T) {
	queue := &fakeQueue{name: "Queue"}
	parser := &fakeParser{entries: []string{"/music/gone.mp3"}}
	svc := NewService(newMockCatalog(), queue, parser)

	count, err := svc.LoadIntoQueue(context.Background(), "/playlists/mix.m3u")
	if err != nil {
		t.Fatalf("LoadIntoQueue returned error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no loaded tracks, got %d", count)
	}
	if len(queue.tracks) != 0 {
		t.Errorf("expected queue to stay empty, got %d tracks", len(queue.tracks))
	}
	if queue.name != "Queue" {
		t.Errorf("expected queue name to stay, got %q", queue.name)
	}
}

func TestLoadIntoQueue_PropagatesParseErrors(t *testing.T) {
	parseErr := errors.New("corrupt playlist")
	queue := &fakeQueue{}
	svc := NewService(newMockCatalog(), queue, &fakeParser{parseErr: parseErr})

	_, err := svc.LoadIntoQueue(context.Background(), "/playlists/mix.m3u")
	if !errors.Is(err, parseErr) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if len(queue.tracks) != 0 {
		t.Errorf("expected queue untouched on parse failure, got %d tracks", len(queue.tracks))
	}
}
