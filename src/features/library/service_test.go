package library

import (
	"context"
	"errors"
	"testing"

	"github.com/contre95/ferrum/src/music"
)

// MockCatalog is a mock implementation of music.Catalog
type MockCatalog struct {
	music.Catalog // Embed interface to avoid implementing all methods, will panic if unused methods called
	tracksByPath  map[string]*music.Track
	tracksByID    map[int64]*music.Track
}

func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		tracksByPath: make(map[string]*music.Track),
		tracksByID:   make(map[int64]*music.Track),
	}
}

func (m *MockCatalog) add(track *music.Track) {
	m.tracksByPath[track.Path] = track
	m.tracksByID[track.ID] = track
}

func (m *MockCatalog) GetAllTracks(ctx context.Context) ([]*music.Track, error) {
	tracks := make([]*music.Track, 0, len(m.tracksByPath))
	for _, track := range m.tracksByPath {
		tracks = append(tracks, track)
	}
	return tracks, nil
}

func (m *MockCatalog) GetTrack(ctx context.Context, id int64) (*music.Track, error) {
	if track, ok := m.tracksByID[id]; ok {
		return track, nil
	}
	return nil, music.ErrTrackNotFound
}

func (m *MockCatalog) FindTrackByPath(ctx context.Context, path string) (*music.Track, error) {
	if track, ok := m.tracksByPath[path]; ok {
		return track, nil
	}
	return nil, music.ErrTrackNotFound
}

func (m *MockCatalog) GetTracksCount(ctx context.Context) (int, error) {
	return len(m.tracksByPath), nil
}

// mockSearcher returns a fixed list of paths for any query.
type mockSearcher struct {
	paths []string
	err   error
	query string
}

func (m *mockSearcher) Search(query string, limit int) ([]string, error) {
	m.query = query
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && len(m.paths) > limit {
		return m.paths[:limit], nil
	}
	return m.paths, nil
}

func TestSearch_ResolvesHitsToTracks(t *testing.T) {
	catalog := NewMockCatalog()
	catalog.add(&music.Track{ID: 1, Path: "/m/a.mp3", Title: music.String("Alpha")})
	catalog.add(&music.Track{ID: 2, Path: "/m/b.mp3", Title: music.String("Beta")})
	searcher := &mockSearcher{paths: []string{"/m/b.mp3", "/m/a.mp3"}}

	service := NewService(catalog, searcher, nil)
	tracks, err := service.Search(context.Background(), "beta", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(tracks) != 2 {
		t.Fatalf("Search() returned %d tracks, want 2", len(tracks))
	}
	if tracks[0].ID != 2 || tracks[1].ID != 1 {
		t.Errorf("Search() order = [%d, %d], want [2, 1]", tracks[0].ID, tracks[1].ID)
	}
	if searcher.query != "beta" {
		t.Errorf("searcher received query %q, want %q", searcher.query, "beta")
	}
}

func TestSearch_SkipsStaleIndexEntries(t *testing.T) {
	catalog := NewMockCatalog()
	catalog.add(&music.Track{ID: 1, Path: "/m/a.mp3"})
	searcher := &mockSearcher{paths: []string{"/m/removed.mp3", "/m/a.mp3"}}

	service := NewService(catalog, searcher, nil)
	tracks, err := service.Search(context.Background(), "anything", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(tracks) != 1 || tracks[0].ID != 1 {
		t.Errorf("Search() = %d tracks, want only the surviving one", len(tracks))
	}
}

func TestSearch_PropagatesIndexErrors(t *testing.T) {
	catalog := NewMockCatalog()
	searcher := &mockSearcher{err: errors.New("index unavailable")}

	service := NewService(catalog, searcher, nil)
	if _, err := service.Search(context.Background(), "q", 10); err == nil {
		t.Fatal("Search() expected error from searcher")
	}
}

func TestGetTrack_NotFound(t *testing.T) {
	service := NewService(NewMockCatalog(), &mockSearcher{}, nil)

	_, err := service.GetTrack(context.Background(), 42)
	if !errors.Is(err, music.ErrTrackNotFound) {
		t.Fatalf("GetTrack() error = %v, want ErrTrackNotFound", err)
	}
}

func TestGetTracksCount(t *testing.T) {
	catalog := NewMockCatalog()
	catalog.add(&music.Track{ID: 1, Path: "/m/a.mp3"})
	catalog.add(&music.Track{ID: 2, Path: "/m/b.mp3"})

	service := NewService(catalog, &mockSearcher{}, nil)
	count, err := service.GetTracksCount(context.Background())
	if err != nil {
		t.Fatalf("GetTracksCount() error = %v", err)
	}
	if count != 2 {
		t.Errorf("GetTracksCount() = %d, want 2", count)
	}
}
