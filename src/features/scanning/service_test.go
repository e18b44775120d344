package scanning

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/contre95/ferrum/src/features/config"
	"github.com/contre95/ferrum/src/features/jobs"
	"github.com/contre95/ferrum/src/music"
)

// fakeCatalog is an in-memory music.Catalog for feature tests.
type fakeCatalog struct {
	mu      sync.Mutex
	tracks  map[string]*music.Track
	nextID  int64
	upserts int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{tracks: map[string]*music.Track{}}
}

func (c *fakeCatalog) seed(track *music.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeLocked(track)
}

func (c *fakeCatalog) storeLocked(track *music.Track) {
	if existing, ok := c.tracks[track.Path]; ok {
		track.ID = existing.ID
	} else {
		c.nextID++
		track.ID = c.nextID
	}
	c.tracks[track.Path] = track
}

func (c *fakeCatalog) UpsertTrack(ctx context.Context, track *music.Track) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeLocked(track)
	return track.ID, nil
}

func (c *fakeCatalog) UpsertTracks(ctx context.Context, tracks []*music.Track) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, track := range tracks {
		c.storeLocked(track)
	}
	c.upserts++
	return len(tracks), nil
}

func (c *fakeCatalog) GetAllTracks(ctx context.Context) ([]*music.Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	all := make([]*music.Track, 0, len(c.tracks))
	for _, track := range c.tracks {
		all = append(all, track)
	}
	return all, nil
}

func (c *fakeCatalog) GetTrack(ctx context.Context, id int64) (*music.Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, track := range c.tracks {
		if track.ID == id {
			return track, nil
		}
	}
	return nil, music.ErrTrackNotFound
}

func (c *fakeCatalog) FindTrackByPath(ctx context.Context, path string) (*music.Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if track, ok := c.tracks[path]; ok {
		return track, nil
	}
	return nil, music.ErrTrackNotFound
}

func (c *fakeCatalog) GetTrackPaths(ctx context.Context) (map[string]music.TrackStamp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stamps := make(map[string]music.TrackStamp, len(c.tracks))
	for path, track := range c.tracks {
		stamps[path] = music.TrackStamp{ID: track.ID, Modified: track.Modified}
	}
	return stamps, nil
}

func (c *fakeCatalog) RemoveMissing(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for path := range c.tracks {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			delete(c.tracks, path)
			removed++
		}
	}
	return removed, nil
}

func (c *fakeCatalog) GetTracksCount(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tracks), nil
}

func (c *fakeCatalog) GetStats(ctx context.Context) (*music.LibraryStats, error) {
	return &music.LibraryStats{}, nil
}

func (c *fakeCatalog) Close() error { return nil }

func (c *fakeCatalog) trackCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tracks)
}

func (c *fakeCatalog) hasPath(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.tracks[path]
	return ok
}

// fakeReader builds tracks from the file name instead of real tags.
type fakeReader struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (r *fakeReader) ReadFileTags(ctx context.Context, filePath string) (*music.Track, error) {
	r.mu.Lock()
	r.calls = append(r.calls, filePath)
	failErr := r.fail[filePath]
	r.mu.Unlock()
	if failErr != nil {
		return nil, failErr
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	return &music.Track{
		Path:     filePath,
		Title:    music.String(title),
		Modified: music.Time(info.ModTime()),
	}, nil
}

func (r *fakeReader) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// fakeIndex records index traffic and signals every write.
type fakeIndex struct {
	mu      sync.Mutex
	indexed []string
	deleted []string
	rebuilt [][]string
	signal  chan struct{}
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{signal: make(chan struct{}, 8)}
}

func (i *fakeIndex) IndexTracks(tracks []*music.Track) error {
	i.mu.Lock()
	for _, track := range tracks {
		i.indexed = append(i.indexed, track.Path)
	}
	i.mu.Unlock()
	i.signal <- struct{}{}
	return nil
}

func (i *fakeIndex) DeletePaths(paths []string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.deleted = append(i.deleted, paths...)
	return nil
}

func (i *fakeIndex) RebuildFrom(tracks []*music.Track) error {
	paths := make([]string, 0, len(tracks))
	for _, track := range tracks {
		paths = append(paths, track.Path)
	}
	i.mu.Lock()
	i.rebuilt = append(i.rebuilt, paths)
	i.mu.Unlock()
	i.signal <- struct{}{}
	return nil
}

func (i *fakeIndex) deletedPaths() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.deleted...)
}

func (i *fakeIndex) indexedPaths() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.indexed...)
}

func (i *fakeIndex) lastRebuild() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.rebuilt) == 0 {
		return nil
	}
	return i.rebuilt[len(i.rebuilt)-1]
}

// fakeWatcher records lifecycle calls.
type fakeWatcher struct {
	mu      sync.Mutex
	started bool
	stopped bool
	path    string
}

func (w *fakeWatcher) Start(ctx context.Context, watchPath string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.started = true
	w.path = watchPath
	return nil
}

func (w *fakeWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
}

type scanFixture struct {
	svc     *Service
	jobs    *jobs.Service
	catalog *fakeCatalog
	reader  *fakeReader
	index   *fakeIndex
	root    string
}

func newScanFixture(t *testing.T) *scanFixture {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("resolve temp dir: %v", err)
	}

	catalog := newFakeCatalog()
	reader := &fakeReader{fail: map[string]error{}}
	index := newFakeIndex()
	cfg := config.NewManager(&config.Config{
		LibraryPath: root,
		Scanner:     config.Scanner{Prune: true},
	})
	jobService := jobs.NewService(&config.Jobs{})

	svc := NewService(catalog, reader, index, cfg, jobService, nil, nil)
	jobService.RegisterHandler("library_scan", jobs.NewBaseTaskHandler(NewScanTask(svc)))

	return &scanFixture{svc: svc, jobs: jobService, catalog: catalog, reader: reader, index: index, root: root}
}

func writeAudio(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("not really audio"), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func waitSignal(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for index update")
	}
}

func TestScan_RunsJobAndRebuildsIndex(t *testing.T) {
	f := newScanFixture(t)
	one := writeAudio(t, f.root, "one.mp3")
	two := writeAudio(t, f.root, "two.flac")

	jobID, err := f.svc.Scan(context.Background(), true)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if jobID == "" {
		t.Fatal("Scan() returned empty job id")
	}
	if _, ok := f.jobs.GetJob(jobID); !ok {
		t.Errorf("job %s not tracked by the job service", jobID)
	}

	waitSignal(t, f.index.signal)

	if got := f.catalog.trackCount(); got != 2 {
		t.Errorf("catalog has %d tracks, want 2", got)
	}
	if !f.catalog.hasPath(one) || !f.catalog.hasPath(two) {
		t.Errorf("catalog is missing scanned paths")
	}
	if got := len(f.index.lastRebuild()); got != 2 {
		t.Errorf("index rebuilt with %d tracks, want 2", got)
	}
}

func TestScan_FailsWhenLibraryPathMissing(t *testing.T) {
	f := newScanFixture(t)
	cfg := *f.svc.config.Get()
	cfg.LibraryPath = filepath.Join(f.root, "does-not-exist")
	f.svc.config.Update(&cfg)

	if _, err := f.svc.Scan(context.Background(), false); err == nil {
		t.Fatal("Scan() expected error for missing library path")
	}
}

func TestPrune_RemovesMissingAndSyncsIndex(t *testing.T) {
	f := newScanFixture(t)
	kept := writeAudio(t, f.root, "kept.mp3")
	ghost := filepath.Join(f.root, "gone.mp3")
	f.catalog.seed(&music.Track{Path: kept})
	f.catalog.seed(&music.Track{Path: ghost})

	removed, err := f.svc.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Prune() removed %d, want 1", removed)
	}
	if f.catalog.hasPath(ghost) {
		t.Error("pruned track still in catalog")
	}
	if !f.catalog.hasPath(kept) {
		t.Error("existing track was pruned")
	}
	deleted := f.index.deletedPaths()
	if len(deleted) != 1 || deleted[0] != ghost {
		t.Errorf("index deletions = %v, want [%s]", deleted, ghost)
	}
}

func TestStartWatching_EventSchedulesIncrementalScan(t *testing.T) {
	f := newScanFixture(t)
	track := writeAudio(t, f.root, "new.mp3")

	events := make(chan FileEvent, 1)
	watcher := &fakeWatcher{}
	f.svc.watcher = watcher
	f.svc.events = events

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := f.svc.StartWatching(ctx); err != nil {
		t.Fatalf("StartWatching() error = %v", err)
	}
	defer f.svc.StopWatching()

	watcher.mu.Lock()
	started, path := watcher.started, watcher.path
	watcher.mu.Unlock()
	if !started || path != f.root {
		t.Fatalf("watcher started=%v path=%q, want true %q", started, path, f.root)
	}

	events <- FileEvent{Path: f.root, EventType: FileCreated, Timestamp: time.Now()}

	waitSignal(t, f.index.signal)

	if got := f.reader.callCount(); got != 1 {
		t.Errorf("reader called %d times, want 1", got)
	}
	if !f.catalog.hasPath(track) {
		t.Error("catalog is missing the new track")
	}
}

func TestStartWatching_NoWatcherConfigured(t *testing.T) {
	f := newScanFixture(t)
	if err := f.svc.StartWatching(context.Background()); err == nil {
		t.Fatal("StartWatching() expected error without a watcher")
	}
}

func TestStopWatching_StopsWatcher(t *testing.T) {
	f := newScanFixture(t)
	watcher := &fakeWatcher{}
	f.svc.watcher = watcher
	f.svc.events = make(chan FileEvent)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := f.svc.StartWatching(ctx); err != nil {
		t.Fatalf("StartWatching() error = %v", err)
	}
	f.svc.StopWatching()

	watcher.mu.Lock()
	stopped := watcher.stopped
	watcher.mu.Unlock()
	if !stopped {
		t.Error("watcher was not stopped")
	}
}
