package search

import (
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/contre95/ferrum/src/music"
)

// trackDocument is the searchable slice of a track. The file path doubles as
// the document ID, so the catalog stays the source of truth for everything
// else.
type trackDocument struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	AlbumArtist string `json:"album_artist"`
	Genre       string `json:"genre"`
}

func newTrackDocument(track *music.Track) trackDocument {
	return trackDocument{
		Title:       music.Deref(track.Title),
		Artist:      music.Deref(track.Artist),
		Album:       music.Deref(track.Album),
		AlbumArtist: music.Deref(track.AlbumArtist),
		Genre:       music.Deref(track.Genre),
	}
}

// BleveIndex is a full-text index over the track catalog.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex opens the index at path, creating it on first use. Bleve
// indexes are directories.
func NewBleveIndex(path string) (*BleveIndex, error) {
	var index bleve.Index
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		created, err := bleve.New(path, bleve.NewIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create search index: %w", err)
		}
		index = created
	} else {
		opened, err := bleve.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open search index: %w", err)
		}
		index = opened
	}
	return &BleveIndex{index: index}, nil
}

// Close releases the index.
func (b *BleveIndex) Close() error {
	if b.index != nil {
		return b.index.Close()
	}
	return nil
}

// IndexTracks adds or refreshes the given tracks in one batch.
func (b *BleveIndex) IndexTracks(tracks []*music.Track) error {
	batch := b.index.NewBatch()
	for _, track := range tracks {
		if err := batch.Index(track.Path, newTrackDocument(track)); err != nil {
			return err
		}
	}
	return b.index.Batch(batch)
}

// DeletePaths removes the given documents in one batch.
func (b *BleveIndex) DeletePaths(paths []string) error {
	batch := b.index.NewBatch()
	for _, path := range paths {
		batch.Delete(path)
	}
	return b.index.Batch(batch)
}

// RebuildFrom replaces the whole index with the given tracks.
func (b *BleveIndex) RebuildFrom(tracks []*music.Track) error {
	stale, err := b.allPaths()
	if err != nil {
		return err
	}
	batch := b.index.NewBatch()
	for _, path := range stale {
		batch.Delete(path)
	}
	for _, track := range tracks {
		if err := batch.Index(track.Path, newTrackDocument(track)); err != nil {
			return err
		}
	}
	return b.index.Batch(batch)
}

// Count returns the number of indexed tracks.
func (b *BleveIndex) Count() (int, error) {
	c, err := b.index.DocCount()
	return int(c), err
}

// Search returns the paths of matching tracks, best hits first. The input
// accepts bleve query string syntax, so "artist:davis" scopes a field while a
// bare word matches everywhere. An empty input lists everything.
func (b *BleveIndex) Search(input string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}

	var req *bleve.SearchRequest
	if strings.TrimSpace(input) == "" {
		req = bleve.NewSearchRequest(bleve.NewMatchAllQuery())
		req.SortBy([]string{"album", "title"})
	} else {
		req = bleve.NewSearchRequest(bleve.NewQueryStringQuery(input))
	}
	req.Size = limit
	req.Fields = []string{}

	res, err := b.index.Search(req)
	if err != nil {
		// Inputs that are not valid query syntax fall back to a plain match
		res, err = b.index.Search(b.fallbackRequest(input, limit))
		if err != nil {
			return nil, err
		}
	}

	paths := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		paths = append(paths, hit.ID)
	}
	return paths, nil
}

// fallbackRequest matches the input against every searchable field.
func (b *BleveIndex) fallbackRequest(input string, limit int) *bleve.SearchRequest {
	boolQuery := bleve.NewBooleanQuery()
	for _, field := range []string{"title", "artist", "album", "album_artist", "genre"} {
		mq := bleve.NewMatchQuery(input)
		mq.SetField(field)
		boolQuery.AddShould(mq)
	}
	req := bleve.NewSearchRequest(boolQuery)
	req.Size = limit
	req.Fields = []string{}
	return req
}

// allPaths lists every document ID in the index.
func (b *BleveIndex) allPaths() ([]string, error) {
	count, err := b.index.DocCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(count)
	req.Fields = []string{}

	res, err := b.index.Search(req)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		paths = append(paths, hit.ID)
	}
	return paths, nil
}
