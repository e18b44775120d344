package tagging

import (
	"context"

	"github.com/contre95/ferrum/src/music"
)

// TagReader is the interface for reading metadata from a music file.
// NOTE: Same shape as the scanning feature's reader, both are served by infra/tag.
type TagReader interface {
	ReadFileTags(ctx context.Context, filePath string) (*music.Track, error)
}

// TagWriter defines the interface for writing metadata tags to music files.
type TagWriter interface {
	WriteFileTags(ctx context.Context, filePath string, track *music.Track) error
	WriteArtwork(ctx context.Context, filePath string, imgData []byte) error
}
