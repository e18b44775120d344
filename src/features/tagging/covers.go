package tagging

import "context"

// CoverCache hands out extracted cover images as files on disk.
type CoverCache interface {
	// CoverFile returns a path to the track's cover image, resized to fit
	// maxSize pixels when maxSize is positive.
	CoverFile(ctx context.Context, audioPath string, maxSize int) (string, error)
}
