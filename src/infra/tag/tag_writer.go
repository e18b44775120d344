package tag

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/contre95/ferrum/src/features/config"
	"github.com/contre95/ferrum/src/music"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

// TagWriter implements writing tags into files for MP3 and FLAC formats.
type TagWriter struct {
	config *config.Manager
}

// NewTagWriter creates a new TagWriter.
func NewTagWriter(cfg *config.Manager) *TagWriter {
	return &TagWriter{config: cfg}
}

// WriteFileTags writes the track's non-nil fields to the file, leaving other
// tags in place.
func (t *TagWriter) WriteFileTags(ctx context.Context, filePath string, track *music.Track) error {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".mp3":
		return t.tagMP3(ctx, filePath, track)
	case ".flac":
		return t.tagFLAC(ctx, filePath, track)
	default:
		return fmt.Errorf("unsupported format: %s", ext)
	}
}

// WriteArtwork embeds the image as the file's front cover, replacing any
// existing cover.
func (t *TagWriter) WriteArtwork(ctx context.Context, filePath string, imgData []byte) error {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".mp3":
		return t.artworkMP3(filePath, imgData)
	case ".flac":
		return t.artworkFLAC(filePath, imgData)
	default:
		return fmt.Errorf("unsupported format: %s", ext)
	}
}

// resizeImage resizes image data to fit within maxSize pixels, maintaining aspect ratio.
func (t *TagWriter) resizeImage(imgData []byte, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		return imgData, nil
	}

	// Decode image
	img, format, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		return imgData, fmt.Errorf("failed to decode image: %w", err)
	}

	// Get current bounds
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	// Check if resizing is needed
	if width <= maxSize && height <= maxSize {
		return imgData, nil
	}

	// Calculate new dimensions
	if width > height {
		height = (height * maxSize) / width
		width = maxSize
	} else {
		width = (width * maxSize) / height
		height = maxSize
	}

	// Resize
	resizedImg := resize.Resize(uint(width), uint(height), img, resize.Lanczos3)

	quality := t.config.Get().Artwork.EmbedQuality
	if quality <= 0 {
		quality = 85
	}

	// Encode back
	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "png":
		err = png.Encode(&buf, resizedImg)
	default:
		err = jpeg.Encode(&buf, resizedImg, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return imgData, fmt.Errorf("failed to encode resized image: %w", err)
	}

	return buf.Bytes(), nil
}

// prepareArtwork resizes the image per the artwork config and sniffs its MIME type.
func (t *TagWriter) prepareArtwork(imgData []byte) ([]byte, string) {
	maxSize := t.config.Get().Artwork.EmbedMaxSize
	if maxSize > 0 {
		resized, err := t.resizeImage(imgData, maxSize)
		if err != nil {
			slog.Warn("Failed to resize artwork", "error", err)
		} else {
			imgData = resized
		}
	}
	return imgData, detectImageMime(imgData)
}

// tagMP3 handles MP3 tagging using id3v2.
func (t *TagWriter) tagMP3(ctx context.Context, filePath string, track *music.Track) error {
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open MP3 file for tagging: %w", err)
	}
	defer tag.Close()

	if track.Title != nil {
		tag.SetTitle(*track.Title)
	}
	if track.Artist != nil {
		tag.SetArtist(*track.Artist)
	}
	if track.Album != nil {
		tag.SetAlbum(*track.Album)
	}
	if track.AlbumArtist != nil {
		tag.AddTextFrame(tag.CommonID("Band/Orchestra/Accompaniment"), id3v2.EncodingUTF8, *track.AlbumArtist)
	}
	if track.Genre != nil {
		tag.SetGenre(*track.Genre)
	}
	if track.Track != nil {
		value := *track.Track
		if track.TrackTotal != nil {
			value = fmt.Sprintf("%s/%s", value, *track.TrackTotal)
		}
		tag.AddTextFrame(tag.CommonID("Track number/Position in set"), id3v2.EncodingUTF8, value)
	}
	if track.Disc != nil {
		value := *track.Disc
		if track.DiscTotal != nil {
			value = fmt.Sprintf("%s/%s", value, *track.DiscTotal)
		}
		tag.AddTextFrame(tag.CommonID("Part of a set"), id3v2.EncodingUTF8, value)
	}

	// Save the tag (this properly interleaves tags with audio data)
	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save MP3 tags: %w", err)
	}

	slog.Info("Tagged MP3 file", "filePath", filePath, "title", music.Deref(track.Title))
	return nil
}

// tagFLAC handles FLAC tagging using Vorbis comments.
func (t *TagWriter) tagFLAC(ctx context.Context, filePath string, track *music.Track) error {
	// Parse the FLAC file
	f, err := goflac.ParseFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	// Find existing Vorbis comment block
	var vorbisComment *flacvorbis.MetaDataBlockVorbisComment
	var commentIndex = -1

	for idx, meta := range f.Meta {
		if meta.Type == goflac.VorbisComment {
			vorbisComment, err = flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return fmt.Errorf("failed to parse Vorbis comment: %w", err)
			}
			commentIndex = idx
			break
		}
	}

	// Create new Vorbis comment block if none exists
	if vorbisComment == nil {
		vorbisComment = flacvorbis.New()
	}

	setVorbisField(vorbisComment, flacvorbis.FIELD_TITLE, track.Title)
	setVorbisField(vorbisComment, flacvorbis.FIELD_ARTIST, track.Artist)
	setVorbisField(vorbisComment, flacvorbis.FIELD_ALBUM, track.Album)
	setVorbisField(vorbisComment, "ALBUMARTIST", track.AlbumArtist)
	setVorbisField(vorbisComment, flacvorbis.FIELD_GENRE, track.Genre)
	setVorbisField(vorbisComment, flacvorbis.FIELD_TRACKNUMBER, track.Track)
	setVorbisField(vorbisComment, "TRACKTOTAL", track.TrackTotal)
	setVorbisField(vorbisComment, "DISCNUMBER", track.Disc)
	setVorbisField(vorbisComment, "DISCTOTAL", track.DiscTotal)

	// Marshal back to metadata block
	commentMeta := vorbisComment.Marshal()

	// Update or add the metadata block
	if commentIndex >= 0 {
		f.Meta[commentIndex] = &commentMeta
	} else {
		f.Meta = append(f.Meta, &commentMeta)
	}

	// Save the file
	if err := f.Save(filePath); err != nil {
		return fmt.Errorf("failed to save FLAC file: %w", err)
	}

	slog.Info("Tagged FLAC file", "filePath", filePath, "title", music.Deref(track.Title))
	return nil
}

// artworkMP3 embeds a front cover APIC frame, replacing existing pictures.
func (t *TagWriter) artworkMP3(filePath string, imgData []byte) error {
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open MP3 file for tagging: %w", err)
	}
	defer tag.Close()

	data, mimeType := t.prepareArtwork(imgData)
	tag.DeleteFrames(tag.CommonID("Attached picture"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    mimeType,
		PictureType: id3v2.PTFrontCover,
		Description: "",
		Picture:     data,
	})

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save MP3 tags: %w", err)
	}

	slog.Debug("Embedded artwork in MP3", "filePath", filePath, "size", len(data), "type", mimeType)
	return nil
}

// artworkFLAC embeds a front cover PICTURE block, replacing existing pictures.
func (t *TagWriter) artworkFLAC(filePath string, imgData []byte) error {
	f, err := goflac.ParseFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	data, mimeType := t.prepareArtwork(imgData)
	pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Cover", data, mimeType)
	if err != nil {
		return fmt.Errorf("failed to build picture block: %w", err)
	}
	marshaled := pic.Marshal()

	kept := make([]*goflac.MetaDataBlock, 0, len(f.Meta))
	for _, meta := range f.Meta {
		if meta.Type != goflac.Picture {
			kept = append(kept, meta)
		}
	}
	f.Meta = append(kept, &goflac.MetaDataBlock{
		Type: goflac.Picture,
		Data: marshaled.Data,
	})

	if err := f.Save(filePath); err != nil {
		return fmt.Errorf("failed to save FLAC file: %w", err)
	}

	slog.Debug("Embedded artwork in FLAC", "filePath", filePath, "size", len(data), "type", mimeType)
	return nil
}

// setVorbisField replaces any existing entries for the key with the value.
// Nil values leave the file's existing entries untouched.
func setVorbisField(comment *flacvorbis.MetaDataBlockVorbisComment, key string, value *string) {
	if value == nil {
		return
	}
	prefix := strings.ToUpper(key) + "="
	kept := comment.Comments[:0]
	for _, entry := range comment.Comments {
		if !strings.HasPrefix(strings.ToUpper(entry), prefix) {
			kept = append(kept, entry)
		}
	}
	comment.Comments = kept
	comment.Add(key, *value)
}

// detectImageMime sniffs PNG signatures, defaulting to JPEG.
func detectImageMime(data []byte) string {
	if len(data) >= 4 && string(data[:4]) == "\x89PNG" {
		return "image/png"
	}
	return "image/jpeg"
}
