package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contre95/ferrum/src/features/tagging"
	"github.com/contre95/ferrum/src/music"
)

var (
	tagTitle       string
	tagArtist      string
	tagAlbum       string
	tagAlbumArtist string
	tagGenre       string
	tagTrack       string
	tagTrackTotal  string
	tagDisc        string
	tagDiscTotal   string
)

var tagCmd = &cobra.Command{
	Use:   "tag <file>",
	Short: "Show or edit a file's tags",
	Long: `Print the tags of an audio file. With flags, write the given fields to
the file and refresh its catalog row.`,
	Args: cobra.ExactArgs(1),
	RunE: runTag,
}

var (
	artworkSet  string
	artworkOut  string
	artworkSize int
)

var artworkCmd = &cobra.Command{
	Use:   "artwork <file>",
	Short: "Extract or embed cover art",
	Long: `Extract the embedded cover of an audio file, or embed a new one with
--set. Extracted covers land in the artwork cache unless --out is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runArtwork,
}

func init() {
	tagCmd.Flags().StringVar(&tagTitle, "title", "", "set the title")
	tagCmd.Flags().StringVar(&tagArtist, "artist", "", "set the artist")
	tagCmd.Flags().StringVar(&tagAlbum, "album", "", "set the album")
	tagCmd.Flags().StringVar(&tagAlbumArtist, "album-artist", "", "set the album artist")
	tagCmd.Flags().StringVar(&tagGenre, "genre", "", "set the genre")
	tagCmd.Flags().StringVar(&tagTrack, "track", "", "set the track number")
	tagCmd.Flags().StringVar(&tagTrackTotal, "track-total", "", "set the track count")
	tagCmd.Flags().StringVar(&tagDisc, "disc", "", "set the disc number")
	tagCmd.Flags().StringVar(&tagDiscTotal, "disc-total", "", "set the disc count")
	rootCmd.AddCommand(tagCmd)

	artworkCmd.Flags().StringVar(&artworkSet, "set", "", "embed this image into the file")
	artworkCmd.Flags().StringVar(&artworkOut, "out", "", "write the extracted cover to this path")
	artworkCmd.Flags().IntVar(&artworkSize, "size", 0, "scale the extracted cover to fit this many pixels")
	rootCmd.AddCommand(artworkCmd)
}

func runTag(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	path := args[0]

	changes := tagChangesFromFlags(cmd)
	if changes.Empty() {
		track, err := app.tagging.ReadTags(ctx, path)
		if err != nil {
			return err
		}
		printTags(track)
		return nil
	}

	track, err := app.tagging.EditTags(ctx, path, changes)
	if err != nil {
		return err
	}
	fmt.Printf("Updated %s\n\n", path)
	printTags(track)
	return nil
}

// tagChangesFromFlags only picks up flags the user actually passed, so an
// explicitly empty value clears the tag.
func tagChangesFromFlags(cmd *cobra.Command) *tagging.TagChanges {
	changes := &tagging.TagChanges{}
	set := func(name string, dst **string, value string) {
		if cmd.Flags().Changed(name) {
			v := value
			*dst = &v
		}
	}
	set("title", &changes.Title, tagTitle)
	set("artist", &changes.Artist, tagArtist)
	set("album", &changes.Album, tagAlbum)
	set("album-artist", &changes.AlbumArtist, tagAlbumArtist)
	set("genre", &changes.Genre, tagGenre)
	set("track", &changes.Track, tagTrack)
	set("track-total", &changes.TrackTotal, tagTrackTotal)
	set("disc", &changes.Disc, tagDisc)
	set("disc-total", &changes.DiscTotal, tagDiscTotal)
	return changes
}

func printTags(track *music.Track) {
	table := NewTable()
	table.Row("Title", music.Deref(track.Title))
	table.Row("Artist", music.Deref(track.Artist))
	table.Row("Album", music.Deref(track.Album))
	table.Row("Album artist", music.Deref(track.AlbumArtist))
	table.Row("Genre", music.Deref(track.Genre))
	table.Row("Track", music.Deref(track.Track))
	table.Row("Track total", music.Deref(track.TrackTotal))
	table.Row("Disc", music.Deref(track.Disc))
	table.Row("Disc total", music.Deref(track.DiscTotal))
	table.Row("Length", trackLength(track))
	table.Flush()
}

func runArtwork(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	path := args[0]

	if artworkSet != "" {
		if err := app.tagging.SetArtwork(ctx, path, artworkSet); err != nil {
			return err
		}
		fmt.Printf("Embedded %s into %s\n", artworkSet, path)
		return nil
	}

	cached, err := app.tagging.GetArtwork(ctx, path, artworkSize)
	if err != nil {
		return err
	}
	if artworkOut == "" {
		fmt.Println(cached)
		return nil
	}

	data, err := os.ReadFile(cached)
	if err != nil {
		return err
	}
	if err := os.WriteFile(artworkOut, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote cover to %s\n", artworkOut)
	return nil
}
