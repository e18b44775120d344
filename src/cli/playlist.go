package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contre95/ferrum/src/music"
)

var playlistCmd = &cobra.Command{
	Use:   "playlist",
	Short: "Export and import M3U playlists",
}

var playlistExportCmd = &cobra.Command{
	Use:   "export <file.m3u> [query]",
	Short: "Write catalog tracks to an M3U file",
	Long: `Queue every catalog track matching the query (or all of them) and write
the queue to an extended M3U file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlaylistExport,
}

var playlistPlay bool

var playlistImportCmd = &cobra.Command{
	Use:   "import <file.m3u>",
	Short: "Load an M3U file into the queue",
	Long: `Resolve every playlist entry against the catalog, skip the ones it does
not know and queue the rest. With --play the queue plays until it ends
or Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlaylistImport,
}

func init() {
	playlistImportCmd.Flags().BoolVar(&playlistPlay, "play", false, "play the queue after loading it")
	playlistCmd.AddCommand(playlistExportCmd)
	playlistCmd.AddCommand(playlistImportCmd)
	rootCmd.AddCommand(playlistCmd)
}

func runPlaylistExport(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	tracks, err := app.library.GetAllTracks(ctx)
	if err != nil {
		return err
	}
	if len(args) > 1 {
		query := strings.Join(args[1:], " ")
		tracks = music.FilterTracks(tracks, query)
		app.player.SetQueueName(query)
	}
	if len(tracks) == 0 {
		return fmt.Errorf("no tracks to export")
	}

	app.player.AppendAll(tracks)
	count, err := app.playlists.ExportQueue(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d tracks to %s\n", count, args[0])
	return nil
}

func runPlaylistImport(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	loaded, err := app.playlists.LoadIntoQueue(ctx, args[0])
	if err != nil {
		return err
	}
	if loaded == 0 {
		fmt.Println("No playlist entries are in the catalog")
		return nil
	}
	fmt.Printf("Queued %d tracks from %s\n", loaded, args[0])

	if !playlistPlay {
		return nil
	}

	app.player.SetMode(music.ModeNoRepeat)
	events := app.player.Events()
	if err := app.player.Play(); err != nil {
		return err
	}
	return playUntilDone(ctx, app.player, events)
}
