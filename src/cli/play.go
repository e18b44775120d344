package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/contre95/ferrum/src/features/playback"
	"github.com/contre95/ferrum/src/music"
)

var playCmd = &cobra.Command{
	Use:   "play [query]",
	Short: "Play a track without the dashboard",
	Long: `Filter the catalog, pick a track when several match and play until the
queue ends or Ctrl+C.`,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
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

	matches := tracks
	if len(args) > 0 {
		matches = music.FilterTracks(tracks, strings.Join(args, " "))
	}
	if len(matches) == 0 {
		return fmt.Errorf("no tracks match")
	}

	track := matches[0]
	if len(matches) > 1 {
		track, err = pickTrack(matches)
		if err != nil {
			return err
		}
	}

	// A headless session should end with the queue instead of looping.
	app.player.SetMode(music.ModeNoRepeat)

	events := app.player.Events()
	if err := app.player.AppendAndPlay(track); err != nil {
		return err
	}
	return playUntilDone(ctx, app.player, events)
}

// playUntilDone prints track changes until the queue ends or ctx is
// cancelled.
func playUntilDone(ctx context.Context, player *playback.Service, events <-chan playback.Event) error {
	for {
		select {
		case <-ctx.Done():
			player.Stop()
			fmt.Println()
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			switch event.Type {
			case playback.EventPlaybackStarted:
				if event.Track != nil {
					fmt.Printf("▶ %s - %s [%s]\n",
						event.Track.DisplayArtist(), event.Track.DisplayTitle(), trackLength(event.Track))
				}
			case playback.EventPlaybackStopped:
				return nil
			}
		}
	}
}

func pickTrack(matches []*music.Track) (*music.Track, error) {
	options := make([]huh.Option[int], 0, len(matches))
	for i, track := range matches {
		label := fmt.Sprintf("%s - %s", track.DisplayArtist(), track.DisplayTitle())
		if track.Album != nil {
			label = fmt.Sprintf("%s (%s)", label, *track.Album)
		}
		options = append(options, huh.NewOption(label, i))
	}

	var selected int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(fmt.Sprintf("%d tracks match", len(matches))).
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}
	return matches[selected], nil
}
