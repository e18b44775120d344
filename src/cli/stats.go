package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contre95/ferrum/src/features/stats"
	"github.com/contre95/ferrum/src/music"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog totals and distributions",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	libStats, err := app.stats.GetStats(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Tracks:       %d\n", libStats.TotalTracks)
	fmt.Printf("Artists:      %d\n", libStats.TotalArtists)
	fmt.Printf("Albums:       %d\n", libStats.TotalAlbums)
	fmt.Printf("Genres:       %d\n", libStats.TotalGenres)
	fmt.Printf("Playing time: %s\n", stats.FormatTotalDuration(libStats.TotalSeconds))

	if len(libStats.Genres) > 0 {
		fmt.Println("\nGenres")
		countTable(libStats.Genres)
	}
	if len(libStats.AlbumArtists) > 0 {
		fmt.Println("\nAlbum artists")
		countTable(libStats.AlbumArtists)
	}
	if len(libStats.Extensions) > 0 {
		fmt.Println("\nFile types")
		countTable(libStats.Extensions)
	}
	return nil
}

func countTable(counts []music.StatCount) {
	table := NewTable()
	for _, c := range counts {
		table.Row("  "+c.Name, fmt.Sprintf("%d", c.Count))
	}
	table.Flush()
}
