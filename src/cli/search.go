package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog",
	Long:  `Query the search index over title, artist, album and genre.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 50, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	query := strings.Join(args, " ")
	tracks, err := app.library.Search(cmd.Context(), query, searchLimit)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		fmt.Printf("No tracks matching %q\n", query)
		return nil
	}

	trackTable(tracks)
	return nil
}
