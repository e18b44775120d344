package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listTree bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalog in album order",
	Long:  `List every stored track ordered by album, disc and track number.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listTree, "tree", false, "show the library directory tree instead")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if listTree {
		tree, err := app.library.GetLibraryFileTree()
		if err != nil {
			return err
		}
		fmt.Print(tree)
		return nil
	}

	tracks, err := app.library.GetAllTracks(cmd.Context())
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		fmt.Println("The catalog is empty. Run 'ferrum scan' first.")
		return nil
	}

	trackTable(tracks)
	fmt.Printf("\n%d tracks\n", len(tracks))
	return nil
}
