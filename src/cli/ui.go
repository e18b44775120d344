package cli

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/contre95/ferrum/src/features/tui"
)

var uiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Open the terminal dashboard",
	Long: `Open the interactive dashboard: the track table with live filtering,
the play queue and a now-playing bar.

Keyboard shortcuts:
  q, Ctrl+C    Quit
  /, Ctrl+F    Filter tracks
  Enter        Queue and play the selection
  Space        Play/pause
  s            Stop
  n            Next track
  p            Previous track
  +/-          Volume up/down
  m            Cycle queue mode
  S            Shuffle the queue
  r            Rescan the library`,
	RunE: runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	cfg := app.cfg.Get()

	if cfg.Scanner.Watch {
		if err := app.scanner.StartWatching(cmd.Context()); err != nil {
			slog.Warn("Library watcher not started", "error", err)
		}
	}

	app.artwork.PruneCache()

	// Old jobs age out while the dashboard stays open
	cleanup := time.NewTicker(time.Hour)
	defer cleanup.Stop()
	go func() {
		for range cleanup.C {
			app.jobs.CleanupOldJobs(24 * time.Hour)
		}
	}()

	return tui.Run(&tui.App{
		Library:     app.library,
		Player:      app.player,
		Scanner:     app.scanner,
		Jobs:        app.jobs,
		RefreshRate: time.Duration(cfg.UI.RefreshMs) * time.Millisecond,
	})
}
