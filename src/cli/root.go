// Package cli wires the cobra commands around the feature services.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/contre95/ferrum/src/features/config"
	"github.com/contre95/ferrum/src/features/jobs"
	"github.com/contre95/ferrum/src/features/library"
	"github.com/contre95/ferrum/src/features/logging"
	"github.com/contre95/ferrum/src/features/playback"
	"github.com/contre95/ferrum/src/features/playlists"
	"github.com/contre95/ferrum/src/features/scanning"
	"github.com/contre95/ferrum/src/features/stats"
	"github.com/contre95/ferrum/src/features/tagging"
	"github.com/contre95/ferrum/src/infra"
	"github.com/contre95/ferrum/src/infra/artwork"
	"github.com/contre95/ferrum/src/infra/audio"
	"github.com/contre95/ferrum/src/infra/database"
	"github.com/contre95/ferrum/src/infra/search"
	"github.com/contre95/ferrum/src/infra/tag"
	"github.com/contre95/ferrum/src/infra/watcher"
	"github.com/contre95/ferrum/src/music"
)

var (
	cfgFile string

	manager *config.Manager
)

var rootCmd = &cobra.Command{
	Use:   "ferrum",
	Short: "Scan, browse and play a local music library",
	Long:  `Ferrum keeps a folder of music files in a SQLite catalog and plays them from the terminal.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: <user config dir>/ferrum/config.yaml)")
}

func initConfig() error {
	path := cfgFile
	if path == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to resolve config directory: %w", err)
		}
		path = defaultPath
	}

	var err error
	manager, err = config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	slog.SetDefault(logging.SetupLogger(manager))
	return nil
}

// Execute runs the root command. Ctrl+C cancels the command context so
// long-running commands can stop cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app is the assembled service graph. Commands that touch the catalog build
// one and close it when they are done; config-only commands never pay for
// sqlite or bleve.
type app struct {
	cfg       *config.Manager
	catalog   music.Catalog
	index     *search.BleveIndex
	jobs      *jobs.Service
	player    *playback.Service
	library   *library.Service
	scanner   *scanning.Service
	playlists *playlists.Service
	stats     *stats.Service
	tagging   *tagging.Service
	artwork   *artwork.Service
}

func newApp() (*app, error) {
	cfg := manager.Get()

	catalog, err := database.NewSqliteCatalog(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	index, err := search.NewBleveIndex(cfg.Search.IndexPath)
	if err != nil {
		catalog.Close()
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}

	jobService := jobs.NewService(&cfg.Jobs)

	reader := tag.NewTagReader()
	writer := tag.NewTagWriter(manager)
	artworkService := artwork.NewService(manager, reader)

	var sink playback.Sink
	if cfg.Demo {
		sink = audio.NewNopSink()
	} else {
		sink = audio.NewFFplaySink(cfg.Player.FFplayPath, cfg.Player.Volume)
	}
	player := playback.NewService(sink, cfg.Player.Volume)

	events := make(chan scanning.FileEvent, 16)
	var libWatcher scanning.Watcher
	if fsWatcher, err := watcher.NewWatcher(events, time.Duration(cfg.Scanner.DebounceSeconds)*time.Second); err != nil {
		slog.Warn("File watcher unavailable", "error", err)
	} else {
		libWatcher = fsWatcher
	}

	scanner := scanning.NewService(catalog, reader, index, manager, jobService, libWatcher, events)
	jobService.RegisterHandler("library_scan", jobs.NewBaseTaskHandler(scanning.NewScanTask(scanner)))

	return &app{
		cfg:       manager,
		catalog:   catalog,
		index:     index,
		jobs:      jobService,
		player:    player,
		library:   library.NewService(catalog, index, manager),
		scanner:   scanner,
		playlists: playlists.NewService(catalog, player, infra.NewM3UParser()),
		stats:     stats.NewService(catalog),
		tagging:   tagging.NewService(reader, writer, artworkService, catalog, index),
		artwork:   artworkService,
	}, nil
}

func (a *app) Close() {
	a.scanner.StopWatching()
	a.player.Close()
	if err := a.index.Close(); err != nil {
		slog.Warn("Failed to close search index", "error", err)
	}
	if err := a.catalog.Close(); err != nil {
		slog.Warn("Failed to close catalog", "error", err)
	}
}
