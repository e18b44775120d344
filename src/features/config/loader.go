package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML file from the given path and returns a new Manager.
// If the file doesn't exist, creates a default configuration.
func Load(path string) (*Manager, error) {
	// Check if config file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Info("Config file not found, creating default configuration", "path", path)
		defaultCfg := createDefaultConfig()

		// Save default config to file
		if err := saveDefaultConfig(path, defaultCfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}

		if err := finalize(defaultCfg); err != nil {
			return nil, err
		}
		manager := NewManager(defaultCfg)
		if err := manager.EnsureDirectories(); err != nil {
			return nil, err
		}
		return manager, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// A .env next to the working directory can hold the overrides below
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment from .env")
	}

	// Override with environment variables if set
	if v := os.Getenv("FERRUM_LIBRARY_PATH"); v != "" {
		cfg.LibraryPath = v
	}
	if v := os.Getenv("FERRUM_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("FERRUM_INDEX_PATH"); v != "" {
		cfg.Search.IndexPath = v
	}
	if v := os.Getenv("FERRUM_LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("FERRUM_LOG_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("FERRUM_FFPLAY"); v != "" {
		cfg.Player.FFplayPath = v
	}

	if err := finalize(&cfg); err != nil {
		return nil, err
	}

	manager := NewManager(&cfg)
	if err := manager.EnsureDirectories(); err != nil {
		return nil, err
	}

	return manager, nil
}

// createDefaultConfig creates a new Config with sensible default values
func createDefaultConfig() *Config {
	return &Config{
		LibraryPath: "~/Music",
		Demo:        false,
		Logger: Logger{
			Enabled: true,
			Level:   "info",
			Format:  "text",
		},
		Database: Database{
			Path: "", // resolved under the user config dir
		},
		Search: Search{
			IndexPath: "",
		},
		Scanner: Scanner{
			Watch:           false,
			Prune:           true,
			DebounceSeconds: 5,
		},
		Player: Player{
			FFplayPath: "ffplay",
			Volume:     1.0,
		},
		Artwork: Artwork{
			EmbedMaxSize: 1200,
			EmbedQuality: 85,
			CacheEntries: 100,
		},
		UI: UI{
			RefreshMs: 500,
		},
		Jobs: Jobs{
			Log:     false,
			LogPath: filepath.Join(os.TempDir(), "ferrum", "jobs"),
			Hooks: HookConfig{
				Enabled:  false,
				JobTypes: []string{},
				Command:  "",
			},
		},
	}
}

// finalize expands home-relative paths and fills the defaults the YAML file
// may omit.
func finalize(cfg *Config) error {
	cfg.LibraryPath = ExpandHome(cfg.LibraryPath)
	cfg.Database.Path = ExpandHome(cfg.Database.Path)
	cfg.Search.IndexPath = ExpandHome(cfg.Search.IndexPath)
	cfg.Jobs.LogPath = ExpandHome(cfg.Jobs.LogPath)

	if cfg.Database.Path == "" || cfg.Search.IndexPath == "" {
		appDir, err := DefaultAppDir()
		if err != nil {
			return fmt.Errorf("failed to resolve app directory: %w", err)
		}
		if cfg.Database.Path == "" {
			cfg.Database.Path = filepath.Join(appDir, "library.db")
		}
		if cfg.Search.IndexPath == "" {
			cfg.Search.IndexPath = filepath.Join(appDir, "library.bleve")
		}
	}

	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "text"
	}
	if cfg.Scanner.DebounceSeconds <= 0 {
		cfg.Scanner.DebounceSeconds = 5
	}
	if cfg.Player.FFplayPath == "" {
		cfg.Player.FFplayPath = "ffplay"
	}
	if cfg.Player.Volume == 0 {
		cfg.Player.Volume = 1.0
	}
	if cfg.Artwork.EmbedMaxSize <= 0 {
		cfg.Artwork.EmbedMaxSize = 1200
	}
	if cfg.Artwork.EmbedQuality <= 0 {
		cfg.Artwork.EmbedQuality = 85
	}
	if cfg.Artwork.CacheEntries <= 0 {
		cfg.Artwork.CacheEntries = 100
	}
	if cfg.UI.RefreshMs <= 0 {
		cfg.UI.RefreshMs = 500
	}
	if cfg.Jobs.LogPath == "" {
		cfg.Jobs.LogPath = filepath.Join(os.TempDir(), "ferrum", "jobs")
	}
	return nil
}

// saveDefaultConfig saves the default configuration to the specified file path
func saveDefaultConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()
	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	slog.Info("Default configuration saved", "path", path)
	return nil
}
