package config

// Config holds the application configuration.
type Config struct {
	LibraryPath string   `yaml:"libraryPath" validate:"required"`
	Demo        bool     `yaml:"demo"`
	Logger      Logger   `yaml:"logger"`
	Database    Database `yaml:"database"`
	Search      Search   `yaml:"search"`
	Scanner     Scanner  `yaml:"scanner"`
	Player      Player   `yaml:"player"`
	Artwork     Artwork  `yaml:"artwork"`
	UI          UI       `yaml:"ui"`
	Jobs        Jobs     `yaml:"jobs"`
}

// Database holds the configuration for the catalog database
type Database struct {
	Path string `yaml:"path"`
}

// Search holds the configuration for the search index
type Search struct {
	IndexPath string `yaml:"indexPath"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

// Scanner holds the configuration for keeping the catalog fresh
type Scanner struct {
	Watch           bool `yaml:"watch"`
	Prune           bool `yaml:"prune"`
	DebounceSeconds int  `yaml:"debounceSeconds"`
}

// Player holds the configuration for audio playback
type Player struct {
	FFplayPath string  `yaml:"ffplayPath"`
	Volume     float64 `yaml:"volume"`
}

// Artwork holds the configuration for embedded cover art
type Artwork struct {
	EmbedMaxSize int `yaml:"embedMaxSize"`
	EmbedQuality int `yaml:"embedQuality"`
	CacheEntries int `yaml:"cacheEntries"`
}

// UI holds the configuration for the terminal dashboard
type UI struct {
	RefreshMs int `yaml:"refreshMs"`
}

type Jobs struct {
	Log     bool       `yaml:"log"`
	LogPath string     `yaml:"logPath"`
	Hooks   HookConfig `yaml:"hooks"`
}

type HookConfig struct {
	Enabled  bool     `yaml:"enabled"`
	JobTypes []string `yaml:"jobTypes"`
	Command  string   `yaml:"command"`
}
