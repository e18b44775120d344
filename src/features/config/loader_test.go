package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_ReadsFileAndFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := `
libraryPath: ` + filepath.Join(dir, "music") + `
database:
  path: ` + filepath.Join(dir, "db", "library.db") + `
search:
  indexPath: ` + filepath.Join(dir, "db", "library.bleve") + `
logger:
  enabled: true
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatalf("expected fixture config, got %v", err)
	}

	manager, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}

	cfg := manager.Get()
	if cfg.LibraryPath != filepath.Join(dir, "music") {
		t.Errorf("unexpected library path %q", cfg.LibraryPath)
	}
	if cfg.Scanner.DebounceSeconds != 5 {
		t.Errorf("expected default debounce 5, got %d", cfg.Scanner.DebounceSeconds)
	}
	if cfg.UI.RefreshMs != 500 {
		t.Errorf("expected default refresh 500, got %d", cfg.UI.RefreshMs)
	}
	if cfg.Player.FFplayPath != "ffplay" {
		t.Errorf("expected default player binary, got %q", cfg.Player.FFplayPath)
	}
	if cfg.Player.Volume != 1.0 {
		t.Errorf("expected default volume 1.0, got %f", cfg.Player.Volume)
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("expected default level info, got %q", cfg.Logger.Level)
	}

	// The library directory is created on load.
	if _, err := os.Stat(cfg.LibraryPath); err != nil {
		t.Errorf("expected library directory to exist, got %v", err)
	}
}

func TestLoad_MissingLibraryPathFailsValidation(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("logger:\n  enabled: true\n"), 0o644); err != nil {
		t.Fatalf("expected fixture config, got %v", err)
	}

	if _, err := Load(cfgPath); err == nil {
		t.Fatal("expected a validation error for a missing libraryPath")
	}
}

func TestLoad_CreatesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))

	cfgPath := filepath.Join(dir, "ferrum", "config.yaml")
	manager, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("expected default config to be created, got %v", err)
	}

	if _, err := os.Stat(cfgPath); err != nil {
		t.Errorf("expected config file on disk, got %v", err)
	}
	cfg := manager.Get()
	if cfg.LibraryPath != filepath.Join(dir, "Music") {
		t.Errorf("expected expanded default library path, got %q", cfg.LibraryPath)
	}
	if cfg.Database.Path == "" || cfg.Search.IndexPath == "" {
		t.Error("expected database and index paths to be resolved")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "elsewhere")
	t.Setenv("FERRUM_LIBRARY_PATH", override)

	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := `
libraryPath: ` + filepath.Join(dir, "music") + `
database:
  path: ` + filepath.Join(dir, "library.db") + `
search:
  indexPath: ` + filepath.Join(dir, "library.bleve") + `
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatalf("expected fixture config, got %v", err)
	}

	manager, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}
	if got := manager.Get().LibraryPath; got != override {
		t.Errorf("expected env override %q, got %q", override, got)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := ExpandHome("~/Music"); got != filepath.Join(home, "Music") {
		t.Errorf("expected home expansion, got %q", got)
	}
	if got := ExpandHome("/absolute/path"); got != "/absolute/path" {
		t.Errorf("expected absolute path untouched, got %q", got)
	}
	if got := ExpandHome("~"); !strings.HasPrefix(got, home) {
		t.Errorf("expected bare ~ to expand, got %q", got)
	}
}

func TestManager_UpdateAndYAML(t *testing.T) {
	manager := NewManager(createDefaultConfig())

	updated := *manager.Get()
	updated.Scanner.Watch = true
	manager.Update(&updated)

	if !manager.Get().Scanner.Watch {
		t.Error("expected updated config to be visible")
	}
	if yaml := manager.GetYAML(); !strings.Contains(yaml, "libraryPath") {
		t.Errorf("expected YAML dump to carry libraryPath, got %q", yaml)
	}
}
