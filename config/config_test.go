package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"texturefinder/config"
	"texturefinder/types"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "texturefinder", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if cfg.Paths.LogDir != cwd {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, cwd)
	}
	if cfg.Paths.Database != "" {
		t.Fatalf("expected history database disabled by default, got %q", cfg.Paths.Database)
	}
	if cfg.Search.Threads != 0 || cfg.Search.Verbose {
		t.Fatalf("unexpected search defaults: %+v", cfg.Search)
	}
	if !cfg.Display.Progress {
		t.Fatal("expected progress bar enabled by default")
	}
	if cfg.Logging.Format != "text" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadFileExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[search]
threads = 3
verbose = true

[paths]
log_dir = "~/matches"
database = "~/history.db"

[logging]
level = "INFO"
format = " json "

[display]
progress = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Search.Threads != 3 || !cfg.Search.Verbose {
		t.Fatalf("unexpected search section: %+v", cfg.Search)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, "matches") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Paths.Database != filepath.Join(tempHome, "history.db") {
		t.Fatalf("unexpected database: %q", cfg.Paths.Database)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized logging values, got %+v", cfg.Logging)
	}
	if cfg.Display.Progress {
		t.Fatal("expected progress disabled")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"threads":       "[search]\nthreads = 9\n",
		"format":        "[logging]\nformat = \"xml\"\n",
		"level":         "[logging]\nlevel = \"chatty\"\n",
		"unknown field": "[search]\nthreshold = 0.2\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if !errors.Is(err, types.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	got, err := config.ExpandPath("~/textures/../logs")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if want := filepath.Join(tempHome, "logs"); got != want {
		t.Fatalf("unexpected path: got %q want %q", got, want)
	}
	if got, _ := config.ExpandPath(""); got != "" {
		t.Fatalf("expected empty path to stay empty, got %q", got)
	}
}
