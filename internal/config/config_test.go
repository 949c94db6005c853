package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"geotag/internal/backup"
	"geotag/internal/config"
	"geotag/internal/coords"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.ExifToolEnv, "")
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	home := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(home, ".config", "geotag", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Paths.StateDir != filepath.Join(home, ".local", "share", "geotag") {
		t.Fatalf("unexpected state dir %q", cfg.Paths.StateDir)
	}
	if cfg.Paths.LogDir != filepath.Join(home, ".local", "share", "geotag", "logs") {
		t.Fatalf("unexpected log dir %q", cfg.Paths.LogDir)
	}
	if cfg.ExifTool.Binary != "exiftool" {
		t.Fatalf("unexpected binary %q", cfg.ExifTool.Binary)
	}
	if cfg.ExifToolTimeout() != time.Minute {
		t.Fatalf("unexpected timeout %v", cfg.ExifToolTimeout())
	}
	policy := cfg.BackupPolicy()
	if policy.Mode != backup.ModeSuffix {
		t.Fatalf("unexpected backup mode %q", policy.Mode)
	}
	if !cfg.Save.UpdateGPSTimestamp || cfg.Save.UpdateFileModTime {
		t.Fatalf("unexpected save flags %+v", cfg.Save)
	}
	if cfg.TimeLocation() != time.Local {
		t.Fatal("expected local zone by default")
	}
	if cfg.TrackMaxGap() != 2*time.Hour || cfg.Track.Interpolate {
		t.Fatalf("unexpected track settings %+v", cfg.Track)
	}
	if cfg.LockPath() != filepath.Join(cfg.Paths.StateDir, "save.lock") {
		t.Fatalf("unexpected lock path %q", cfg.LockPath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolate(t)
	configPath := filepath.Join(t.TempDir(), "geotag.toml")

	type payload struct {
		ExifTool struct {
			Binary         string `toml:"binary"`
			TimeoutSeconds int    `toml:"timeout_seconds"`
			Concurrency    int    `toml:"concurrency"`
		} `toml:"exiftool"`
		Save struct {
			BackupMode string `toml:"backup_mode"`
			BackupDir  string `toml:"backup_dir"`
			TimeZone   string `toml:"time_zone"`
		} `toml:"save"`
		Display struct {
			CoordinateFormat string `toml:"coordinate_format"`
		} `toml:"display"`
	}
	custom := payload{}
	custom.ExifTool.Binary = "/opt/exiftool/exiftool"
	custom.ExifTool.TimeoutSeconds = 5
	custom.ExifTool.Concurrency = 3
	custom.Save.BackupMode = "Folder"
	custom.Save.BackupDir = "~/geo-backups"
	custom.Save.TimeZone = "Europe/Berlin"
	custom.Display.CoordinateFormat = "DMS"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution %q %v", resolved, exists)
	}
	if cfg.ExifTool.Binary != "/opt/exiftool/exiftool" || cfg.ExifTool.Concurrency != 3 {
		t.Fatalf("unexpected exiftool section %+v", cfg.ExifTool)
	}
	if cfg.ExifToolTimeout() != 5*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.ExifToolTimeout())
	}
	home, _ := os.UserHomeDir()
	want := backup.Policy{Mode: backup.ModeFolder, Dir: filepath.Join(home, "geo-backups")}
	if cfg.BackupPolicy() != want {
		t.Fatalf("unexpected policy %+v", cfg.BackupPolicy())
	}
	if cfg.TimeLocation().String() != "Europe/Berlin" {
		t.Fatalf("unexpected zone %v", cfg.TimeLocation())
	}
	if cfg.CoordinateStyle() != coords.StyleDMS {
		t.Fatalf("unexpected style %v", cfg.CoordinateStyle())
	}
}

func TestProjectConfigIsFound(t *testing.T) {
	isolate(t)
	if err := os.WriteFile("geotag.toml", []byte("[logging]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || filepath.Base(resolved) != "geotag.toml" {
		t.Fatalf("expected project config, got %q %v", resolved, exists)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected level %q", cfg.Logging.Level)
	}
}

func TestEnvVarOverridesExifToolBinary(t *testing.T) {
	isolate(t)
	t.Setenv(config.ExifToolEnv, "/usr/local/bin/exiftool")
	configPath := filepath.Join(t.TempDir(), "geotag.toml")
	if err := os.WriteFile(configPath, []byte("[exiftool]\nbinary = \"exiftool\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ExifTool.Binary != "/usr/local/bin/exiftool" {
		t.Fatalf("expected env binary, got %q", cfg.ExifTool.Binary)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"backup mode", func(c *config.Config) { c.Save.BackupMode = "tape" }, "save.backup_mode must be one of"},
		{"timeout", func(c *config.Config) { c.ExifTool.TimeoutSeconds = -1 }, "exiftool.timeout_seconds must be >= 1"},
		{"concurrency", func(c *config.Config) { c.ExifTool.Concurrency = 500 }, "exiftool.concurrency must be <= 64"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"coordinate format", func(c *config.Config) { c.Display.CoordinateFormat = "utm" }, "display.coordinate_format"},
		{"folder without dir", func(c *config.Config) {
			c.Save.BackupMode = "folder"
			c.Save.BackupDir = ""
		}, "save.backup_dir must be set"},
		{"time zone", func(c *config.Config) { c.Save.TimeZone = "Mars/Olympus" }, "save.time_zone"},
		{"track gap", func(c *config.Config) { c.Track.MaxGapMinutes = 0 }, "track.max_gap_minutes must be >= 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want message containing %q", err, tt.want)
			}
		})
	}
	if err := func() error { c := config.Default(); return c.Validate() }(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	isolate(t)
	configPath := filepath.Join(t.TempDir(), "geotag.toml")
	if err := os.WriteFile(configPath, []byte("[save]\nbackup = \"suffix\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestWriteSampleLoads(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	written, err := config.WriteSample(path, false)
	if err != nil || written != path {
		t.Fatalf("WriteSample = %q, %v", written, err)
	}
	if _, err := config.WriteSample(path, false); !errors.Is(err, config.ErrConfigExists) {
		t.Fatalf("expected ErrConfigExists, got %v", err)
	}
	if _, err := config.WriteSample(path, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil || !exists {
		t.Fatalf("sample config did not load: %v", err)
	}
	def := config.Default()
	if cfg.Save.BackupMode != def.Save.BackupMode || cfg.ExifTool.TimeoutSeconds != def.ExifTool.TimeoutSeconds {
		t.Fatalf("sample drifted from defaults: %+v", cfg)
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(root, "state")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Save.BackupMode = "folder"
	cfg.Save.BackupDir = filepath.Join(root, "backups")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{"state", "logs", "backups"} {
		if info, err := os.Stat(filepath.Join(root, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory: %v", dir, err)
		}
	}
}
