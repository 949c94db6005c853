package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"geotag/internal/backup"
	"geotag/internal/coords"
)

// Paths contains directories the program owns.
type Paths struct {
	StateDir string `toml:"state_dir" validate:"required"`
	LogDir   string `toml:"log_dir" validate:"required"`
}

// ExifTool contains settings for the metadata writer subprocess.
type ExifTool struct {
	Binary         string `toml:"binary" validate:"required"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"min=1,max=3600"`
	// Concurrency caps simultaneous ExifTool processes; 0 means one per CPU.
	Concurrency int `toml:"concurrency" validate:"min=0,max=64"`
}

// Save contains batch save behaviour.
type Save struct {
	BackupMode         string `toml:"backup_mode" validate:"oneof=none suffix folder"`
	BackupDir          string `toml:"backup_dir" validate:"required_if=BackupMode folder"`
	UpdateFileModTime  bool   `toml:"update_file_mod_time"`
	UpdateGPSTimestamp bool   `toml:"update_gps_timestamp"`
	TimeZone           string `toml:"time_zone"`
	CreateHistory      bool   `toml:"create_history"`
}

// Track contains GPX matching settings.
type Track struct {
	// MaxGapMinutes bounds how long after the last track point a photo may
	// be taken and still use that point.
	MaxGapMinutes int  `toml:"max_gap_minutes" validate:"min=1,max=10080"`
	Interpolate   bool `toml:"interpolate"`
}

// Display contains presentation preferences for the CLI.
type Display struct {
	CoordinateFormat string `toml:"coordinate_format" validate:"oneof=decimal dm dms"`
}

// Logging contains log output settings.
type Logging struct {
	Format string `toml:"format" validate:"oneof=console json"`
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
}

// Config encapsulates all configuration values for geotag.
type Config struct {
	Paths    Paths    `toml:"paths"`
	ExifTool ExifTool `toml:"exiftool"`
	Save     Save     `toml:"save"`
	Track    Track    `toml:"track"`
	Display  Display  `toml:"display"`
	Logging  Logging  `toml:"logging"`
}

// Load reads the config file chosen by resolveConfigPath over Default,
// then normalizes and validates it. It also returns the path it looked at
// and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	cfg := Default()
	if exists {
		if err := decodeFile(resolved, &cfg); err != nil {
			return nil, resolved, true, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, resolved, exists, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, resolved, exists, err
	}
	return &cfg, resolved, exists, nil
}

// decodeFile overlays the TOML at path onto cfg. Unknown keys are errors so
// typos do not silently fall back to defaults.
func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// EnsureDirectories creates the state and log directories, plus the backup
// folder when folder backups are enabled.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir, c.Paths.LogDir}
	if c.BackupPolicy().Mode == backup.ModeFolder {
		dirs = append(dirs, c.Save.BackupDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ExifToolTimeout returns the per-image subprocess timeout.
func (c *Config) ExifToolTimeout() time.Duration {
	return time.Duration(c.ExifTool.TimeoutSeconds) * time.Second
}

// BackupPolicy converts the [save] backup settings. Validate has already
// rejected unknown modes.
func (c *Config) BackupPolicy() backup.Policy {
	mode, err := backup.ParseMode(c.Save.BackupMode)
	if err != nil {
		mode = backup.ModeNone
	}
	return backup.Policy{Mode: mode, Dir: c.Save.BackupDir}
}

// TimeLocation returns the zone used to interpret EXIF timestamps, which
// carry no offset of their own. Empty means the local zone.
func (c *Config) TimeLocation() *time.Location {
	if c.Save.TimeZone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Save.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// TrackMaxGap returns the [track] gap limit.
func (c *Config) TrackMaxGap() time.Duration {
	return time.Duration(c.Track.MaxGapMinutes) * time.Minute
}

// CoordinateStyle returns the display style for coordinates.
func (c *Config) CoordinateStyle() coords.Style {
	return coords.ParseStyle(c.Display.CoordinateFormat)
}

// LockPath is the advisory lock file that serializes batch saves.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "save.lock")
}

// HistoryPath is the SQLite save journal.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
