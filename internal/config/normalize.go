package config

import (
	"fmt"
	"os"
	"strings"
)

// ExifToolEnv overrides exiftool.binary.
const ExifToolEnv = "GEOTAG_EXIFTOOL"

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExifTool()
	if err := c.normalizeSave(); err != nil {
		return err
	}
	c.Display.CoordinateFormat = lowerOr(c.Display.CoordinateFormat, defaultCoordinateStyle)
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = ExpandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeExifTool() {
	if value, ok := os.LookupEnv(ExifToolEnv); ok && strings.TrimSpace(value) != "" {
		c.ExifTool.Binary = value
	}
	c.ExifTool.Binary = strings.TrimSpace(c.ExifTool.Binary)
	if c.ExifTool.Binary == "" {
		c.ExifTool.Binary = defaultExifToolBinary
	}
	if c.ExifTool.TimeoutSeconds == 0 {
		c.ExifTool.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (c *Config) normalizeSave() error {
	c.Save.BackupMode = lowerOr(c.Save.BackupMode, "none")
	c.Save.TimeZone = strings.TrimSpace(c.Save.TimeZone)
	if strings.TrimSpace(c.Save.BackupDir) == "" {
		return nil
	}
	var err error
	if c.Save.BackupDir, err = ExpandPath(c.Save.BackupDir); err != nil {
		return fmt.Errorf("save.backup_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = lowerOr(c.Logging.Format, defaultLogFormat)
	c.Logging.Level = lowerOr(c.Logging.Level, defaultLogLevel)
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
}

func lowerOr(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}
