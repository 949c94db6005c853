package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return describe(err)
	}
	if c.Save.TimeZone != "" {
		if _, err := time.LoadLocation(c.Save.TimeZone); err != nil {
			return fmt.Errorf("save.time_zone %q: %w", c.Save.TimeZone, err)
		}
	}
	return nil
}

// describe turns validator output into messages naming TOML keys.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key := tomlKey(fe.Namespace())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, key+" must be set")
		case "required_if":
			msgs = append(msgs, key+" must be set when "+fe.Param())
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s (got %v)", key, fe.Param(), fe.Value()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s (got %v)", key, boundWord(fe.Tag()), fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", key, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func boundWord(tag string) string {
	if tag == "min" {
		return ">="
	}
	return "<="
}

var keyNames = map[string]string{
	"Paths":              "paths",
	"StateDir":           "state_dir",
	"LogDir":             "log_dir",
	"ExifTool":           "exiftool",
	"Binary":             "binary",
	"TimeoutSeconds":     "timeout_seconds",
	"Concurrency":        "concurrency",
	"Save":               "save",
	"BackupMode":         "backup_mode",
	"BackupDir":          "backup_dir",
	"Track":              "track",
	"MaxGapMinutes":      "max_gap_minutes",
	"Display":            "display",
	"CoordinateFormat":   "coordinate_format",
	"Logging":            "logging",
	"Format":             "format",
	"Level":              "level",
	"UpdateFileModTime":  "update_file_mod_time",
	"UpdateGPSTimestamp": "update_gps_timestamp",
}

// tomlKey maps "Config.Save.BackupDir" to "save.backup_dir".
func tomlKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if name, ok := keyNames[p]; ok {
			parts[i] = name
		}
	}
	return strings.Join(parts, ".")
}
