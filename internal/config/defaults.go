package config

const (
	defaultStateDir        = "~/.local/share/geotag"
	defaultLogDir          = "~/.local/share/geotag/logs"
	defaultExifToolBinary  = "exiftool"
	defaultTimeoutSeconds  = 60
	defaultBackupMode      = "suffix"
	defaultBackupDir       = "~/.local/share/geotag/backups"
	defaultMaxGapMinutes   = 120
	defaultCoordinateStyle = "decimal"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		ExifTool: ExifTool{
			Binary:         defaultExifToolBinary,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Save: Save{
			BackupMode:         defaultBackupMode,
			BackupDir:          defaultBackupDir,
			UpdateGPSTimestamp: true,
			CreateHistory:      true,
		},
		Track: Track{
			MaxGapMinutes: defaultMaxGapMinutes,
		},
		Display: Display{
			CoordinateFormat: defaultCoordinateStyle,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
