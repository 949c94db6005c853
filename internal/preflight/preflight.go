package preflight

import (
	"context"

	"geotag/internal/backup"
	"geotag/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckExifTool(ctx, cfg.ExifTool.Binary, cfg.ExifTool.TimeoutSeconds),
		CheckCreatableDirectory("State directory", cfg.Paths.StateDir),
		CheckCreatableDirectory("Log directory", cfg.Paths.LogDir),
	}

	if cfg.BackupPolicy().Mode == backup.ModeFolder {
		results = append(results, CheckCreatableDirectory("Backup folder", cfg.Save.BackupDir))
	}

	if cfg.Save.CreateHistory {
		results = append(results, CheckHistory(ctx, cfg.HistoryPath()))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
