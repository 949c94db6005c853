package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"geotag/internal/config"
	"geotag/internal/exiftool"
	"geotag/internal/history"
	"geotag/internal/logging"
	"geotag/internal/metadata"
	"geotag/internal/persist"
	"geotag/internal/preflight"
	"geotag/internal/workset"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	jsonFlag     *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		jsonFlag:     jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			switch level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level {
			case "":
			case "debug", "info", "warn", "error":
				cfg.Logging.Level = level
			default:
				c.configErr = fmt.Errorf("--log-level must be one of: debug info warn error (got %q)", *c.logLevelFlag)
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// workspace bundles what one command needs to load, edit and save images.
type workspace struct {
	cfg     *config.Config
	logger  *slog.Logger
	session *workset.Session
	journal *history.Store
}

func (w *workspace) Close() {
	if w.journal != nil {
		_ = w.journal.Close()
	}
}

// openWorkspace builds a session for cmd. Read-only workspaces carry no
// saver. When ExifTool is unavailable a read-only workspace falls back to
// the built-in EXIF reader; a writable one fails up front.
func (c *commandContext) openWorkspace(cmd *cobra.Command, writable bool) (*workspace, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	client, err := exiftool.New(cfg.ExifTool.Binary, cfg.ExifTool.TimeoutSeconds)
	if err != nil {
		return nil, err
	}

	reader := metadata.Chain{metadata.EXIFReader{}}
	check := preflight.CheckExifTool(cmd.Context(), cfg.ExifTool.Binary, cfg.ExifTool.TimeoutSeconds)
	switch {
	case check.Passed:
		reader = append(reader, client)
	case writable:
		return nil, fmt.Errorf("exiftool unavailable: %s (set [exiftool] binary or %s)", check.Detail, config.ExifToolEnv)
	default:
		logging.WarnWithContext(logger, "exiftool unavailable", "exiftool_unavailable",
			logging.String("detail", check.Detail),
			logging.String(logging.FieldImpact, "sidecars and formats without EXIF are read as having no location"),
			logging.String(logging.FieldErrorHint, "install exiftool or set [exiftool] binary"),
		)
	}

	ws := &workspace{cfg: cfg, logger: logger}
	sessionOpts := []workset.Option{
		workset.WithLogger(logger),
		workset.WithTimeZone(cfg.TimeLocation()),
	}
	if !writable {
		ws.session = workset.New(reader, nil, sessionOpts...)
		return ws, nil
	}

	engineOpts := []persist.Option{persist.WithLogger(logger)}
	if cfg.Save.CreateHistory {
		journal, err := history.Open(cfg.HistoryPath())
		if err != nil {
			logging.WarnWithContext(logger, "save history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this batch will not be journaled"),
				logging.String(logging.FieldErrorHint, "run geotag check"),
			)
		} else {
			ws.journal = journal
			engineOpts = append(engineOpts, persist.WithRecorder(journal))
		}
	}

	engine, err := persist.New(client, persist.Options{
		Concurrency:        cfg.ExifTool.Concurrency,
		Backup:             cfg.BackupPolicy(),
		UpdateFileModTime:  cfg.Save.UpdateFileModTime,
		UpdateGPSTimestamp: cfg.Save.UpdateGPSTimestamp,
		TimeZone:           cfg.TimeLocation(),
		LockPath:           cfg.LockPath(),
	}, engineOpts...)
	if err != nil {
		ws.Close()
		return nil, err
	}
	ws.session = workset.New(reader, engine, sessionOpts...)
	return ws, nil
}

// skipConfigAnnotation marks commands that handle a missing or broken
// config themselves.
const skipConfigAnnotation = "geotag/skip-config"

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}
