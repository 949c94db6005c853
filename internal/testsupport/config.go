package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"geotag/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The directories are created and ExifTool points at a binary that does not
// exist unless WithStubbedExifTool is applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "state", "logs")
	cfgVal.Save.BackupDir = filepath.Join(base, "backups")
	cfgVal.Save.TimeZone = "UTC"
	cfgVal.ExifTool.Binary = filepath.Join(base, "bin", "exiftool-missing")
	cfgVal.ExifTool.TimeoutSeconds = 10

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithBackupMode sets the [save] backup_mode.
func WithBackupMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Save.BackupMode = mode
	}
}

// WithoutHistory disables the save journal.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Save.CreateHistory = false
	}
}

// WithStubbedExifTool writes a shell script standing in for exiftool and
// points the config at it. body runs after "#!/bin/sh"; an empty body
// answers -ver with "12.76" and exits 0 for everything else.
func WithStubbedExifTool(body string) ConfigOption {
	return func(b *configBuilder) {
		if body == "" {
			body = `if [ "$1" = "-ver" ]; then echo 12.76; fi
exit 0`
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, "exiftool")
		if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
			b.t.Fatalf("write stub exiftool: %v", err)
		}
		b.cfg.ExifTool.Binary = target
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
