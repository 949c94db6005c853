package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"geotag/internal/faults"
	"geotag/internal/fileutil"
)

// Mode selects where backups go.
type Mode string

const (
	ModeNone   Mode = "none"
	ModeSuffix Mode = "suffix"
	ModeFolder Mode = "folder"
)

// Suffix is appended to the file name in ModeSuffix.
const Suffix = ".original"

// ParseMode accepts a case-insensitive mode name; empty means none.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeNone:
		return ModeNone, nil
	case ModeSuffix:
		return ModeSuffix, nil
	case ModeFolder:
		return ModeFolder, nil
	default:
		return "", fmt.Errorf("unknown backup mode %q", value)
	}
}

// Policy copies a file aside before it is overwritten.
type Policy struct {
	Mode Mode
	// Dir receives copies in ModeFolder.
	Dir string
}

// Enabled reports whether Backup makes copies.
func (p Policy) Enabled() bool {
	return p.Mode == ModeSuffix || p.Mode == ModeFolder
}

// Backup copies path according to the policy and returns the copy's path,
// or "" when backups are disabled. Existing backups are never overwritten.
func (p Policy) Backup(path string) (string, error) {
	var target string
	switch p.Mode {
	case "", ModeNone:
		return "", nil
	case ModeSuffix:
		target = path + Suffix
	case ModeFolder:
		if strings.TrimSpace(p.Dir) == "" {
			return "", faults.Wrap(faults.ErrBackup, "backup", "backup folder not configured", nil)
		}
		if err := os.MkdirAll(p.Dir, 0o755); err != nil {
			return "", faults.Wrap(faults.ErrBackup, "create backup folder", p.Dir, err)
		}
		target = filepath.Join(p.Dir, filepath.Base(path))
	default:
		return "", faults.Wrap(faults.ErrBackup, "backup", fmt.Sprintf("unknown mode %q", p.Mode), nil)
	}

	copied, err := fileutil.CopyUnique(path, target)
	if err != nil {
		return "", faults.Wrap(faults.ErrBackup, "copy", path+" -> "+target, err)
	}
	return copied, nil
}
