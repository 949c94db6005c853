package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultConfigPath = "~/.config/geotag/config.toml"
	// projectConfigName is looked up in the working directory when no
	// user config exists.
	projectConfigName = "geotag.toml"
)

// DefaultConfigPath is the user config file, with ~ expanded.
func DefaultConfigPath() (string, error) {
	return ExpandPath(defaultConfigPath)
}

// ExpandPath resolves a leading ~ to the home directory and makes the
// result absolute. Empty input stays empty.
func ExpandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if rest, ok := strings.CutPrefix(p, "~"); ok && (rest == "" || rest[0] == '/' || rest[0] == '\\') {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = home + rest
	}
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", p, err)
	}
	return abs, nil
}

// resolveConfigPath picks the file Load reads. An explicit path is used even
// when missing; otherwise the user config wins over ./geotag.toml, and the
// user path is reported when neither exists.
func resolveConfigPath(explicit string) (string, bool, error) {
	if explicit != "" {
		p, err := ExpandPath(explicit)
		if err != nil {
			return "", false, err
		}
		ok, err := isFile(p)
		return p, ok, err
	}

	user, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	project, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{user, project} {
		if ok, _ := isFile(candidate); ok {
			return candidate, true, nil
		}
	}
	return user, false, nil
}

func isFile(p string) (bool, error) {
	info, err := os.Stat(p)
	switch {
	case os.IsNotExist(err):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat config: %w", err)
	}
	return !info.IsDir(), nil
}
