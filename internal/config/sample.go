package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed sample_config.toml
var sampleConfig []byte

// ErrConfigExists is returned by WriteSample when the target is taken and
// overwrite was not requested.
var ErrConfigExists = errors.New("config file already exists")

// WriteSample writes the commented sample config to path, or to
// DefaultConfigPath when path is empty, and returns where it went.
func WriteSample(path string, overwrite bool) (string, error) {
	target, err := DefaultConfigPath()
	if path != "" {
		target, err = ExpandPath(path)
	}
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(target, flags, 0o644)
	if errors.Is(err, os.ErrExist) {
		return "", fmt.Errorf("%w at %s", ErrConfigExists, target)
	}
	if err != nil {
		return "", fmt.Errorf("write sample config: %w", err)
	}
	if _, err := f.Write(sampleConfig); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write sample config: %w", err)
	}
	return target, f.Close()
}
