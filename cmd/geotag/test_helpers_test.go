package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"geotag/internal/config"
	"geotag/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	imageDir   string
	argsLog    string
}

// stubExifTool answers -ver, runs onRead for JSON reads, logs the arguments
// of every write to argsLog and then runs onWrite. An empty onRead reports
// no tags.
func stubExifTool(argsLog, onRead, onWrite string) string {
	if onRead == "" {
		onRead = "echo '[]'"
	}
	if onWrite == "" {
		onWrite = "exit 0"
	}
	return fmt.Sprintf(`case "$1" in
  -ver) echo 12.76; exit 0 ;;
  -n) %s; exit 0 ;;
esac
echo "$@" >> %q
%s`, onRead, argsLog, onWrite)
}

func setupCLITestEnv(t *testing.T, onWrite string, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	return setupCLITestEnvReading(t, "", onWrite, opts...)
}

// setupCLITestEnvReading is setupCLITestEnv with a custom read handler for
// the stub ExifTool.
func setupCLITestEnvReading(t *testing.T, onRead, onWrite string, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv(config.ExifToolEnv, "")

	argsLog := filepath.Join(base, "exiftool-args.log")
	opts = append([]testsupport.ConfigOption{testsupport.WithStubbedExifTool(stubExifTool(argsLog, onRead, onWrite))}, opts...)
	cfg := testsupport.NewConfig(t, opts...)

	configPath := filepath.Join(homeDir, ".config", "geotag", "config.toml")
	writeTestConfig(t, configPath, cfg)

	imageDir := filepath.Join(base, "images")
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		t.Fatalf("mkdir images: %v", err)
	}

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		imageDir:   imageDir,
		argsLog:    argsLog,
	}
}

func (e *cliTestEnv) image(t *testing.T, name string) string {
	t.Helper()
	return testsupport.WriteJPEG(t, filepath.Join(e.imageDir, name))
}

// writes returns one line per ExifTool write the stub received.
func (e *cliTestEnv) writes(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(e.argsLog)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read args log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
