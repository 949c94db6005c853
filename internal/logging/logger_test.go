package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"geotag/internal/config"
	"geotag/internal/faults"
	"geotag/internal/logging"
	"geotag/internal/services"
)

func newFileLogger(t *testing.T) (string, func() string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "test.log")
	return logPath, func() string {
		content, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(content)
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, content)
	}
	if entry["msg"] != "hello from config" {
		t.Fatalf("unexpected message %v", entry["msg"])
	}
	if id, _ := entry[logging.FieldSessionID].(string); id == "" {
		t.Fatalf("expected session id, got %v", entry)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath, read := newFileLogger(t)
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")
	if out := read(); strings.Contains(out, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", out)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath, read := newFileLogger(t)
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("message with caller", logging.String("raw_key", "v"))
	out := read()
	if !strings.Contains(out, "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", out)
	}
	if !strings.Contains(out, "    raw_key: v") {
		t.Fatalf("expected raw debug field, got %q", out)
	}
}

func TestConsoleLayout(t *testing.T) {
	logPath, read := newFileLogger(t)
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatal(err)
	}
	ctx := services.WithBatchID(context.Background(), "0123456789abcdef")
	ctx = services.WithPath(ctx, "/photos/trip/IMG_0001.jpg")
	log := logging.WithContext(ctx, logging.NewComponentLogger(logger, "persist"))
	log.Info("image saved", logging.String("location", "37.774900 -122.419400"), logging.Int("exit_code", 0))

	out := read()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two fields, got %q", out)
	}
	if !strings.Contains(lines[0], "INFO [persist] IMG_0001.jpg · Batch 01234567 – image saved") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "    - Exit code: 0" || lines[2] != "    - Location: 37.774900 -122.419400" {
		t.Fatalf("unexpected fields %q", lines[1:])
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath, read := newFileLogger(t)
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatal(err)
	}
	logging.WarnWithContext(logger, "backup skipped", "backup_skipped", logging.String(logging.FieldImpact, "no copy kept"))
	logging.ErrorWithContext(logger, "save failed", "save_failed",
		logging.Error(faults.ErrTimeout), logging.ErrorKind(faults.ErrTimeout))

	lines := strings.Split(strings.TrimSpace(read()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(lines))
	}
	var warn, fail map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &warn); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &fail); err != nil {
		t.Fatal(err)
	}
	if warn[logging.FieldEventType] != "backup_skipped" || warn[logging.FieldImpact] != "no copy kept" || warn[logging.FieldErrorHint] == nil {
		t.Fatalf("unexpected warn fields %v", warn)
	}
	if warn["level"] != "warn" {
		t.Fatalf("unexpected level %v", warn["level"])
	}
	if fail[logging.FieldErrorKind] != "timeout" || fail["error"] != faults.ErrTimeout.Error() {
		t.Fatalf("unexpected error fields %v", fail)
	}
}

func TestWithContextWithoutFields(t *testing.T) {
	base := logging.NewNop()
	if logging.WithContext(context.Background(), base) != base {
		t.Fatal("expected the same logger when context carries nothing")
	}
	if logging.WithContext(context.Background(), nil) == nil {
		t.Fatal("expected a no-op logger for nil input")
	}
	if got := logging.ContextFields(services.WithRequestID(context.Background(), "r1")); len(got) != 1 || got[0].Key != logging.FieldCorrelationID {
		t.Fatalf("unexpected fields %v", got)
	}
}

func TestProgressSampler(t *testing.T) {
	s := logging.NewProgressSampler(25)
	var emitted []int
	for done := 1; done <= 10; done++ {
		if s.ShouldLog(done, 10) {
			emitted = append(emitted, done)
		}
	}
	want := []int{1, 3, 5, 8, 10}
	if len(emitted) != len(want) {
		t.Fatalf("emitted %v, want %v", emitted, want)
	}
	for i := range want {
		if emitted[i] != want[i] {
			t.Fatalf("emitted %v, want %v", emitted, want)
		}
	}
	s.Reset()
	if !s.ShouldLog(1, 10) {
		t.Fatal("expected emission after reset")
	}
}
