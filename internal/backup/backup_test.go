package backup_test

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"geotag/internal/backup"
	"geotag/internal/faults"
)

func writeImage(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want backup.Mode
	}{
		{"", backup.ModeNone},
		{"None", backup.ModeNone},
		{" suffix ", backup.ModeSuffix},
		{"FOLDER", backup.ModeFolder},
	}
	for _, tt := range tests {
		got, err := backup.ParseMode(tt.in)
		if err != nil || got != tt.want {
			t.Fatalf("ParseMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if _, err := backup.ParseMode("tape"); err == nil {
		t.Fatal("expected unknown mode error")
	}
}

func TestNoneMakesNoCopy(t *testing.T) {
	dir := t.TempDir()
	path := writeImage(t, dir, "a.jpg", "x")
	got, err := backup.Policy{Mode: backup.ModeNone}.Backup(path)
	if err != nil || got != "" {
		t.Fatalf("Backup = %q, %v", got, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected no extra files, found %d", len(entries))
	}
}

func TestSuffixBackups(t *testing.T) {
	dir := t.TempDir()
	path := writeImage(t, dir, "a.jpg", "first")
	policy := backup.Policy{Mode: backup.ModeSuffix}

	got, err := policy.Backup(path)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if got != path+".original" {
		t.Fatalf("unexpected backup path %q", got)
	}

	if err := os.WriteFile(path, []byte("second"), 0o644); err != nil {
		t.Fatal(err)
	}
	again, err := policy.Backup(path)
	if err != nil {
		t.Fatalf("second Backup: %v", err)
	}
	if again != filepath.Join(dir, "a.jpg-1.original") {
		t.Fatalf("unexpected second backup %q", again)
	}
	first, _ := os.ReadFile(got)
	if string(first) != "first" {
		t.Fatalf("first backup was overwritten: %q", first)
	}
}

func TestFolderBackups(t *testing.T) {
	dir := t.TempDir()
	backups := filepath.Join(dir, "backups")
	policy := backup.Policy{Mode: backup.ModeFolder, Dir: backups}
	path := writeImage(t, dir, "IMG_7.jpg", "pixels")

	var got []string
	for range 3 {
		p, err := policy.Backup(path)
		if err != nil {
			t.Fatalf("Backup: %v", err)
		}
		got = append(got, filepath.Base(p))
	}
	want := []string{"IMG_7.jpg", "IMG_7-1.jpg", "IMG_7-2.jpg"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("backup names = %v, want %v", got, want)
		}
	}
}

func TestFolderBackupsSameNameConcurrently(t *testing.T) {
	dir := t.TempDir()
	policy := backup.Policy{Mode: backup.ModeFolder, Dir: filepath.Join(dir, "backups")}

	const cards = 24
	paths := make([]string, cards)
	for i := range paths {
		card := filepath.Join(dir, "card"+strconv.Itoa(i))
		if err := os.MkdirAll(card, 0o755); err != nil {
			t.Fatal(err)
		}
		paths[i] = writeImage(t, card, "IMG_0001.jpg", "card "+strconv.Itoa(i))
	}

	var wg sync.WaitGroup
	got := make([]string, cards)
	errs := make([]error, cards)
	for i := range paths {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i], errs[i] = policy.Backup(paths[i])
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := range paths {
		if errs[i] != nil {
			t.Fatalf("backup of %s: %v", paths[i], errs[i])
		}
		if seen[got[i]] {
			t.Fatalf("two images were backed up to %s", got[i])
		}
		seen[got[i]] = true
		content, _ := os.ReadFile(got[i])
		if string(content) != "card "+strconv.Itoa(i) {
			t.Fatalf("%s holds %q", got[i], content)
		}
	}
	entries, _ := os.ReadDir(policy.Dir)
	if len(entries) != cards {
		t.Fatalf("expected %d backups, found %d", cards, len(entries))
	}
}

func TestBackupFailures(t *testing.T) {
	dir := t.TempDir()
	if _, err := (backup.Policy{Mode: backup.ModeSuffix}).Backup(filepath.Join(dir, "missing.jpg")); !errors.Is(err, faults.ErrBackup) {
		t.Fatalf("expected backup failure, got %v", err)
	}
	path := writeImage(t, dir, "a.jpg", "x")
	if _, err := (backup.Policy{Mode: backup.ModeFolder}).Backup(path); !errors.Is(err, faults.ErrBackup) {
		t.Fatalf("expected missing folder failure, got %v", err)
	}
	blocker := writeImage(t, dir, "file", "x")
	policy := backup.Policy{Mode: backup.ModeFolder, Dir: filepath.Join(blocker, "sub")}
	if _, err := policy.Backup(path); faults.Kind(err) != "backup_failed" {
		t.Fatalf("expected backup_failed kind, got %v", err)
	}
}
