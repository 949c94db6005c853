package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestCopyVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	dst := filepath.Join(dir, "dst.jpg")

	content := []byte("verified copy content")
	if err := os.WriteFile(src, content, 0o640); err != nil {
		t.Fatal(err)
	}
	stamp := time.Date(2020, 5, 6, 7, 8, 9, 0, time.UTC)
	if err := os.Chtimes(src, stamp, stamp); err != nil {
		t.Fatal(err)
	}

	if err := CopyVerified(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(stamp) {
		t.Fatalf("mod time not preserved: %v", info.ModTime())
	}
}

func TestCopyVerified_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyVerified(src, dst); !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "old" {
		t.Fatalf("existing file was modified: %q", got)
	}
}

func TestCopyVerified_MissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyVerified(filepath.Join(dir, "nope"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestCopyUnique(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	if err := os.WriteFile(src, []byte("pixels"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "out", "IMG_1.jpg")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := CopyUnique(src, path)
	if err != nil || got != path {
		t.Fatalf("free path should be used as is, got %q %v", got, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "out", "IMG_1-1.jpg"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = CopyUnique(src, path)
	if err != nil || got != filepath.Join(dir, "out", "IMG_1-2.jpg") {
		t.Fatalf("expected IMG_1-2.jpg, got %q %v", got, err)
	}
	old, _ := os.ReadFile(filepath.Join(dir, "out", "IMG_1-1.jpg"))
	if string(old) != "old" {
		t.Fatalf("existing file was modified: %q", old)
	}

	noExt := filepath.Join(dir, "out", "README")
	if err := os.WriteFile(noExt, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if got, _ := CopyUnique(src, noExt); got != noExt+"-1" {
		t.Fatalf("unexpected name %q", got)
	}

	if _, err := CopyUnique(filepath.Join(dir, "missing"), path); err == nil || errors.Is(err, os.ErrExist) {
		t.Fatalf("expected a plain failure for a missing source, got %v", err)
	}
}

func TestCopyUniqueConcurrent(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatal(err)
	}
	const workers = 32
	sources := make([]string, workers)
	for i := range sources {
		sources[i] = filepath.Join(dir, "src"+strconv.Itoa(i))
		if err := os.WriteFile(sources[i], []byte(strconv.Itoa(i)), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var wg sync.WaitGroup
	names := make([]string, workers)
	errs := make([]error, workers)
	start := make(chan struct{})
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			names[i], errs[i] = CopyUnique(sources[i], filepath.Join(out, "IMG_0001.jpg"))
		}()
	}
	close(start)
	wg.Wait()

	seen := make(map[string]bool, workers)
	for i := range workers {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if seen[names[i]] {
			t.Fatalf("name %s handed out twice", names[i])
		}
		seen[names[i]] = true
		got, _ := os.ReadFile(names[i])
		if string(got) != strconv.Itoa(i) {
			t.Fatalf("%s holds %q, want %q", names[i], got, strconv.Itoa(i))
		}
	}
}
