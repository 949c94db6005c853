package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func stubBinary(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	present := stubBinary(t, "present")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  ", Optional: true},
	}
	want := []struct {
		available bool
		path      string
		detail    string
	}{
		{true, present, ""},
		{false, "", `binary "clearly-not-present-binary" not found`},
		{false, "", "command not configured"},
	}

	results := CheckBinaries(context.Background(), reqs, nil)
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for i, w := range want {
		got := results[i]
		if got.Available != w.available || got.Path != w.path || got.Detail != w.detail {
			t.Errorf("%s: got %+v", reqs[i].Name, got)
		}
	}
	if results[2].Command != "" {
		t.Errorf("expected trimmed command, got %q", results[2].Command)
	}

	missing := Missing(results)
	if len(missing) != 1 || missing[0].Name != "Missing" {
		t.Fatalf("Missing() = %+v", missing)
	}
	if !results[0].Available {
		t.Fatal("Missing must not modify its input")
	}
}

func TestCheckVersionProbe(t *testing.T) {
	tool := stubBinary(t, "tool")
	req := Requirement{Name: "Tool", Command: tool}

	st := req.Check(context.Background(), func(_ context.Context, path string) (string, error) {
		if path != tool {
			t.Errorf("version called with %q", path)
		}
		return "12.76", nil
	})
	if !st.Available || st.Version != "12.76" {
		t.Fatalf("unexpected status %+v", st)
	}

	st = req.Check(context.Background(), func(context.Context, string) (string, error) {
		return "", errors.New("boom")
	})
	if st.Available || st.Path != tool || st.Detail != "version check failed: boom" {
		t.Fatalf("unexpected status after a failed version check %+v", st)
	}
}
